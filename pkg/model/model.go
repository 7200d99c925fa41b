// Package model orchestrates the full pipeline into a SlicedModel: slice,
// union outlines, offset perimeters, generate top/bottom/island infill
// (spec.md §4.7). It is the package cmd/slice2print talks to.
package model

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mprochnow/slice2print/pkg/contour"
	"github.com/mprochnow/slice2print/pkg/infill"
	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/mesh"
	"github.com/mprochnow/slice2print/pkg/polygon"
	"github.com/mprochnow/slice2print/pkg/slicer"
)

// ErrEmptyMesh is returned when the source mesh has no facets to slice.
var ErrEmptyMesh = errors.New("model: mesh has no facets")

// ErrCancelled re-exports the slicer's cancellation sentinel so callers
// of this package never need to import pkg/slicer directly just to
// compare against it.
var ErrCancelled = slicer.ErrCancelled

const vertexPrecision = float64(slicer.VertexPrecision)

// SlicerConfig holds the printing-process settings (spec.md §3); geometry
// settings that reach the Slicer directly (first_layer_height,
// layer_height) live here too since both Slicer and Layer Builder need
// them. Derived fields are computed once by NewSlicerConfig and are
// read-only afterward.
type SlicerConfig struct {
	FirstLayerHeight float64 // mm
	LayerHeight      float64 // mm
	NozzleDiameter   float64 // mm
	FilamentDiameter float64 // mm, unused by the geometry core
	Perimeters       int
	TopLayers        int
	BottomLayers     int
	InfillAngle      float64 // degrees, 0-90
	InfillOverlap    float64 // percent, 0-100

	ExtrusionWidth                  float64
	ExtrusionWidthExternalPerimeter float64
	ExtrusionWidthInfill            float64
	ExtrusionOverlapFactor          float64
}

// NewSlicerConfig derives the read-only extrusion-width fields from
// nozzle diameter (spec.md §3). ExtrusionOverlapFactor is fixed at the
// spec's suggested ≈0.4, and ExtrusionWidthInfill is nozzle_diameter *
// 1.125, between the internal and external perimeter widths (see
// DESIGN.md's Open Question note on this value).
func NewSlicerConfig(firstLayerHeight, layerHeight, nozzleDiameter, filamentDiameter float64, perimeters, topLayers, bottomLayers int, infillAngle, infillOverlap float64) SlicerConfig {
	return SlicerConfig{
		FirstLayerHeight: firstLayerHeight,
		LayerHeight:      layerHeight,
		NozzleDiameter:   nozzleDiameter,
		FilamentDiameter: filamentDiameter,
		Perimeters:       perimeters,
		TopLayers:        topLayers,
		BottomLayers:     bottomLayers,
		InfillAngle:      infillAngle,
		InfillOverlap:    infillOverlap,

		ExtrusionWidth:                  nozzleDiameter * 1.2,
		ExtrusionWidthExternalPerimeter: nozzleDiameter * 1.05,
		ExtrusionWidthInfill:            nozzleDiameter * 1.125,
		ExtrusionOverlapFactor:          0.4,
	}
}

func (c SlicerConfig) perimeterParams() layer.PerimeterParams {
	return layer.PerimeterParams{
		ExternalWidth: int64(c.ExtrusionWidthExternalPerimeter * vertexPrecision),
		Width:         int64(c.ExtrusionWidth * vertexPrecision),
		OverlapFactor: c.ExtrusionOverlapFactor,
		LayerHeight:   int64(c.LayerHeight * vertexPrecision),
		Count:         c.Perimeters,
		InfillOverlap: c.InfillOverlap,
		InfillWidth:   int64(c.ExtrusionWidthInfill * vertexPrecision),
	}
}

func (c SlicerConfig) infillParams() infill.Params {
	return infill.Params{
		ExtrusionWidthInfill: int64(c.ExtrusionWidthInfill * vertexPrecision),
		OverlapFactor:        c.ExtrusionOverlapFactor,
		AngleDeg:             c.InfillAngle,
	}
}

// SlicedModel is the write-once result of the pipeline: constructed by
// Slice, then CreatePerimeters, then CreateInfill, then read-only
// (spec.md §4.8).
type SlicedModel struct {
	ID          uuid.UUID
	Bounds      slicer.BoundsI
	Config      SlicerConfig
	Layers      []*layer.Layer
	Diagnostics slicer.Diagnostics
}

// Slice runs the Mesh Loader's output through the Slicer, the Contour
// Assembler, and the Layer Builder's outline-union step, producing a
// SlicedModel whose layers have outlines but not yet perimeters or
// infill (spec.md §6's `slice(mesh, config, progress_cb)`).
func Slice(m *mesh.Mesh, cfg SlicerConfig, progress slicer.ProgressFunc) (*SlicedModel, error) {
	if len(m.Faces) == 0 {
		return nil, ErrEmptyMesh
	}

	result, err := slicer.Slice(m, slicer.Params{
		FirstLayerHeight: cfg.FirstLayerHeight,
		LayerHeight:      cfg.LayerHeight,
	}, progress)
	if err != nil {
		return nil, err
	}

	sm := &SlicedModel{
		ID:          uuid.New(),
		Bounds:      result.Bounds,
		Config:      cfg,
		Diagnostics: result.Diagnostics,
	}

	for i, ints := range result.IntersectionsByLayer {
		z := cfg.FirstLayerHeight + float64(i)*cfg.LayerHeight
		lc := contour.Assemble(ints, z, &sm.Diagnostics)

		outlines, err := layer.BuildOutlines(lc)
		if err != nil {
			log.Printf("model: layer %d has no surviving outlines, dropped: %v", i, err)
			continue
		}

		sm.Layers = append(sm.Layers, &layer.Layer{
			LayerNo:     i,
			Z:           z,
			LayerHeight: cfg.LayerHeight,
			Outlines:    outlines,
		})
	}

	return sm, nil
}

// CreatePerimeters offsets every layer's outlines into concentric
// perimeter rings and computes its infill boundary, dropping any layer
// that becomes empty (spec.md §4.7's "Perimeters" step).
func (sm *SlicedModel) CreatePerimeters(progress slicer.ProgressFunc) error {
	pp := sm.Config.perimeterParams()
	insetInfill := int64(sm.Config.ExtrusionWidthInfill * vertexPrecision * sm.Config.InfillOverlap / 100)

	total := len(sm.Layers)
	var kept []*layer.Layer
	for i, ly := range sm.Layers {
		rings, lastDk, err := layer.OffsetPerimeters(ly.Outlines, pp)
		if err != nil {
			log.Printf("model: layer %d dropped, too thin for perimeter 1: %v", ly.LayerNo, err)
			if progress != nil && progress(i*100/maxInt(total, 1), "Generating perimeters...") {
				return ErrCancelled
			}
			continue
		}
		ly.Perimeters = rings
		ly.InfillBoundary = layer.InfillBoundary(ly.Outlines, lastDk, insetInfill)
		kept = append(kept, ly)

		if progress != nil && progress(i*100/maxInt(total, 1), "Generating perimeters...") {
			return ErrCancelled
		}
	}
	sm.Layers = kept
	return nil
}

// CreateInfill fills the clamped top/bottom solid regions and detects
// mid-stack islands (spec.md §4.7's "Solid top/bottom infill" and
// "Island top-layer detection" steps).
func (sm *SlicedModel) CreateInfill(progress slicer.ProgressFunc) error {
	n := len(sm.Layers)
	if n == 0 {
		return nil
	}

	bottom, top := sm.Config.BottomLayers, sm.Config.TopLayers
	if bottom+top >= n {
		bottom, top = 1, n-1
	}

	ip := sm.Config.infillParams()

	for i := 0; i < bottom && i < n; i++ {
		sm.Layers[i].Infill = infill.Generate(sm.Layers[i].InfillBoundary, sm.Layers[i].LayerNo, ip)
	}
	for i := n - top; i < n; i++ {
		if i < 0 {
			continue
		}
		sm.Layers[i].Infill = infill.Generate(sm.Layers[i].InfillBoundary, sm.Layers[i].LayerNo, ip)
	}

	if progress != nil && progress(50, "Generating infill...") {
		return ErrCancelled
	}

	sm.detectIslands(ip, bottom, top)

	if progress != nil && progress(100, "Generating infill...") {
		return ErrCancelled
	}
	return nil
}

// detectIslands implements spec.md §4.7's island-detection walk: from
// just below the fixed top solid region down to just above the fixed
// bottom region, compare each layer against the one below it for
// outline growth, and back-fill the exposed portion of the lower layer
// (and the `top-1` layers beneath it) with solid infill.
func (sm *SlicedModel) detectIslands(ip infill.Params, bottom, top int) {
	n := len(sm.Layers)
	pp := sm.Config.perimeterParams()
	innerDk := layer.RingOffset(pp.Count, pp)
	index := buildOutlineIndex(sm.Layers)

	topStart := n - top
	for i := topStart - 1; i >= bottom && i >= 1; i-- {
		current := sm.Layers[i]
		below := sm.Layers[i-1]

		belowInset := below.InfillBoundary
		island := polygon.Difference(belowInset, current.Outlines, polygon.NonZero)
		if len(island) == 0 {
			continue
		}

		outset := polygon.Offset(island, float64(innerDk), polygon.JoinMiter)
		exposed := polygon.Intersection(outset, belowInset, polygon.NonZero)
		if len(exposed) == 0 {
			continue
		}

		below.Infill = append(below.Infill, infill.Generate(exposed, below.LayerNo, ip)...)

		region := exposed
		for k := 1; k < sm.Config.TopLayers && i-1-k >= 0; k++ {
			if !candidateOverlap(index, region) {
				break
			}
			next := sm.Layers[i-1-k]
			region = polygon.Intersection(region, next.Outlines, polygon.NonZero)
			if len(region) == 0 {
				break
			}
			next.Infill = append(next.Infill, infill.Generate(region, next.LayerNo, ip)...)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// String implements fmt.Stringer for diagnostic output.
func (sm *SlicedModel) String() string {
	return fmt.Sprintf("SlicedModel{id=%s, layers=%d}", sm.ID, len(sm.Layers))
}
