// Package slicer implements the topological slicing algorithm from
// Zhang & Joshi: intersecting each triangle against the Z-planes it
// spans and emitting intersection records tagged with the triangle
// edges that stitch them into contours, instead of brute-force
// per-layer plane tests (spec.md §4.2).
package slicer

import (
	"errors"
	"math"

	"github.com/mprochnow/slice2print/pkg/mesh"
)

// ErrCancelled is returned when the progress callback asks the slicer
// to stop. Partial results are never returned alongside it.
var ErrCancelled = errors.New("slicer: cancelled")

// Params are the geometry-affecting slicer settings (spec.md §3); the
// printing-process options (perimeters, infill, …) live one layer up in
// pkg/model and never reach this package.
type Params struct {
	FirstLayerHeight float64 // mm, > 0
	LayerHeight      float64 // mm, > 0
}

// ProgressFunc is invoked at ~1% intervals of triangle traversal with a
// percent-complete value and a phase message; returning true cancels the
// slice (spec.md §4.2 "Scheduling & progress").
type ProgressFunc func(percent int, message string) (cancel bool)

// Diagnostics counts geometry the slicer and contour assembler silently
// dropped, surfaced so a caller can decide whether to warn a user (spec.md
// §7's "optional diagnostics counter", expanded per SPEC_FULL.md's
// original_source supplement).
type Diagnostics struct {
	DegenerateTriangles int // Z-parallel, colinear, or duplicate-vertex triangles
	OpenChains          int // chains discarded for never closing (too short or dangling)
	SelfLoopChains      int // single-intersection chains whose forward edge is their own backward edge
}

// Result is the slicer's raw output: one intersection list per layer,
// plus the scaled (integer, translated) bounding box the layers were
// computed against.
type Result struct {
	IntersectionsByLayer [][]Intersection
	NumLayers            int
	Bounds               BoundsI
	Diagnostics          Diagnostics
}

// BoundsI is the mesh bounding box after translation to a Z-axis-centered,
// Z-min-zero frame and scaling to VertexPrecision.
type BoundsI struct {
	MinX, MinY, MinZ int32
	MaxX, MaxY, MaxZ int32
}

// Slice intersects every non-degenerate, non-Z-parallel triangle of m
// against the Z-planes it spans, under p, reporting progress through
// progress. It returns ErrCancelled if progress asked to stop.
func Slice(m *mesh.Mesh, p Params, progress ProgressFunc) (*Result, error) {
	if len(m.Faces) == 0 {
		return &Result{}, nil
	}

	scaled, bounds := scaleVertices(m)

	// The Mesh Loader keeps one vertex per (position, normal) pair, so the
	// triangles on either side of a crease hold different indices for the
	// same corner; map each index to the first one at its scaled position.
	canonical := make([]uint32, len(scaled))
	firstAt := make(map[Vertex3i]uint32, len(scaled))
	for i, sv := range scaled {
		if j, ok := firstAt[sv]; ok {
			canonical[i] = j
			continue
		}
		firstAt[sv] = uint32(i)
		canonical[i] = uint32(i)
	}

	firstLayerHeight := p.FirstLayerHeight * VertexPrecision
	layerHeight := p.LayerHeight * VertexPrecision

	numLayers := int(math.Floor((float64(bounds.MaxZ)-firstLayerHeight)/layerHeight)) + 1
	if numLayers < 1 {
		numLayers = 1
	}

	arena := newEdgeArena()
	result := &Result{
		IntersectionsByLayer: make([][]Intersection, numLayers),
		NumLayers:            numLayers,
		Bounds:               bounds,
	}

	total := len(m.Faces)
	checkEvery := total / 100
	if checkEvery < 1 {
		checkEvery = 1
	}

	for i, tri := range m.Faces {
		if i%checkEvery == 0 {
			percent := i * 100 / total
			if progress != nil && progress(percent, "Slicing...") {
				return nil, ErrCancelled
			}
		}

		v := [3]uint32{canonical[tri.V[0]], canonical[tri.V[1]], canonical[tri.V[2]]}
		z := [3]int32{scaled[v[0]].Z, scaled[v[1]].Z, scaled[v[2]].Z}
		if isDegenerate(v, scaled) {
			result.Diagnostics.DegenerateTriangles++
			continue
		}

		ot := orderTriangle(v, z)
		if scaled[ot.min].Z == scaled[ot.max].Z {
			// Z-parallel: contributes no crossings of its own.
			result.Diagnostics.DegenerateTriangles++
			continue
		}

		sliceTriangle(scaled, arena, ot, firstLayerHeight, layerHeight, result)
	}

	if progress != nil && progress(100, "Slicing...") {
		return nil, ErrCancelled
	}

	return result, nil
}

// isDegenerate reports whether a triangle has two identical vertices or
// is colinear (zero area). Such triangles are silently skipped per
// spec.md §4.2's failure model.
func isDegenerate(v [3]uint32, scaled []Vertex3i) bool {
	if v[0] == v[1] || v[1] == v[2] || v[0] == v[2] {
		return true
	}
	a, b, c := scaled[v[0]], scaled[v[1]], scaled[v[2]]
	// 2D cross product of two edges in each of the three coordinate
	// planes; all-zero means the triangle is degenerate in 3D too.
	ux, uy, uz := int64(b.X-a.X), int64(b.Y-a.Y), int64(b.Z-a.Z)
	vx, vy, vz := int64(c.X-a.X), int64(c.Y-a.Y), int64(c.Z-a.Z)
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	return cx == 0 && cy == 0 && cz == 0
}

// sliceTriangle implements spec.md §4.2 steps 3-7 for one
// already-ordered, non-degenerate, non-Z-parallel triangle.
func sliceTriangle(scaled []Vertex3i, arena *edgeArena, ot orderedTriangle, firstLayerHeight, layerHeight float64, result *Result) {
	s1 := arena.get(ot.min, ot.max)
	s2 := arena.get(ot.min, ot.med)
	s3 := arena.get(ot.med, ot.max)
	edgeByLot := func(slot edgeSlot) EdgeID {
		switch slot {
		case slotS1:
			return s1
		case slotS2:
			return s2
		default:
			return s3
		}
	}

	assign := orientationTable(ot.slotMin, ot.slotMax)
	lowerFwd := edgeByLot(assign.lowerForward)
	upperFwd := edgeByLot(assign.upperForward)
	lowerBwd := edgeByLot(assign.lowerBackward)
	upperBwd := edgeByLot(assign.upperBackward)

	vMin, vMed, vMax := scaled[ot.min], scaled[ot.med], scaled[ot.max]

	layerIndex := func(z int32) int {
		l := int(math.Floor((float64(z)-firstLayerHeight)/layerHeight)) + 1
		if l < 0 {
			return 0
		}
		return l
	}
	start := layerIndex(vMin.Z)
	middle := layerIndex(vMed.Z)
	end := layerIndex(vMax.Z)

	for l := start; l < middle && l < len(result.IntersectionsByLayer); l++ {
		z := int32(firstLayerHeight + float64(l)*layerHeight)
		from, to := edgeEndpoints(ot, assign.lowerForward, vMin, vMed, vMax)
		x, y := intersectEdge(from, to, z)
		result.IntersectionsByLayer[l] = append(result.IntersectionsByLayer[l], Intersection{
			Layer: l, X: x, Y: y, Forward: lowerFwd, Backward: lowerBwd,
		})
	}
	for l := middle; l < end && l < len(result.IntersectionsByLayer); l++ {
		z := int32(firstLayerHeight + float64(l)*layerHeight)
		from, to := edgeEndpoints(ot, assign.upperForward, vMin, vMed, vMax)
		x, y := intersectEdge(from, to, z)
		result.IntersectionsByLayer[l] = append(result.IntersectionsByLayer[l], Intersection{
			Layer: l, X: x, Y: y, Forward: upperFwd, Backward: upperBwd,
		})
	}
}

// edgeEndpoints returns the two triangle-vertex coordinates for the
// given sorted edge slot, in (from, to) = (v_min-side, v_max-side) order
// so intersectEdge's parameterization is consistent.
func edgeEndpoints(ot orderedTriangle, slot edgeSlot, vMin, vMed, vMax Vertex3i) (Vertex3i, Vertex3i) {
	switch slot {
	case slotS1:
		return vMin, vMax
	case slotS2:
		return vMin, vMed
	default:
		return vMed, vMax
	}
}

// intersectEdge computes the (x,y) of the edge P->Q at height z (spec.md
// §4.2 step 7): s = (z-P.z)/(Q.z-P.z), then linear interpolation.
func intersectEdge(p, q Vertex3i, z int32) (int32, int32) {
	if q.Z == p.Z {
		return p.X, p.Y
	}
	s := float64(z-p.Z) / float64(q.Z-p.Z)
	x := float64(p.X) + s*float64(q.X-p.X)
	y := float64(p.Y) + s*float64(q.Y-p.Y)
	return int32(x), int32(y)
}

// scaleVertices implements spec.md §4.2's coordinate preparation:
// translate so the bounding-box center lies on the Z axis and z_min=0,
// then scale by VertexPrecision and truncate to int32.
func scaleVertices(m *mesh.Mesh) ([]Vertex3i, BoundsI) {
	center := m.Bounds.Center()
	cx, cy, minZ := center.X, center.Y, m.Bounds.MinZ

	scaled := make([]Vertex3i, len(m.Vertices))
	for i, v := range m.Vertices {
		scaled[i] = Vertex3i{
			X: int32((float64(v.X) - float64(cx)) * VertexPrecision),
			Y: int32((float64(v.Y) - float64(cy)) * VertexPrecision),
			Z: int32((float64(v.Z) - float64(minZ)) * VertexPrecision),
		}
	}

	bounds := BoundsI{
		MinX: int32((float64(m.Bounds.MinX) - float64(cx)) * VertexPrecision),
		MaxX: int32((float64(m.Bounds.MaxX) - float64(cx)) * VertexPrecision),
		MinY: int32((float64(m.Bounds.MinY) - float64(cy)) * VertexPrecision),
		MaxY: int32((float64(m.Bounds.MaxY) - float64(cy)) * VertexPrecision),
		MinZ: 0,
		MaxZ: int32((float64(m.Bounds.MaxZ) - float64(minZ)) * VertexPrecision),
	}
	return scaled, bounds
}
