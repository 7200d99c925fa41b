// Package layer turns one assembled LayerContour into a printable Layer:
// unioned outlines, concentric offset perimeter rings, and the polygon
// region infill lines are later clipped against (spec.md §4.4).
package layer

import (
	"errors"
	"math"

	"github.com/mprochnow/slice2print/pkg/contour"
	"github.com/mprochnow/slice2print/pkg/polygon"
	"github.com/mprochnow/slice2print/pkg/slicer"
)

// MinDistBetweenPoints is the minimum spacing, in integer units (1/1000mm
// at the default VERTEX_PRECISION), between consecutive outline points;
// anything closer is numerical noise from the slicer and is dropped.
const MinDistBetweenPoints = 50

// ErrEmptyLayer is returned when no chain of a layer yields an outline
// path, or when its outlines produce no perimeter 1 ring — the shape is
// thinner than the external extrusion width.
var ErrEmptyLayer = errors.New("layer: empty after offsetting")

// PerimeterParams carries the extrusion geometry the offsetting formula
// in spec.md §4.4 needs, already scaled to integer units.
type PerimeterParams struct {
	ExternalWidth int64 // W_ext
	Width         int64 // W_int
	OverlapFactor float64
	LayerHeight   int64 // h
	Count         int   // perimeters
	InfillOverlap float64 // percent, 0-100
	InfillWidth   int64   // extrusion_width_infill, scaled
}

// Layer is one layer's fully-built geometry: outlines, offset perimeter
// rings (outermost to innermost), and the region infill will be clipped
// against. Infill lines themselves are filled in later by pkg/infill.
type Layer struct {
	LayerNo     int
	Z           float64
	LayerHeight float64

	Outlines       polygon.Paths
	Perimeters     []polygon.Paths
	InfillBoundary polygon.Paths
	Infill         []Segment
}

// Segment is one infill line, in layer-plane integer coordinates.
type Segment struct {
	Start, End polygon.Point
}

// BuildOutlines implements spec.md §4.4's outline construction: collect
// each chain long enough to be a polygon, drop near-duplicate points, and
// union everything with the non-zero fill rule.
func BuildOutlines(lc contour.LayerContour) (polygon.Paths, error) {
	var paths polygon.Paths
	for _, c := range lc.Chains {
		path := dedupPath(c.Points())
		if len(path) < 3 {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, ErrEmptyLayer
	}
	return polygon.Union(paths, nil, polygon.NonZero), nil
}

// dedupPath converts a chain's intersections into a polygon path, dropping
// points closer than MinDistBetweenPoints to the previously kept point
// (spec.md §4.4 step 1).
func dedupPath(points []slicer.Intersection) polygon.Path {
	var path polygon.Path
	for _, p := range points {
		pt := polygon.Point{X: int64(p.X), Y: int64(p.Y)}
		if len(path) > 0 {
			last := path[len(path)-1]
			dx := float64(pt.X - last.X)
			dy := float64(pt.Y - last.Y)
			if math.Hypot(dx, dy) < MinDistBetweenPoints {
				continue
			}
		}
		path = append(path, pt)
	}
	return path
}

// Build assembles a full Layer from a stitched LayerContour and the
// extrusion parameters, running outline union then perimeter offsetting
// (spec.md §4.4).
func Build(lc contour.LayerContour, layerNo int, layerHeightMM float64, pp PerimeterParams) (*Layer, error) {
	outlines, err := BuildOutlines(lc)
	if err != nil {
		return nil, err
	}

	l := &Layer{
		LayerNo:     layerNo,
		Z:           lc.Z,
		LayerHeight: layerHeightMM,
		Outlines:    outlines,
	}

	rings, lastDk, err := OffsetPerimeters(outlines, pp)
	if err != nil {
		return nil, err
	}
	l.Perimeters = rings

	insetInfill := int64(float64(pp.InfillWidth) * pp.InfillOverlap / 100)
	l.InfillBoundary = InfillBoundary(outlines, lastDk, insetInfill)

	return l, nil
}

// OffsetPerimeters implements spec.md §4.4's ring formula: for k =
// 1..Count, inset by d_k (miter joints, closed polygons), then re-outset
// by W_ext/2 (k=1) or W_int/2 (k>1), stopping at the first empty result.
// Returns the offset ring set, outermost to innermost, plus the d_k used
// for the last (innermost) ring so the infill boundary and island
// detection can reuse it without recomputing the formula.
func OffsetPerimeters(outlines polygon.Paths, pp PerimeterParams) ([]polygon.Paths, int64, error) {
	var rings []polygon.Paths
	var lastDk int64

	for k := 1; k <= pp.Count; k++ {
		dk := RingOffset(k, pp)
		inset := polygon.Offset(outlines, -float64(dk), polygon.JoinMiter)
		if len(inset) == 0 {
			break
		}

		var outsetBy int64
		if k == 1 {
			outsetBy = pp.ExternalWidth / 2
		} else {
			outsetBy = pp.Width / 2
		}
		ring := polygon.Offset(inset, float64(outsetBy), polygon.JoinMiter)
		if len(ring) == 0 {
			break
		}

		rings = append(rings, ring)
		lastDk = dk
	}

	if len(rings) == 0 {
		return nil, 0, ErrEmptyLayer
	}
	return rings, lastDk, nil
}

// RingOffset computes d_k = W_ext + (k-1)*W_int - (k-1)*h*f.
func RingOffset(k int, pp PerimeterParams) int64 {
	if k == 1 {
		return pp.ExternalWidth
	}
	n := int64(k - 1)
	overlap := int64(float64(pp.LayerHeight) * pp.OverlapFactor)
	return pp.ExternalWidth + n*pp.Width - n*overlap
}

// InfillBoundary implements spec.md §4.4's infill-boundary step: offset
// the outlines by the innermost ring's d_k, then re-inset by insetInfill.
func InfillBoundary(outlines polygon.Paths, lastDk, insetInfill int64) polygon.Paths {
	inset := polygon.Offset(outlines, -float64(lastDk), polygon.JoinMiter)
	if len(inset) == 0 {
		return nil
	}
	return polygon.Offset(inset, -float64(insetInfill), polygon.JoinMiter)
}
