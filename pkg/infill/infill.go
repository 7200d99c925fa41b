// Package infill generates the line-pattern fill for one layer's infill
// boundary: a comb of parallel lines, rotated per-layer to form an
// orthogonal grid across the stack, then clipped to the boundary
// (spec.md §4.6).
package infill

import (
	"math"

	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/polygon"
)

// Params are the extrusion settings the comb spacing and rotation angle
// are derived from, already scaled to integer units where applicable.
type Params struct {
	ExtrusionWidthInfill int64   // scaled by VERTEX_PRECISION
	OverlapFactor        float64 // unscaled fraction, e.g. 0.4
	AngleDeg             float64 // infill_angle, 0-90
}

// Generate implements spec.md §4.6: build an axis-aligned comb sized to
// the boundary's bounding box, rotate it (alternating by 90° every other
// layer), center it on the boundary, and clip it against the boundary to
// produce the surviving infill line segments.
func Generate(boundary polygon.Paths, layerNo int, p Params) []layer.Segment {
	minX, minY, maxX, maxY, ok := polygon.Bounds(boundary)
	if !ok {
		return nil
	}

	width := maxX - minX
	height := maxY - minY
	l := width
	if height > l {
		l = height
	}
	if l == 0 {
		return nil
	}
	x0 := (minX + maxX) / 2
	y0 := (minY + maxY) / 2

	d := spacing(p)
	if d <= 0 {
		return nil
	}
	n := int(math.Ceil(float64(l) / float64(d)))

	angle := p.AngleDeg
	if layerNo%2 != 0 {
		angle += 90
	}
	rad := angle * math.Pi / 180

	comb := buildComb(l, d, n)
	comb = rotateAndTranslate(comb, rad, x0, y0)

	clipped := polygon.ClipOpenPaths(comb, boundary)

	var segments []layer.Segment
	for _, path := range clipped {
		for i := 0; i+1 < len(path); i++ {
			segments = append(segments, layer.Segment{Start: path[i], End: path[i+1]})
		}
	}
	return segments
}

// spacing computes d = (extrusion_width_infill - overlap_factor/2) *
// VERTEX_PRECISION as an integer (spec.md §4.6 step 2). ExtrusionWidthInfill
// is already scaled, so only the overlap term needs scaling here.
func spacing(p Params) int64 {
	const vertexPrecision = 1000
	overlap := int64(p.OverlapFactor / 2 * vertexPrecision)
	d := p.ExtrusionWidthInfill - overlap
	if d <= 0 {
		return 1
	}
	return d
}

// buildComb generates 2n+1 vertical segments of length 2l, spaced by d,
// centered on the origin (spec.md §4.6 step 3).
func buildComb(l, d int64, n int) polygon.Paths {
	paths := make(polygon.Paths, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		x := int64(i) * d
		paths = append(paths, polygon.Path{
			{X: x, Y: -l},
			{X: x, Y: l},
		})
	}
	return paths
}

// rotateAndTranslate rotates every point of paths by rad radians about the
// origin, then translates by (dx,dy) — spec.md §4.6 steps 4-5.
func rotateAndTranslate(paths polygon.Paths, rad float64, dx, dy int64) polygon.Paths {
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make(polygon.Paths, len(paths))
	for i, path := range paths {
		np := make(polygon.Path, len(path))
		for j, pt := range path {
			x, y := float64(pt.X), float64(pt.Y)
			rx := x*cos - y*sin
			ry := x*sin + y*cos
			np[j] = polygon.Point{
				X: int64(rx) + dx,
				Y: int64(ry) + dy,
			}
		}
		out[i] = np
	}
	return out
}
