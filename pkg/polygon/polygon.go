// Package polygon is the Polygon Engine collaborator described in spec.md
// §4.5: boolean ops, mitered offsetting, and open-path clipping on
// integer-coordinate polygons. It is a thin wrapper around
// github.com/ctessum/go.clipper (a Go port of the Angus Johnson Clipper
// library), chosen because spec.md §9 names "Clipper, Clipper2, or
// equivalent" as the assumed dependency.
package polygon

import (
	clipper "github.com/ctessum/go.clipper"
)

// Point is an integer-coordinate 2D point, in the same units as
// slicer.Vertex3i's X/Y (micrometers at the default vertex precision).
type Point struct {
	X, Y int64
}

// Path is an ordered list of points forming one polygon ring or one open
// polyline.
type Path []Point

// Paths is a set of Path, e.g. one layer's outlines (outer rings and
// holes together) or one infill boundary's regions.
type Paths []Path

// FillRule selects how self-intersecting/nested paths resolve to a
// filled area.
type FillRule int

const (
	// NonZero is used at union time per spec.md §9's Open Questions
	// resolution ("the spec fixes Non-Zero at union time").
	NonZero FillRule = iota
	EvenOdd
)

func (f FillRule) toClipper() clipper.PolyFillType {
	if f == EvenOdd {
		return clipper.PftEvenOdd
	}
	return clipper.PftNonZero
}

func toClipperPath(p Path) clipper.Path {
	cp := make(clipper.Path, len(p))
	for i, pt := range p {
		cp[i] = &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)}
	}
	return cp
}

func toClipperPaths(ps Paths) clipper.Paths {
	cps := make(clipper.Paths, len(ps))
	for i, p := range ps {
		cps[i] = toClipperPath(p)
	}
	return cps
}

func fromClipperPath(cp clipper.Path) Path {
	p := make(Path, len(cp))
	for i, pt := range cp {
		p[i] = Point{X: int64(pt.X), Y: int64(pt.Y)}
	}
	return p
}

func fromClipperPaths(cps clipper.Paths) Paths {
	ps := make(Paths, len(cps))
	for i, cp := range cps {
		ps[i] = fromClipperPath(cp)
	}
	return ps
}

func boolOp(op clipper.ClipType, subject, clip Paths, rule FillRule) Paths {
	c := clipper.NewClipper(clipper.IoNone)
	if len(subject) > 0 {
		c.AddPaths(toClipperPaths(subject), clipper.PtSubject, true)
	}
	if len(clip) > 0 {
		c.AddPaths(toClipperPaths(clip), clipper.PtClip, true)
	}
	solution, _ := c.Execute(op, rule.toClipper(), rule.toClipper())
	return fromClipperPaths(solution)
}

// Union merges subject and clip into one polygon set under rule.
// A nil clip just normalizes subject (resolves self-overlaps).
func Union(subject, clip Paths, rule FillRule) Paths {
	return boolOp(clipper.CtUnion, subject, clip, rule)
}

// Intersection returns the region covered by both subject and clip.
func Intersection(subject, clip Paths, rule FillRule) Paths {
	return boolOp(clipper.CtIntersection, subject, clip, rule)
}

// Difference returns subject with clip subtracted out.
func Difference(subject, clip Paths, rule FillRule) Paths {
	return boolOp(clipper.CtDifference, subject, clip, rule)
}

// JoinType selects the corner treatment used by Offset. The engine
// contract (§4.5) only requires miter joints.
type JoinType int

const (
	JoinMiter JoinType = iota
)

// Offset grows (delta > 0) or shrinks (delta < 0) paths by delta, using
// a miter joint and treating every path as a closed polygon — the
// "inset-then-outset" pattern described in spec.md §4.4/§9 is built by
// calling Offset twice with opposite-signed deltas, not inside this
// function.
func Offset(paths Paths, delta float64, _ JoinType) Paths {
	if len(paths) == 0 {
		return nil
	}
	co := clipper.NewClipperOffset()
	co.AddPaths(toClipperPaths(paths), clipper.JtMiter, clipper.EtClosedPolygon)
	solution := co.Execute(delta)
	return fromClipperPaths(solution)
}

// ClipOpenPaths intersects a set of open polylines (e.g. an infill comb)
// against closed polygons (e.g. an infill boundary), returning the
// surviving open sub-paths. Used by pkg/infill.
func ClipOpenPaths(openPaths Paths, closedBoundary Paths) Paths {
	if len(openPaths) == 0 || len(closedBoundary) == 0 {
		return nil
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toClipperPaths(openPaths), clipper.PtSubject, false)
	c.AddPaths(toClipperPaths(closedBoundary), clipper.PtClip, true)

	tree, _ := c.Execute2(clipper.CtIntersection, clipper.PftNonZero, clipper.PftNonZero)
	return fromClipperPaths(clipper.OpenPathsFromPolyTree(tree))
}

// Bounds returns the axis-aligned bounding box covering every point in
// paths. Returns (0,0,0,0,false) for an empty set.
func Bounds(paths Paths) (minX, minY, maxX, maxY int64, ok bool) {
	first := true
	for _, p := range paths {
		for _, pt := range p {
			if first {
				minX, maxX = pt.X, pt.X
				minY, maxY = pt.Y, pt.Y
				first = false
				continue
			}
			if pt.X < minX {
				minX = pt.X
			}
			if pt.X > maxX {
				maxX = pt.X
			}
			if pt.Y < minY {
				minY = pt.Y
			}
			if pt.Y > maxY {
				maxY = pt.Y
			}
		}
	}
	return minX, minY, maxX, maxY, !first
}

// IsHole reports whether path is wound clockwise, the engine's
// convention (per §4.5's "Orientation query") for marking a ring as a
// hole rather than a solid region.
func IsHole(path Path) bool {
	return signedArea(path) < 0
}

// signedArea computes twice the signed area of path via the shoelace
// formula; sign gives winding direction.
func signedArea(path Path) int64 {
	var area int64
	n := len(path)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += path[i].X*path[j].Y - path[j].X*path[i].Y
	}
	return area
}
