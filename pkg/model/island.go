package model

import (
	"github.com/dhconnelly/rtreego"

	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/polygon"
)

// layerBox adapts a layer's outline bounding box to rtreego.Spatial so the
// island-propagation loop can prune candidates by bounding-box overlap
// before paying for a polygon boolean operation.
type layerBox struct {
	index  int
	bounds rtreego.Rect
}

func (b *layerBox) Bounds() rtreego.Rect { return b.bounds }

// rectOf converts a polygon set's bounding box to an rtreego.Rect. Returns
// false if paths is empty (rtreego rejects zero-size rectangles).
func rectOf(paths polygon.Paths) (rtreego.Rect, bool) {
	minX, minY, maxX, maxY, ok := polygon.Bounds(paths)
	if !ok {
		return rtreego.Rect{}, false
	}
	width := float64(maxX-minX) + 1
	height := float64(maxY-minY) + 1
	r, err := rtreego.NewRect(rtreego.Point{float64(minX), float64(minY)}, []float64{width, height})
	if err != nil {
		return rtreego.Rect{}, false
	}
	return r, true
}

// buildOutlineIndex indexes every layer's outline bounding box so the
// island walk can ask whether any layer's outline bounding box overlaps a
// region before running a full polygon intersection (spec.md §4.7 step
// 5's propagation).
func buildOutlineIndex(layers []*layer.Layer) *rtreego.Rtree {
	rt := rtreego.NewTree(2, 25, 50)
	for i, ly := range layers {
		r, ok := rectOf(ly.Outlines)
		if !ok {
			continue
		}
		rt.Insert(&layerBox{index: i, bounds: r})
	}
	return rt
}

// candidateOverlap reports whether any indexed layer has an outline
// bounding box overlapping region's bounding box — a cheap reject before
// the propagation loop runs a real polygon.Intersection. Layers at every
// height are searched, including the layer region was taken from.
func candidateOverlap(rt *rtreego.Rtree, region polygon.Paths) bool {
	r, ok := rectOf(region)
	if !ok {
		return false
	}
	return len(rt.SearchIntersect(r)) > 0
}
