package infill

import (
	"testing"

	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/polygon"
)

func boundarySquare(side int64) polygon.Paths {
	return polygon.Paths{{
		{X: 0, Y: 0},
		{X: side, Y: 0},
		{X: side, Y: side},
		{X: 0, Y: side},
	}}
}

func TestGenerateProducesSegmentsInsideBoundary(t *testing.T) {
	boundary := boundarySquare(10000)
	segs := Generate(boundary, 0, Params{ExtrusionWidthInfill: 480, OverlapFactor: 0.4, AngleDeg: 45})
	if len(segs) == 0 {
		t.Fatal("Generate() produced no segments")
	}
	for _, s := range segs {
		for _, pt := range []polygon.Point{s.Start, s.End} {
			if pt.X < -10 || pt.X > 10010 || pt.Y < -10 || pt.Y > 10010 {
				t.Errorf("segment point %+v falls well outside boundary", pt)
			}
		}
	}
}

func TestGenerateAlternatesAngleByLayerParity(t *testing.T) {
	boundary := boundarySquare(10000)
	params := Params{ExtrusionWidthInfill: 480, OverlapFactor: 0.4, AngleDeg: 0}

	even := Generate(boundary, 0, params)
	odd := Generate(boundary, 1, params)

	if len(even) == 0 || len(odd) == 0 {
		t.Fatal("Generate() produced no segments for one of the two layers")
	}

	// At angle 0 the even layer's lines run vertical (near-constant X per
	// segment); the odd layer is rotated 90° so its lines run horizontal
	// (near-constant Y per segment) instead.
	if !mostlyVertical(even) {
		t.Error("even layer (angle 0) expected to be mostly vertical lines")
	}
	if !mostlyHorizontal(odd) {
		t.Error("odd layer (angle 90) expected to be mostly horizontal lines")
	}
}

func mostlyVertical(segs []layer.Segment) bool {
	count := 0
	for _, s := range segs {
		dx := abs(s.End.X - s.Start.X)
		dy := abs(s.End.Y - s.Start.Y)
		if dy > dx {
			count++
		}
	}
	return count > len(segs)/2
}

func mostlyHorizontal(segs []layer.Segment) bool {
	count := 0
	for _, s := range segs {
		dx := abs(s.End.X - s.Start.X)
		dy := abs(s.End.Y - s.Start.Y)
		if dx > dy {
			count++
		}
	}
	return count > len(segs)/2
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestGenerateEmptyBoundary(t *testing.T) {
	segs := Generate(nil, 0, Params{ExtrusionWidthInfill: 480, OverlapFactor: 0.4, AngleDeg: 0})
	if segs != nil {
		t.Errorf("Generate(nil) = %v, want nil", segs)
	}
}
