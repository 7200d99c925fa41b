package contour

import (
	"testing"

	"github.com/mprochnow/slice2print/pkg/slicer"
)

// square4 returns four intersections forming a closed 4-cycle by edge
// identity: edges 10,11,12,13 chain forward->backward around the loop.
func square4() []slicer.Intersection {
	return []slicer.Intersection{
		{X: 0, Y: 0, Forward: 11, Backward: 10},
		{X: 10, Y: 0, Forward: 12, Backward: 11},
		{X: 10, Y: 10, Forward: 13, Backward: 12},
		{X: 0, Y: 10, Forward: 10, Backward: 13},
	}
}

func TestAssembleClosesSquareInAnyOrder(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	base := square4()
	for _, order := range orders {
		var shuffled []slicer.Intersection
		for _, idx := range order {
			shuffled = append(shuffled, base[idx])
		}
		lc := Assemble(shuffled, 1.0, nil)
		if len(lc.Chains) != 1 {
			t.Fatalf("order %v: got %d chains, want 1", order, len(lc.Chains))
		}
		if lc.Chains[0].Len() != 4 {
			t.Errorf("order %v: chain length = %d, want 4", order, lc.Chains[0].Len())
		}
	}
}

func TestAssembleDiscardsSelfLoop(t *testing.T) {
	var diag slicer.Diagnostics
	lc := Assemble([]slicer.Intersection{
		{X: 0, Y: 0, Forward: 5, Backward: 5},
	}, 0.2, &diag)
	if len(lc.Chains) != 0 {
		t.Errorf("got %d chains, want 0 (self-loop discarded)", len(lc.Chains))
	}
	if diag.SelfLoopChains != 1 {
		t.Errorf("diag.SelfLoopChains = %d, want 1", diag.SelfLoopChains)
	}
}

func TestAssembleDiscardsShortChain(t *testing.T) {
	// Two intersections forming a closed 2-cycle: below MinChainLength.
	var diag slicer.Diagnostics
	lc := Assemble([]slicer.Intersection{
		{X: 0, Y: 0, Forward: 2, Backward: 1},
		{X: 10, Y: 0, Forward: 1, Backward: 2},
	}, 0.2, &diag)
	if len(lc.Chains) != 0 {
		t.Errorf("got %d chains, want 0 (chain shorter than MinChainLength)", len(lc.Chains))
	}
	if diag.OpenChains != 1 {
		t.Errorf("diag.OpenChains = %d, want 1", diag.OpenChains)
	}
}

func TestAssembleCountsNeverClosedChain(t *testing.T) {
	// A single intersection whose forward/backward edges never reappear:
	// stays in the open set for the whole layer, never closes.
	var diag slicer.Diagnostics
	lc := Assemble([]slicer.Intersection{
		{X: 0, Y: 0, Forward: 7, Backward: 8},
	}, 0.2, &diag)
	if len(lc.Chains) != 0 {
		t.Errorf("got %d chains, want 0", len(lc.Chains))
	}
	if diag.OpenChains != 1 {
		t.Errorf("diag.OpenChains = %d, want 1", diag.OpenChains)
	}
}

func TestAssembleTwoDisjointLoops(t *testing.T) {
	loopA := square4()
	loopB := []slicer.Intersection{
		{X: 100, Y: 0, Forward: 21, Backward: 20},
		{X: 110, Y: 0, Forward: 22, Backward: 21},
		{X: 110, Y: 10, Forward: 23, Backward: 22},
		{X: 100, Y: 10, Forward: 20, Backward: 23},
	}
	var all []slicer.Intersection
	all = append(all, loopA...)
	all = append(all, loopB...)

	lc := Assemble(all, 0.4, nil)
	if len(lc.Chains) != 2 {
		t.Fatalf("got %d chains, want 2 disjoint loops", len(lc.Chains))
	}
	for _, c := range lc.Chains {
		if c.Len() != 4 {
			t.Errorf("chain length = %d, want 4", c.Len())
		}
	}
}

func TestAssembleMergesTwoOpenFragments(t *testing.T) {
	// Build the square so that pt0 and pt2 first start two separate open
	// fragments; pt1 then links both, forcing a chain-to-chain merge rather
	// than a single-point append, and pt3 closes the loop.
	base := square4()
	order := []int{0, 2, 1, 3}
	var shuffled []slicer.Intersection
	for _, idx := range order {
		shuffled = append(shuffled, base[idx])
	}
	lc := Assemble(shuffled, 0.6, nil)
	if len(lc.Chains) != 1 {
		t.Fatalf("got %d chains, want 1 merged loop", len(lc.Chains))
	}
	if lc.Chains[0].Len() != 4 {
		t.Errorf("chain length = %d, want 4", lc.Chains[0].Len())
	}
}

func TestLayerContourZ(t *testing.T) {
	lc := Assemble(square4(), 2.4, nil)
	if lc.Z != 2.4 {
		t.Errorf("Z = %v, want 2.4", lc.Z)
	}
}
