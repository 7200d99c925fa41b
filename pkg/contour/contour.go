// Package contour stitches per-layer Slicer intersections into closed
// polygonal chains by matching triangle edge identity, instead of any
// geometric nearest-point search (spec.md §4.3).
package contour

import "github.com/mprochnow/slice2print/pkg/slicer"

// MinChainLength is the shortest chain, in vertices, that can form a
// polygon. Chains shorter than this after assembly are discarded.
const MinChainLength = 3

// Chain is an insertion-ordered sequence of intersections, backed by a
// slice: appends are amortized O(1), while prepends copy the whole chain.
type Chain struct {
	points []slicer.Intersection
}

// First returns the chain's first intersection.
func (c *Chain) First() slicer.Intersection { return c.points[0] }

// Last returns the chain's last intersection.
func (c *Chain) Last() slicer.Intersection { return c.points[len(c.points)-1] }

// Len reports the number of intersections in the chain.
func (c *Chain) Len() int { return len(c.points) }

// Points returns the chain's intersections in order. The caller must not
// mutate the returned slice.
func (c *Chain) Points() []slicer.Intersection { return c.points }

func (c *Chain) prepend(i slicer.Intersection) {
	c.points = append([]slicer.Intersection{i}, c.points...)
}

func (c *Chain) append(i slicer.Intersection) {
	c.points = append(c.points, i)
}

func (c *Chain) prependChain(other *Chain) {
	c.points = append(other.points, c.points...)
}

func (c *Chain) appendChain(other *Chain) {
	c.points = append(c.points, other.points...)
}

// closed reports whether the chain's last backward edge matches its
// first forward edge (spec.md §4.3).
func (c *Chain) closed() bool {
	return c.Last().Backward == c.First().Forward
}

// LayerContour is one layer's fully-stitched set of chains, plus the
// layer's absolute Z height in millimeters.
type LayerContour struct {
	Chains []*Chain
	Z      float64
}

// Assemble stitches a layer's arbitrarily-ordered intersections into
// closed chains, using the two-hash-map incremental algorithm from
// spec.md §4.3: each new intersection is matched to an existing chain's
// open end in O(1) amortized time, rather than scanning every chain.
// diag, if non-nil, accumulates counts of discarded self-loops and chains
// that never closed into a polygon (SPEC_FULL.md's diagnostics supplement).
func Assemble(intersections []slicer.Intersection, z float64, diag *slicer.Diagnostics) LayerContour {
	byForwardOfFirst := make(map[slicer.EdgeID]*Chain)
	byBackwardOfLast := make(map[slicer.EdgeID]*Chain)

	var open []*Chain

	unindexFirst := func(c *Chain) {
		if byForwardOfFirst[c.First().Forward] == c {
			delete(byForwardOfFirst, c.First().Forward)
		}
	}
	unindexLast := func(c *Chain) {
		if byBackwardOfLast[c.Last().Backward] == c {
			delete(byBackwardOfLast, c.Last().Backward)
		}
	}
	indexFirst := func(c *Chain) { byForwardOfFirst[c.First().Forward] = c }
	indexLast := func(c *Chain) { byBackwardOfLast[c.Last().Backward] = c }

	var closedChains []*Chain

	removeOpen := func(c *Chain) {
		for i, o := range open {
			if o == c {
				open = append(open[:i], open[i+1:]...)
				return
			}
		}
	}

	for _, inter := range intersections {
		if c, ok := byForwardOfFirst[inter.Backward]; ok {
			unindexFirst(c)
			c.prepend(inter)

			if c.closed() {
				unindexLast(c)
				removeOpen(c)
				closedChains = append(closedChains, c)
				continue
			}

			if other, ok := byBackwardOfLast[c.First().Forward]; ok && other != c {
				unindexLast(other)
				unindexFirst(c)
				other.appendChain(c)
				removeOpen(c)
				if other.closed() {
					unindexLast(other)
					removeOpen(other)
					closedChains = append(closedChains, other)
				} else {
					indexFirst(other)
					indexLast(other)
				}
				continue
			}

			indexFirst(c)
			continue
		}

		if c, ok := byBackwardOfLast[inter.Forward]; ok {
			unindexLast(c)
			c.append(inter)

			if c.closed() {
				unindexFirst(c)
				removeOpen(c)
				closedChains = append(closedChains, c)
				continue
			}

			if other, ok := byForwardOfFirst[c.Last().Backward]; ok && other != c {
				unindexFirst(other)
				unindexLast(c)
				c.appendChain(other)
				removeOpen(other)
				if c.closed() {
					unindexFirst(c)
					removeOpen(c)
					closedChains = append(closedChains, c)
				} else {
					indexFirst(c)
					indexLast(c)
				}
				continue
			}

			indexLast(c)
			continue
		}

		if inter.Forward == inter.Backward {
			// A single intersection whose own forward edge is its backward
			// edge closes against itself immediately: a self-loop, discarded
			// per spec.md §4.3 rather than ever entering the open set.
			if diag != nil {
				diag.SelfLoopChains++
			}
			continue
		}

		c := &Chain{points: []slicer.Intersection{inter}}
		open = append(open, c)
		indexFirst(c)
		indexLast(c)
	}

	var result []*Chain
	for _, c := range closedChains {
		if c.Len() == 1 {
			// Self-loop: a single intersection closed against itself is a
			// degenerate outline (spec.md §4.3's tie-break rule).
			if diag != nil {
				diag.SelfLoopChains++
			}
			continue
		}
		if c.Len() < MinChainLength {
			if diag != nil {
				diag.OpenChains++
			}
			continue
		}
		result = append(result, c)
	}

	if diag != nil {
		// Chains still in the open set never found a closing edge at all —
		// the other half of spec.md §4.3's "chains that failed to close".
		diag.OpenChains += len(open)
	}

	return LayerContour{Chains: result, Z: z}
}
