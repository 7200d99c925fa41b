package slicer

// VertexPrecision is the fixed integer scale converting millimeter floats
// to micrometer integers (spec.md §3's VERTEX_PRECISION).
const VertexPrecision = 1000

// Vertex3i is an integer-coordinate point, in micrometers at the default
// vertex precision. Everything downstream of the Mesh Loader is integer;
// float coordinates never reappear.
type Vertex3i struct {
	X, Y, Z int32
}

// EdgeID indexes into a mesh's edge arena. Two EdgeIDs are equal exactly
// when they reference the same pair of vertex indices, so edge identity
// collapses to an integer compare — the "edge identity as a graph
// backbone" design from spec.md §9.
type EdgeID int32

// edgeArena maps canonical (min,max) vertex-index pairs to a stable
// EdgeID, so that two triangles sharing an edge agree on its identity.
type edgeArena struct {
	ids   map[[2]uint32]EdgeID
	edges [][2]uint32
}

func newEdgeArena() *edgeArena {
	return &edgeArena{ids: make(map[[2]uint32]EdgeID)}
}

func (a *edgeArena) get(v1, v2 uint32) EdgeID {
	key := [2]uint32{v1, v2}
	if v1 > v2 {
		key = [2]uint32{v2, v1}
	}
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := EdgeID(len(a.edges))
	a.edges = append(a.edges, key)
	a.ids[key] = id
	return id
}

// edgeSlot names one of a triangle's three sorted edges (spec.md §4.2):
// s1 = (v_min, v_max), s2 = (v_min, v_med), s3 = (v_med, v_max).
type edgeSlot int

const (
	slotS1 edgeSlot = iota
	slotS2
	slotS3
)

// edgeAssignment is the 4-tuple (lower_fwd, upper_fwd, lower_bwd, upper_bwd)
// from spec.md §4.2's six-case table, expressed as a tagged sum instead of
// the 6-row table so a switch picks it directly (spec.md §9's suggested
// shape for the OrderedTriangle slot tags).
type edgeAssignment struct {
	lowerForward, upperForward   edgeSlot
	lowerBackward, upperBackward edgeSlot
}

// orientationTable implements spec.md §4.2's six-case table, keyed by
// (slot(v_min), slot(v_max)) where slots are the original 0/1/2 position
// of each vertex in the triangle before Z-sorting.
func orientationTable(slotMin, slotMax int) edgeAssignment {
	switch [2]int{slotMin, slotMax} {
	case [2]int{0, 1}:
		return edgeAssignment{slotS2, slotS3, slotS1, slotS1}
	case [2]int{0, 2}:
		return edgeAssignment{slotS1, slotS1, slotS2, slotS3}
	case [2]int{1, 0}:
		return edgeAssignment{slotS1, slotS1, slotS2, slotS3}
	case [2]int{1, 2}:
		return edgeAssignment{slotS2, slotS3, slotS1, slotS1}
	case [2]int{2, 0}:
		return edgeAssignment{slotS2, slotS3, slotS1, slotS1}
	case [2]int{2, 1}:
		return edgeAssignment{slotS1, slotS1, slotS2, slotS3}
	default:
		panic("slicer: impossible slot pair")
	}
}

// orderedTriangle re-labels a triangle's vertices (v_min, v_med, v_max)
// by Z, keeping each vertex's original slot tag (spec.md's OrderedTriangle).
type orderedTriangle struct {
	min, med, max       uint32 // vertex indices into the mesh
	slotMin, slotMed, slotMax int
}

// orderTriangle sorts a triangle's three vertex indices by z. Ties are
// broken by original slot order, which keeps the sort stable and
// deterministic for horizontal (Z-parallel) triangles.
func orderTriangle(v [3]uint32, z [3]int32) orderedTriangle {
	order := [3]int{0, 1, 2}
	// Simple insertion sort over 3 elements, stable on ties.
	if z[order[0]] > z[order[1]] {
		order[0], order[1] = order[1], order[0]
	}
	if z[order[1]] > z[order[2]] {
		order[1], order[2] = order[2], order[1]
	}
	if z[order[0]] > z[order[1]] {
		order[0], order[1] = order[1], order[0]
	}
	return orderedTriangle{
		min: v[order[0]], med: v[order[1]], max: v[order[2]],
		slotMin: order[0], slotMed: order[1], slotMax: order[2],
	}
}

// Intersection is one triangle-plane crossing: a layer number, a 2D
// point on that layer's plane, and the two triangle edges that connect
// this crossing to its chain neighbors.
type Intersection struct {
	Layer    int
	X, Y     int32
	Forward  EdgeID
	Backward EdgeID
}
