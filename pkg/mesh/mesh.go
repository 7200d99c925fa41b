// Package mesh loads triangulated surface models (STL) into flat vertex
// and index arrays, deduplicating vertices and tracking the bounding box
// as it goes.
package mesh

import (
	"fmt"
	"math"
	"strings"
)

// Vertex3f is a point in millimeters, as read from the input file.
type Vertex3f struct {
	X, Y, Z float32
}

// Sub returns v - o.
func (v Vertex3f) Sub(o Vertex3f) Vertex3f {
	return Vertex3f{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Cross returns the cross product v x o.
func (v Vertex3f) Cross(o Vertex3f) Vertex3f {
	return Vertex3f{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vertex3f) Normalize() Vertex3f {
	lenSq := float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if lenSq < 1e-20 {
		return v
	}
	length := float32(math.Sqrt(lenSq))
	return Vertex3f{v.X / length, v.Y / length, v.Z / length}
}

// IsZero reports whether v is exactly the zero vector.
func (v Vertex3f) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// BoundingBox holds the min/max extent of a mesh on each axis.
type BoundingBox struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

// Empty reports whether the box has never been extended by a vertex.
func (b BoundingBox) Empty() bool {
	return b.MinX > b.MaxX
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vertex3f {
	return Vertex3f{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
		Z: (b.MinZ + b.MaxZ) / 2,
	}
}

func newEmptyBoundingBox() BoundingBox {
	return BoundingBox{
		MinX: maxFloat32, MinY: maxFloat32, MinZ: maxFloat32,
		MaxX: -maxFloat32, MaxY: -maxFloat32, MaxZ: -maxFloat32,
	}
}

// extend widens the box, if necessary, to include v. Direct comparisons
// are used instead of a min/max helper so this stays inlineable in the
// per-vertex hot loop of the STL parsers.
func (b *BoundingBox) extend(v Vertex3f) {
	if v.X < b.MinX {
		b.MinX = v.X
	}
	if v.X > b.MaxX {
		b.MaxX = v.X
	}
	if v.Y < b.MinY {
		b.MinY = v.Y
	}
	if v.Y > b.MaxY {
		b.MaxY = v.Y
	}
	if v.Z < b.MinZ {
		b.MinZ = v.Z
	}
	if v.Z > b.MaxZ {
		b.MaxZ = v.Z
	}
}

const maxFloat32 = 3.40282346638528859811704183484516925440e+38

// Triangle is three indices into a Mesh's Vertices/Normals arrays.
type Triangle struct {
	V [3]uint32
}

// Mesh is a deduplicated, indexed triangle mesh plus its bounding box.
// The Mesh Loader owns these arrays; nothing downstream mutates them.
type Mesh struct {
	Vertices []Vertex3f
	Normals  []Vertex3f
	Faces    []Triangle
	Bounds   BoundingBox
}

// FacetCount returns the number of triangles in the mesh.
func (m *Mesh) FacetCount() int {
	return len(m.Faces)
}

// builder accumulates vertices with deduplication by (position, normal)
// pair while a mesh is being parsed.
type builder struct {
	mesh   Mesh
	lookup map[vertexKey]uint32
}

type vertexKey struct {
	px, py, pz float32
	nx, ny, nz float32
}

func newBuilder() *builder {
	b := &builder{lookup: make(map[vertexKey]uint32)}
	b.mesh.Bounds = newEmptyBoundingBox()
	return b
}

// addVertex returns the index for (pos, normal), creating a new entry
// only on a lookup miss. This is what gives co-planar facets shared
// vertices while keeping distinct normals on creases.
func (b *builder) addVertex(pos, normal Vertex3f) uint32 {
	key := vertexKey{pos.X, pos.Y, pos.Z, normal.X, normal.Y, normal.Z}
	if idx, ok := b.lookup[key]; ok {
		return idx
	}
	idx := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, pos)
	b.mesh.Normals = append(b.mesh.Normals, normal)
	b.lookup[key] = idx
	b.mesh.Bounds.extend(pos)
	return idx
}

// addFacet resolves the facet's normal (recomputing it from the winding
// order when the stored normal is exactly zero) and appends a triangle.
func (b *builder) addFacet(normal Vertex3f, v1, v2, v3 Vertex3f) {
	if normal.IsZero() {
		normal = v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
	}
	var tri Triangle
	tri.V[0] = b.addVertex(v1, normal)
	tri.V[1] = b.addVertex(v2, normal)
	tri.V[2] = b.addVertex(v3, normal)
	b.mesh.Faces = append(b.mesh.Faces, tri)
}

// Load reads path, auto-detecting ASCII vs. binary STL, and returns a
// deduplicated Mesh. A zero-triangle result is itself a valid parse and
// is flagged by the caller as ErrEmptyMesh (that check belongs to the
// slicing pipeline, not the loader).
func Load(path string) (*Mesh, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	if looksLikeASCII(data) {
		m, err := parseASCII(path, data)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	m, err := parseBinary(path, data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// looksLikeASCII implements the §4.1 format detection rule: read the
// first two whitespace-stripped lines; ASCII STL begins "solid" then
// "facet". Anything else (including a binary file whose 80-byte header
// happens to start with the bytes "solid") is treated as binary.
func looksLikeASCII(data []byte) bool {
	first, rest := splitLine(data)
	if !strings.HasPrefix(strings.TrimSpace(string(first)), "solid") {
		return false
	}
	second, _ := splitLine(rest)
	return strings.HasPrefix(strings.TrimSpace(string(second)), "facet")
}

func splitLine(data []byte) (line, rest []byte) {
	for i, c := range data {
		if c == '\n' {
			return data[:i], data[i+1:]
		}
	}
	return data, nil
}
