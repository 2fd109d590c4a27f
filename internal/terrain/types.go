// Package terrain builds ground and sea meshes from height grid windows.
package terrain

import "github.com/go-gl/mathgl/mgl32"

// Window is a square sub-grid of heights addressed in local vertex coordinates.
type Window interface {
	Span() int // vertices per side
	At(i, j int) float32
}

// HeightGrid is a Window backed by a row-major slice.
type HeightGrid struct {
	span    int
	heights []float32
}

// NewHeightGrid wraps heights (len span*span) without copying.
func NewHeightGrid(span int, heights []float32) *HeightGrid {
	if len(heights) != span*span {
		panic("terrain: height grid size does not match span")
	}
	return &HeightGrid{span: span, heights: heights}
}

// Span returns the number of vertices per side.
func (g *HeightGrid) Span() int { return g.span }

// At returns the height at local vertex (i, j).
func (g *HeightGrid) At(i, j int) float32 { return g.heights[i*g.span+j] }

// MeshBuffer holds one indexed triangle mesh ready for upload.
type MeshBuffer struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Reset empties the buffer, keeping capacity.
func (m *MeshBuffer) Reset() {
	m.Positions = m.Positions[:0]
	m.UVs = m.UVs[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
}

// VertexCount returns the number of vertices.
func (m *MeshBuffer) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *MeshBuffer) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the three corner positions of triangle t.
func (m *MeshBuffer) Triangle(t int) (a, b, c mgl32.Vec3) {
	return m.Positions[m.Indices[3*t]], m.Positions[m.Indices[3*t+1]], m.Positions[m.Indices[3*t+2]]
}

// Bounds computes the axis-aligned bounding box of all positions.
func (m *MeshBuffer) Bounds() Bounds {
	b := EmptyBounds()
	for _, p := range m.Positions {
		b.Extend(p)
	}
	return b
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns inverted bounds that any point extends.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Extend grows b to include p.
func (b *Bounds) Extend(p mgl32.Vec3) {
	for k := range 3 {
		if p[k] < b.Min[k] {
			b.Min[k] = p[k]
		}
		if p[k] > b.Max[k] {
			b.Max[k] = p[k]
		}
	}
}

// Valid reports whether b contains at least one point.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0]
}

// Placer maps chunk-local grid coordinates to world space. Coordinates are
// resolved through global vertex indices so that every chunk computes the
// same bits for a shared vertex.
type Placer struct {
	Origin  mgl32.Vec2 // World (X, Z) of global vertex (0, 0)
	Spacing float32    // World units per cell
	Extent  float32    // World size of the whole field, for UVs
	OffsetI int        // Global index of local vertex 0 along I
	OffsetJ int        // Global index of local vertex 0 along J
}

// Point returns the world position of local vertex (i, j) shifted by the
// fractions (ti, tj) of a cell, at height y.
func (p Placer) Point(i, j int, ti, tj, y float32) mgl32.Vec3 {
	return mgl32.Vec3{
		p.Origin[0] + (float32(p.OffsetI+i)+ti)*p.Spacing,
		y,
		p.Origin[1] + (float32(p.OffsetJ+j)+tj)*p.Spacing,
	}
}

// UV returns field-normalised texture coordinates for a world position.
func (p Placer) UV(pos mgl32.Vec3) mgl32.Vec2 {
	if p.Extent == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{(pos[0] - p.Origin[0]) / p.Extent, (pos[2] - p.Origin[1]) / p.Extent}
}
