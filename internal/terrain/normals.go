package terrain

import "github.com/go-gl/mathgl/mgl32"

// Triangles of a full-resolution cell: A = (c0, c2, c1), B = (c3, c1, c2).
const (
	TriA = 0
	TriB = 1
)

// FaceSource yields unnormalised face normals of the full-resolution
// triangulation by global cell index. ok is false for cells outside the field.
type FaceSource interface {
	Face(ci, cj, tri int) (n mgl32.Vec3, ok bool)
}

// CellFaces returns the area-weighted normals of the two triangles of a cell
// with corner heights h00=(i,j) h10=(i+1,j) h01=(i,j+1) h11=(i+1,j+1).
// Only height differences enter, so the result does not depend on where the
// cell sits in the world.
func CellFaces(h00, h10, h01, h11, spacing float32) (a, b mgl32.Vec3) {
	s2 := spacing * spacing
	a = mgl32.Vec3{-spacing * (h10 - h00), s2, -spacing * (h01 - h00)}
	b = mgl32.Vec3{spacing * (h01 - h11), s2, spacing * (h10 - h11)}
	return a, b
}

// VertexNormal estimates the normal at global vertex (i, j) from the six
// triangles that touch it. Faces are summed in a fixed order so every caller
// gets identical bits.
func VertexNormal(src FaceSource, i, j int) mgl32.Vec3 {
	var sum mgl32.Vec3
	add := func(ci, cj, tri int) {
		if n, ok := src.Face(ci, cj, tri); ok {
			sum = sum.Add(n)
		}
	}

	add(i-1, j-1, TriB)
	add(i-1, j, TriA)
	add(i-1, j, TriB)
	add(i, j-1, TriA)
	add(i, j-1, TriB)
	add(i, j, TriA)

	if sum.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return sum.Normalize()
}
