package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/shoreline/internal/picking"
	"github.com/Faultbox/shoreline/internal/terrain"
)

// Collider is a triangle-soup copy of a chunk's ground mesh.
type Collider struct {
	Positions []mgl32.Vec3
	Indices   []uint32
	Box       picking.AABB
}

func (c *Collider) refresh(m *terrain.MeshBuffer) {
	c.Positions = append(c.Positions[:0], m.Positions...)
	c.Indices = append(c.Indices[:0], m.Indices...)
	b := m.Bounds()
	c.Box = picking.AABB{Min: b.Min, Max: b.Max}
}

// TriangleCount returns the number of collision triangles.
func (c *Collider) TriangleCount() int { return len(c.Indices) / 3 }

// Raycast returns the nearest triangle hit along r.
func (c *Collider) Raycast(r picking.Ray) (picking.Hit, bool) {
	if len(c.Indices) == 0 {
		return picking.Hit{}, false
	}
	if _, ok := r.IntersectAABB(c.Box); !ok {
		return picking.Hit{}, false
	}

	best := picking.Hit{Triangle: -1}
	for t := 0; t+2 < len(c.Indices); t += 3 {
		a := c.Positions[c.Indices[t]]
		b := c.Positions[c.Indices[t+1]]
		d := c.Positions[c.Indices[t+2]]
		dist, ok := r.IntersectTriangle(a, b, d)
		if !ok {
			continue
		}
		if best.Triangle < 0 || dist < best.T {
			best = picking.Hit{T: dist, Point: r.At(dist), Triangle: t / 3}
		}
	}
	return best, best.Triangle >= 0
}
