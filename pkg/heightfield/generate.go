package heightfield

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bump is a raised-cosine hill used by GenerateIslands.
type Bump struct {
	Center mgl32.Vec2 // World (X, Z)
	Radius float32    // World units
	Height float32    // Peak rise above the sea floor is 2*Height
}

// GenerateIslands resets the field to MinHeight, raises each bump with a
// (sin(pi*d/r + pi/2) + 1) * height profile and flattens a band of borderBand
// world units along every edge back to MinHeight.
func GenerateIslands(f *Field, bumps []Bump, borderBand float32) {
	band := borderBand / f.spacing
	limit := float32(f.res - 1)

	for i := range f.res {
		for j := range f.res {
			h := f.minH
			pos := f.VertexWorld(i, j)

			for _, b := range bumps {
				if b.Radius <= 0 {
					continue
				}
				d := pos.Sub(b.Center).Len()
				val := d / b.Radius * math.Pi
				if val <= math.Pi {
					h += (float32(math.Sin(float64(val)+math.Pi/2)) + 1) * b.Height
				}
			}

			fi, fj := float32(i), float32(j)
			if fi < band || fj < band || fi > limit-band || fj > limit-band {
				h = f.minH
			}

			if f.IsBorder(i, j) {
				h = f.minH
			}
			f.Set(i, j, h)
		}
	}
}
