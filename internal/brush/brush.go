// Package brush implements the sculpting operators that edit a height field
// and trigger a partial mesh rebuild.
package brush

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// Stroke is one application of a brush.
type Stroke struct {
	Center    mgl32.Vec2 // World (X, Z)
	Radius    float32    // World units
	Intensity float32
	Dt        float32 // Seconds since the previous application
}

// Rebuilder refreshes meshes after the field changed inside a rectangle.
// *chunk.Grid satisfies it.
type Rebuilder interface {
	ApplyRegion(r heightfield.Rect) error
}

// Level configures LowerToLevel.
type Level struct {
	Target    float32
	AllowDown bool
	AllowUp   bool
}

// footprint is a stroke resolved to grid coordinates.
type footprint struct {
	rect   heightfield.Rect
	ci, cj float32 // Center
	radius float32 // Grid units
}

// dist returns the distance of (i, j) from the center as a fraction of the
// radius.
func (fp footprint) dist(i, j int) float32 {
	di := float32(i) - fp.ci
	dj := float32(j) - fp.cj
	return float32(math.Sqrt(float64(di*di+dj*dj))) / fp.radius
}

// region resolves s against f. Border vertices are never part of a region.
func region(f *heightfield.Field, s Stroke) (footprint, bool) {
	if !(s.Radius > 0) || !f.Contains(s.Center) {
		return footprint{}, false
	}
	ci, cj := f.WorldToGrid(s.Center)
	rg := s.Radius / f.CellSpacing()
	r := heightfield.Rect{
		IMin: int(math.Floor(float64(ci - rg))),
		IMax: int(math.Ceil(float64(ci + rg))),
		JMin: int(math.Floor(float64(cj - rg))),
		JMax: int(math.Ceil(float64(cj + rg))),
	}.Intersect(f.Interior())
	if r.Empty() {
		return footprint{}, false
	}
	return footprint{rect: r, ci: ci, cj: cj, radius: rg}, true
}

// apply runs fn on every region vertex within the radius and then rebuilds
// the region. fn receives the normalised distance in [0, 1].
func apply(f *heightfield.Field, g Rebuilder, s Stroke, fn func(i, j int, d float32)) (heightfield.Rect, error) {
	fp, ok := region(f, s)
	if !ok {
		return heightfield.EmptyRect(), nil
	}
	r := fp.rect
	for i := r.IMin; i <= r.IMax; i++ {
		for j := r.JMin; j <= r.JMax; j++ {
			if d := fp.dist(i, j); d <= 1 {
				fn(i, j, d)
			}
		}
	}
	if g != nil {
		if err := g.ApplyRegion(r); err != nil {
			return r, err
		}
	}
	return r, nil
}

// Raise lifts the field with a cosine falloff.
func Raise(f *heightfield.Field, g Rebuilder, s Stroke) (heightfield.Rect, error) {
	step := s.Intensity * s.Dt
	return apply(f, g, s, func(i, j int, d float32) {
		f.Set(i, j, f.Get(i, j)+float32(math.Cos(float64(d)*math.Pi/2))*step)
	})
}

// Lower is Raise with the intensity negated.
func Lower(f *heightfield.Field, g Rebuilder, s Stroke) (heightfield.Rect, error) {
	s.Intensity = -s.Intensity
	return Raise(f, g, s)
}

// LowerToLevel moves heights toward lv.Target without overshooting it. Cells
// already at the target, or whose direction lv forbids, are left alone.
func LowerToLevel(f *heightfield.Field, g Rebuilder, s Stroke, lv Level) (heightfield.Rect, error) {
	step := s.Intensity * s.Dt
	return apply(f, g, s, func(i, j int, d float32) {
		h := f.Get(i, j)
		diff := lv.Target - h
		switch {
		case diff == 0:
			return
		case diff < 0 && !lv.AllowDown:
			return
		case diff > 0 && !lv.AllowUp:
			return
		}

		var bounded float32
		if diff > 0 {
			bounded = min(h+step*(1-d), lv.Target)
		} else {
			bounded = max(h-step*(1-d), lv.Target)
		}
		c := math.Cos(math.Pi * float64((bounded-lv.Target)/diff))
		f.Set(i, j, 0.5*(diff*float32(c)+h+lv.Target))
	})
}

// Smooth pulls each height toward the mean of a ring around it. All reads
// come from the heights before the stroke.
func Smooth(f *heightfield.Field, g Rebuilder, s Stroke) (heightfield.Rect, error) {
	fp, ok := region(f, s)
	if !ok {
		return heightfield.EmptyRect(), nil
	}
	ring := fp.radius / 2
	samples := max(8, int(math.Ceil(2*math.Pi*float64(ring))))
	snap := f.Snapshot(fp.rect.Expand(int(math.Ceil(float64(ring))) + 1))
	blend := mgl32.Clamp(s.Intensity, 0, 1)

	return apply(f, g, s, func(i, j int, d float32) {
		var sum float32
		n := 0
		for k := range samples {
			a := 2 * math.Pi * float64(k) / float64(samples)
			fi := float32(i) + ring*float32(math.Cos(a))
			fj := float32(j) + ring*float32(math.Sin(a))
			if !snap.Covers(fi, fj) {
				continue
			}
			sum += snap.SampleGrid(fi, fj)
			n++
		}
		if n == 0 {
			return
		}
		h := snap.At(i, j)
		goal := lerp(sum/float32(n), h, d)
		f.Set(i, j, lerp(h, goal, blend))
	})
}

// Roughen adds coherent noise. The same seed reproduces the same pattern,
// so holding the brush keeps pushing along one noise field.
func Roughen(f *heightfield.Field, g Rebuilder, s Stroke, seed int64) (heightfield.Rect, error) {
	fp, ok := region(f, s)
	if !ok {
		return heightfield.EmptyRect(), nil
	}
	noise := opensimplex.New32(seed)
	off := float32(seed%65536) / 256
	step := s.Intensity * s.Dt

	return apply(f, g, s, func(i, j int, d float32) {
		n := noise.Eval2(float32(i)/fp.radius+off, float32(j)/fp.radius+off)
		f.Set(i, j, f.Get(i, j)+n*step*(1-d))
	})
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
