package brush

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/shoreline/pkg/heightfield"
)

type recorder struct {
	rects []heightfield.Rect
	err   error
}

func (r *recorder) ApplyRegion(rect heightfield.Rect) error {
	r.rects = append(r.rects, rect)
	return r.err
}

func flatField(t *testing.T, h float32) *heightfield.Field {
	t.Helper()
	f, err := heightfield.New(heightfield.Params{
		Resolution:  17,
		ChunkCount:  4,
		MinHeight:   -10,
		MaxHeight:   20,
		CellSpacing: 1,
		Origin:      mgl32.Vec2{-8, -8},
		Initial:     h,
	})
	if err != nil {
		t.Fatalf("heightfield.New failed: %v", err)
	}
	return f
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestOutsideFieldIsNoop(t *testing.T) {
	f := flatField(t, 10)
	before := f.Values()
	rec := &recorder{}

	strokes := []Stroke{
		{Center: mgl32.Vec2{100, 0}, Radius: 3, Intensity: 5, Dt: 1},
		{Center: mgl32.Vec2{0, 0}, Radius: 0, Intensity: 5, Dt: 1},
	}
	for _, s := range strokes {
		r, err := Raise(f, rec, s)
		if err != nil {
			t.Fatalf("Raise failed: %v", err)
		}
		if !r.Empty() {
			t.Errorf("expected empty rect for %+v, got %+v", s, r)
		}
	}

	if len(rec.rects) != 0 {
		t.Errorf("expected no rebuilds, got %v", rec.rects)
	}
	if diff := cmp.Diff(before, f.Values()); diff != "" {
		t.Errorf("field changed (-before +after):\n%s", diff)
	}
}

func TestRaise(t *testing.T) {
	f := flatField(t, 10)
	rec := &recorder{}

	r, err := Raise(f, rec, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 3, Intensity: 2, Dt: 0.5})
	if err != nil {
		t.Fatalf("Raise failed: %v", err)
	}

	want := heightfield.Rect{IMin: 5, IMax: 11, JMin: 5, JMax: 11}
	if r != want {
		t.Errorf("expected rect %+v, got %+v", want, r)
	}
	if len(rec.rects) != 1 || rec.rects[0] != want {
		t.Errorf("expected one rebuild of %+v, got %v", want, rec.rects)
	}
	if got := f.Get(8, 8); !near(got, 11) {
		t.Errorf("center: expected 11, got %v", got)
	}
	if got := f.Get(8, 11); !near(got, 10) {
		t.Errorf("rim: expected 10, got %v", got)
	}
	if got := f.Get(11, 11); got != 10 {
		t.Errorf("outside radius: expected 10, got %v", got)
	}
}

func TestLower(t *testing.T) {
	f := flatField(t, 10)
	if _, err := Lower(f, nil, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 3, Intensity: 2, Dt: 0.5}); err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if got := f.Get(8, 8); !near(got, 9) {
		t.Errorf("center: expected 9, got %v", got)
	}
}

func TestRebuildErrorPropagates(t *testing.T) {
	f := flatField(t, 10)
	boom := errors.New("boom")
	_, err := Raise(f, &recorder{err: boom}, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 2, Intensity: 1, Dt: 1})
	if !errors.Is(err, boom) {
		t.Errorf("expected rebuild error, got %v", err)
	}
}

func TestHeightsStayInRange(t *testing.T) {
	f := flatField(t, 10)
	stroke := Stroke{Center: mgl32.Vec2{-6, 0}, Radius: 6, Intensity: 1000, Dt: 1}

	if _, err := Raise(f, nil, stroke); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}
	for _, h := range f.Values() {
		if h > f.MaxHeight() {
			t.Fatalf("height %v above max %v", h, f.MaxHeight())
		}
	}

	if _, err := Lower(f, nil, stroke); err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if _, err := Roughen(f, nil, stroke, 7); err != nil {
		t.Fatalf("Roughen failed: %v", err)
	}
	for i := range f.Resolution() {
		for j := range f.Resolution() {
			h := f.Get(i, j)
			if h < f.MinHeight() || h > f.MaxHeight() {
				t.Fatalf("height %v at (%d, %d) outside range", h, i, j)
			}
			if f.IsBorder(i, j) && h != f.MinHeight() {
				t.Fatalf("border (%d, %d) moved to %v", i, j, h)
			}
		}
	}
}

func TestLowerToLevelAtTarget(t *testing.T) {
	f := flatField(t, 10)
	before := f.Values()

	_, err := LowerToLevel(f, nil,
		Stroke{Center: mgl32.Vec2{0, 0}, Radius: 4, Intensity: 5, Dt: 0.1},
		Level{Target: 10, AllowDown: true})
	if err != nil {
		t.Fatalf("LowerToLevel failed: %v", err)
	}
	if diff := cmp.Diff(before, f.Values()); diff != "" {
		t.Errorf("field changed (-before +after):\n%s", diff)
	}
}

func TestLowerToLevelNeverOvershoots(t *testing.T) {
	f := flatField(t, 10)
	stroke := Stroke{Center: mgl32.Vec2{0, 0}, Radius: 4, Intensity: 3, Dt: 0.5}
	lv := Level{Target: 4, AllowDown: true}

	for range 20 {
		if _, err := LowerToLevel(f, nil, stroke, lv); err != nil {
			t.Fatalf("LowerToLevel failed: %v", err)
		}
		for i := 1; i < f.Resolution()-1; i++ {
			for j := 1; j < f.Resolution()-1; j++ {
				if h := f.Get(i, j); h < 4-1e-4 || h > 10 {
					t.Fatalf("height %v at (%d, %d) left [4, 10]", h, i, j)
				}
			}
		}
	}
	if got := f.Get(8, 8); !near(got, 4) {
		t.Errorf("center: expected to reach 4, got %v", got)
	}

	// One large step lands exactly on the target.
	g := flatField(t, 10)
	if _, err := LowerToLevel(g, nil, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 4, Intensity: 100, Dt: 1}, lv); err != nil {
		t.Fatalf("LowerToLevel failed: %v", err)
	}
	if got := g.Get(8, 8); !near(got, 4) {
		t.Errorf("center after large step: expected 4, got %v", got)
	}
}

func TestLowerToLevelDirection(t *testing.T) {
	f := flatField(t, 10)
	before := f.Values()

	_, err := LowerToLevel(f, nil,
		Stroke{Center: mgl32.Vec2{0, 0}, Radius: 4, Intensity: 5, Dt: 1},
		Level{Target: 15, AllowDown: true})
	if err != nil {
		t.Fatalf("LowerToLevel failed: %v", err)
	}
	if diff := cmp.Diff(before, f.Values()); diff != "" {
		t.Errorf("upward move applied without AllowUp (-before +after):\n%s", diff)
	}

	if _, err := LowerToLevel(f, nil,
		Stroke{Center: mgl32.Vec2{0, 0}, Radius: 4, Intensity: 5, Dt: 1},
		Level{Target: 15, AllowUp: true}); err != nil {
		t.Fatalf("LowerToLevel failed: %v", err)
	}
	if got := f.Get(8, 8); got <= 10 || got > 15 {
		t.Errorf("center: expected a rise toward 15, got %v", got)
	}
}

func TestSmoothFlattensSpike(t *testing.T) {
	f := flatField(t, 10)
	f.Set(8, 8, 20)

	if _, err := Smooth(f, nil, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 2, Intensity: 1, Dt: 1}); err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	if got := f.Get(8, 8); got >= 20 || got < 10 {
		t.Errorf("center: expected a value in [10, 20), got %v", got)
	}
	if got := f.Get(9, 8); got <= 10 {
		t.Errorf("neighbour: expected to rise above 10, got %v", got)
	}
}

func TestSmoothWithoutSamples(t *testing.T) {
	f := flatField(t, 10)
	f.Set(8, 8, 20)
	before := f.Values()

	// A ring wider than the field has no sample inside it.
	if _, err := Smooth(f, nil, Stroke{Center: mgl32.Vec2{0, 0}, Radius: 200, Intensity: 1, Dt: 1}); err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if diff := cmp.Diff(before, f.Values()); diff != "" {
		t.Errorf("field changed (-before +after):\n%s", diff)
	}
}

func TestRoughenDeterministic(t *testing.T) {
	a := flatField(t, 5)
	b := flatField(t, 5)
	stroke := Stroke{Center: mgl32.Vec2{0.3, -0.6}, Radius: 5, Intensity: 4, Dt: 0.5}

	if _, err := Roughen(a, nil, stroke, 1234); err != nil {
		t.Fatalf("Roughen failed: %v", err)
	}
	if _, err := Roughen(b, nil, stroke, 1234); err != nil {
		t.Fatalf("Roughen failed: %v", err)
	}
	if diff := cmp.Diff(a.Values(), b.Values()); diff != "" {
		t.Errorf("same seed produced different fields:\n%s", diff)
	}

	changed := 0
	for _, h := range a.Values() {
		if h != 5 && h != a.MinHeight() {
			changed++
		}
	}
	if changed == 0 {
		t.Error("expected Roughen to move some heights")
	}
	if got := a.Get(1, 1); got != 5 {
		t.Errorf("outside radius: expected 5, got %v", got)
	}
}
