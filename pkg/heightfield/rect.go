package heightfield

// Rect is an inclusive rectangle of grid vertices.
type Rect struct {
	IMin, IMax int
	JMin, JMax int
}

// EmptyRect returns a rectangle that contains no vertices.
func EmptyRect() Rect {
	return Rect{IMin: 0, IMax: -1, JMin: 0, JMax: -1}
}

// Empty reports whether the rectangle contains no vertices.
func (r Rect) Empty() bool {
	return r.IMin > r.IMax || r.JMin > r.JMax
}

// Width returns the number of vertices along I.
func (r Rect) Width() int {
	if r.Empty() {
		return 0
	}
	return r.IMax - r.IMin + 1
}

// Height returns the number of vertices along J.
func (r Rect) Height() int {
	if r.Empty() {
		return 0
	}
	return r.JMax - r.JMin + 1
}

// Contains reports whether (i, j) lies inside r.
func (r Rect) Contains(i, j int) bool {
	return i >= r.IMin && i <= r.IMax && j >= r.JMin && j <= r.JMax
}

// Intersect returns the overlap of r and o (possibly empty).
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		IMin: max(r.IMin, o.IMin),
		IMax: min(r.IMax, o.IMax),
		JMin: max(r.JMin, o.JMin),
		JMax: min(r.JMax, o.JMax),
	}
}

// Union returns the smallest rectangle holding both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		IMin: min(r.IMin, o.IMin),
		IMax: max(r.IMax, o.IMax),
		JMin: min(r.JMin, o.JMin),
		JMax: max(r.JMax, o.JMax),
	}
}

// Expand grows r by n vertices on every side.
func (r Rect) Expand(n int) Rect {
	return Rect{IMin: r.IMin - n, IMax: r.IMax + n, JMin: r.JMin - n, JMax: r.JMax + n}
}

// Snapshot is a read-only copy of part of a field, used by brushes that must
// read pre-stroke heights while writing.
type Snapshot struct {
	Rect   Rect
	values []float32
}

// Snapshot copies the heights inside r (clamped to the field).
func (f *Field) Snapshot(r Rect) *Snapshot {
	r = r.Intersect(f.Bounds())
	s := &Snapshot{Rect: r, values: make([]float32, r.Width()*r.Height())}
	if !r.Empty() {
		f.CopyWindow(r, s.values)
	}
	return s
}

// At returns the captured height at global vertex (i, j).
func (s *Snapshot) At(i, j int) float32 {
	return s.values[(i-s.Rect.IMin)*s.Rect.Height()+(j-s.Rect.JMin)]
}

// Covers reports whether the fractional grid point lies within the snapshot.
func (s *Snapshot) Covers(fi, fj float32) bool {
	return fi >= float32(s.Rect.IMin) && fi <= float32(s.Rect.IMax) &&
		fj >= float32(s.Rect.JMin) && fj <= float32(s.Rect.JMax)
}

// SampleGrid bilinearly interpolates the snapshot at global grid coordinates.
func (s *Snapshot) SampleGrid(fi, fj float32) float32 {
	return bilinear(s.values, s.Rect.Width(), s.Rect.Height(),
		fi-float32(s.Rect.IMin), fj-float32(s.Rect.JMin))
}
