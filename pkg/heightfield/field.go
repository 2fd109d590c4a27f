// Package heightfield provides the editable terrain height grid and its
// grid/world coordinate mapping.
package heightfield

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Field construction errors.
var (
	ErrInvalidResolution = errors.New("invalid height field resolution")
	ErrInvalidChunkCount = errors.New("resolution-1 must be divisible by chunk count")
	ErrInvalidRange      = errors.New("min height must be below max height")
	ErrInvalidSpacing    = errors.New("cell spacing must be positive")
	ErrDimensionMismatch = errors.New("height data does not match field resolution")
)

// Params describes a field at construction time.
type Params struct {
	Resolution  int        // Vertices per side
	ChunkCount  int        // Chunks per side
	MinHeight   float32    // Lowest allowed height (border cells sit here)
	MaxHeight   float32    // Highest allowed height
	CellSpacing float32    // World units between adjacent vertices
	Origin      mgl32.Vec2 // World (X, Z) of vertex (0, 0)
	Initial     float32    // Starting height of interior cells
}

// Field is a square grid of heights. Negative heights are below sea level.
type Field struct {
	res        int
	chunkCount int
	minH, maxH float32
	spacing    float32
	origin     mgl32.Vec2
	heights    []float32 // row-major, index i*res + j
}

// New creates a field with interior cells at p.Initial and the border at p.MinHeight.
func New(p Params) (*Field, error) {
	if p.Resolution < 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, p.Resolution)
	}
	if p.ChunkCount < 1 || (p.Resolution-1)%p.ChunkCount != 0 {
		return nil, fmt.Errorf("%w: resolution %d, chunks %d", ErrInvalidChunkCount, p.Resolution, p.ChunkCount)
	}
	if !(p.MinHeight < p.MaxHeight) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, p.MinHeight, p.MaxHeight)
	}
	if !(p.CellSpacing > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpacing, p.CellSpacing)
	}

	f := &Field{
		res:        p.Resolution,
		chunkCount: p.ChunkCount,
		minH:       p.MinHeight,
		maxH:       p.MaxHeight,
		spacing:    p.CellSpacing,
		origin:     p.Origin,
		heights:    make([]float32, p.Resolution*p.Resolution),
	}

	initial := f.clamp(p.Initial)
	for i := range f.res {
		for j := range f.res {
			if f.IsBorder(i, j) {
				f.heights[i*f.res+j] = f.minH
			} else {
				f.heights[i*f.res+j] = initial
			}
		}
	}
	return f, nil
}

// Params returns the parameters that recreate the field's shape.
// Initial is reported as MinHeight.
func (f *Field) Params() Params {
	return Params{
		Resolution:  f.res,
		ChunkCount:  f.chunkCount,
		MinHeight:   f.minH,
		MaxHeight:   f.maxH,
		CellSpacing: f.spacing,
		Origin:      f.origin,
		Initial:     f.minH,
	}
}

// Resolution returns the number of vertices per side.
func (f *Field) Resolution() int { return f.res }

// ChunkCount returns the number of chunks per side.
func (f *Field) ChunkCount() int { return f.chunkCount }

// ChunkVertSpan returns the number of vertices per chunk side, shared borders included.
func (f *Field) ChunkVertSpan() int { return (f.res-1)/f.chunkCount + 1 }

// MinHeight returns the lower clamp bound.
func (f *Field) MinHeight() float32 { return f.minH }

// MaxHeight returns the upper clamp bound.
func (f *Field) MaxHeight() float32 { return f.maxH }

// CellSpacing returns the world distance between adjacent vertices.
func (f *Field) CellSpacing() float32 { return f.spacing }

// Origin returns the world (X, Z) position of vertex (0, 0).
func (f *Field) Origin() mgl32.Vec2 { return f.origin }

// Extent returns the world size of one side of the field.
func (f *Field) Extent() float32 { return float32(f.res-1) * f.spacing }

// Get returns the height at (i, j). Panics if out of range.
func (f *Field) Get(i, j int) float32 {
	return f.heights[f.index(i, j)]
}

// Set stores v at (i, j), clamped to [MinHeight, MaxHeight].
func (f *Field) Set(i, j int, v float32) {
	f.heights[f.index(i, j)] = f.clamp(v)
}

// Add offsets the height at (i, j) by dv, clamped.
func (f *Field) Add(i, j int, dv float32) {
	idx := f.index(i, j)
	f.heights[idx] = f.clamp(f.heights[idx] + dv)
}

// IsBorder reports whether (i, j) lies on the outermost ring.
func (f *Field) IsBorder(i, j int) bool {
	return i == 0 || j == 0 || i == f.res-1 || j == f.res-1
}

// Bounds returns the rectangle covering every vertex.
func (f *Field) Bounds() Rect {
	return Rect{IMin: 0, IMax: f.res - 1, JMin: 0, JMax: f.res - 1}
}

// Interior returns the rectangle of editable (non-border) vertices.
func (f *Field) Interior() Rect {
	return Rect{IMin: 1, IMax: f.res - 2, JMin: 1, JMax: f.res - 2}
}

// Load replaces every height. Values are clamped and the border is reset to MinHeight.
func (f *Field) Load(values []float32) error {
	if len(values) != len(f.heights) {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(values), len(f.heights))
	}
	for i := range f.res {
		for j := range f.res {
			idx := i*f.res + j
			if f.IsBorder(i, j) {
				f.heights[idx] = f.minH
				continue
			}
			f.heights[idx] = f.clamp(values[idx])
		}
	}
	return nil
}

// Values returns a copy of all heights in row-major order.
func (f *Field) Values() []float32 {
	out := make([]float32, len(f.heights))
	copy(out, f.heights)
	return out
}

// CopyWindow copies the heights inside r into dst (row-major, stride r.Height()).
// dst must hold r.Width()*r.Height() values. Panics if r leaves the field.
func (f *Field) CopyWindow(r Rect, dst []float32) {
	f.index(r.IMin, r.JMin)
	f.index(r.IMax, r.JMax)
	stride := r.Height()
	for i := r.IMin; i <= r.IMax; i++ {
		row := f.heights[i*f.res+r.JMin : i*f.res+r.JMax+1]
		copy(dst[(i-r.IMin)*stride:], row)
	}
}

// GridToWorld maps fractional grid coordinates to a world (X, Z) position.
func (f *Field) GridToWorld(fi, fj float32) mgl32.Vec2 {
	return mgl32.Vec2{f.origin[0] + fi*f.spacing, f.origin[1] + fj*f.spacing}
}

// VertexWorld returns the world (X, Z) of vertex (i, j).
func (f *Field) VertexWorld(i, j int) mgl32.Vec2 {
	return f.GridToWorld(float32(i), float32(j))
}

// WorldToGrid maps a world (X, Z) position to fractional grid coordinates.
func (f *Field) WorldToGrid(pos mgl32.Vec2) (fi, fj float32) {
	return (pos[0] - f.origin[0]) / f.spacing, (pos[1] - f.origin[1]) / f.spacing
}

// Contains reports whether a world position lies inside the field.
func (f *Field) Contains(pos mgl32.Vec2) bool {
	fi, fj := f.WorldToGrid(pos)
	limit := float32(f.res - 1)
	return fi >= 0 && fj >= 0 && fi <= limit && fj <= limit
}

// Sample returns the bilinearly interpolated height at a world position.
func (f *Field) Sample(pos mgl32.Vec2) (float32, bool) {
	if !f.Contains(pos) {
		return 0, false
	}
	fi, fj := f.WorldToGrid(pos)
	return f.SampleGrid(fi, fj), true
}

// SampleGrid bilinearly interpolates heights at fractional grid coordinates.
// Coordinates outside the field are clamped to its edge.
func (f *Field) SampleGrid(fi, fj float32) float32 {
	return bilinear(f.heights, f.res, f.res, fi, fj)
}

func bilinear(h []float32, rows, cols int, fi, fj float32) float32 {
	fi = clampf(fi, 0, float32(rows-1))
	fj = clampf(fj, 0, float32(cols-1))

	i0, j0 := int(fi), int(fj)
	i1, j1 := min(i0+1, rows-1), min(j0+1, cols-1)
	u := fi - float32(i0)
	v := fj - float32(j0)

	h00 := h[i0*cols+j0]
	h10 := h[i1*cols+j0]
	h01 := h[i0*cols+j1]
	h11 := h[i1*cols+j1]

	near := h00*(1-u) + h10*u
	far := h01*(1-u) + h11*u
	return near*(1-v) + far*v
}

func (f *Field) index(i, j int) int {
	if i < 0 || j < 0 || i >= f.res || j >= f.res {
		panic(fmt.Sprintf("heightfield: vertex (%d, %d) outside %dx%d field", i, j, f.res, f.res))
	}
	return i*f.res + j
}

func (f *Field) clamp(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return f.minH
	}
	return clampf(v, f.minH, f.maxH)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
