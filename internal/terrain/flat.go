package terrain

// MergeMode selects the predicate used to merge blocks of cells.
type MergeMode int

const (
	// MergeGround merges blocks whose corner heights are all equal and covers
	// every cell, emitting leftovers as single-cell quads.
	MergeGround MergeMode = iota
	// MergeSea merges blocks whose corner heights are all below zero. Single
	// cells are left to the contour mesher.
	MergeSea
)

// String returns the mode name.
func (m MergeMode) String() string {
	switch m {
	case MergeGround:
		return "ground"
	case MergeSea:
		return "sea"
	default:
		return "unknown"
	}
}

// Quad is an aligned Size x Size block of cells starting at cell (I, J).
type Quad struct {
	I, J   int
	Size   int
	Height float32 // Shared corner height (ground) or the first corner (sea)
}

// QuadSet is an arena of merged quads plus a per-cell ownership map.
type QuadSet struct {
	cells int
	Quads []Quad
	owner []int32 // quad index per cell, -1 if uncovered
}

// MergeFlat runs the greedy largest-block-first merge over w.
func MergeFlat(w Window, mode MergeMode) *QuadSet {
	q := &QuadSet{}
	q.Merge(w, mode)
	return q
}

// MaxBlockSize returns the largest power of two not above cells/4 (at least 1).
func MaxBlockSize(cells int) int {
	s := 1
	for s*2 <= cells/4 {
		s *= 2
	}
	return s
}

// Merge recomputes the set for w, reusing the arena.
func (q *QuadSet) Merge(w Window, mode MergeMode) {
	cells := w.Span() - 1
	q.reset(cells)

	minSize := 1
	if mode == MergeSea {
		minSize = 2
	}

	for s := MaxBlockSize(cells); s >= minSize; s >>= 1 {
		for i := 0; i+s <= cells; i += s {
			for j := 0; j+s <= cells; j += s {
				// Smaller aligned blocks nest inside larger ones, so the
				// first cell decides ownership of the whole block.
				if q.owner[i*cells+j] >= 0 {
					continue
				}
				h, ok := mergeable(w, i, j, s, mode)
				if !ok {
					continue
				}
				q.add(Quad{I: i, J: j, Size: s, Height: h})
			}
		}
	}

	if mode == MergeGround {
		for i := range cells {
			for j := range cells {
				if q.owner[i*cells+j] < 0 {
					q.add(Quad{I: i, J: j, Size: 1, Height: w.At(i, j)})
				}
			}
		}
	}
}

// Cells returns the number of cells per side.
func (q *QuadSet) Cells() int { return q.cells }

// Owner returns the index of the quad covering cell (i, j), or -1.
func (q *QuadSet) Owner(i, j int) int {
	return int(q.owner[i*q.cells+j])
}

// Covered reports whether cell (i, j) belongs to a quad.
func (q *QuadSet) Covered(i, j int) bool {
	return q.owner[i*q.cells+j] >= 0
}

// Area returns the number of cells covered by all quads.
func (q *QuadSet) Area() int {
	area := 0
	for _, quad := range q.Quads {
		area += quad.Size * quad.Size
	}
	return area
}

func (q *QuadSet) reset(cells int) {
	q.cells = cells
	q.Quads = q.Quads[:0]
	if cap(q.owner) < cells*cells {
		q.owner = make([]int32, cells*cells)
	}
	q.owner = q.owner[:cells*cells]
	for k := range q.owner {
		q.owner[k] = -1
	}
}

func (q *QuadSet) add(quad Quad) {
	idx := int32(len(q.Quads))
	q.Quads = append(q.Quads, quad)
	for u := range quad.Size {
		row := (quad.I + u) * q.cells
		for v := range quad.Size {
			q.owner[row+quad.J+v] = idx
		}
	}
}

// mergeable tests all (s+1)^2 corner heights of the block at (i, j).
func mergeable(w Window, i, j, s int, mode MergeMode) (float32, bool) {
	first := w.At(i, j)
	for u := 0; u <= s; u++ {
		for v := 0; v <= s; v++ {
			h := w.At(i+u, j+v)
			switch mode {
			case MergeGround:
				if h != first {
					return 0, false
				}
			case MergeSea:
				if !(h < 0) {
					return 0, false
				}
			}
		}
	}
	return first, true
}

// AppendGroundIndices appends two triangles per ground quad, indexing the
// corner vertices of a span x span vertex grid. The diagonal matches the
// full-resolution triangulation: (c0, c2, c1) and (c3, c1, c2).
func AppendGroundIndices(dst []uint32, quads *QuadSet, span int) []uint32 {
	for _, quad := range quads.Quads {
		c0 := uint32(quad.I*span + quad.J)
		c1 := uint32((quad.I+quad.Size)*span + quad.J)
		c2 := uint32(quad.I*span + quad.J + quad.Size)
		c3 := uint32((quad.I+quad.Size)*span + quad.J + quad.Size)
		dst = append(dst, c0, c2, c1, c3, c1, c2)
	}
	return dst
}
