// Package chunk partitions a height field into independently meshed chunks
// and rebuilds only the chunks an edit touches.
package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/shoreline/internal/terrain"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// Chunk is one span x span window of the field with its own meshes.
type Chunk struct {
	CX, CY int

	span  int
	rect  heightfield.Rect
	place terrain.Placer

	heights []float32    // local copy, row-major span*span
	faces   []mgl32.Vec3 // two per cell: TriA, TriB
	ground  terrain.QuadSet
	sea     terrain.QuadSet

	// Ground has one vertex per grid vertex; positions X/Z and UVs are fixed at
	// construction, Y, normals and indices are refreshed on rebuild.
	Ground terrain.MeshBuffer
	// Sea is rebuilt from scratch on every rebuild.
	Sea terrain.MeshBuffer
	// Collider mirrors Ground for physics and picking queries.
	Collider Collider
}

func newChunk(cx, cy, span int, place terrain.Placer) *Chunk {
	cells := span - 1
	c := &Chunk{
		CX:    cx,
		CY:    cy,
		span:  span,
		place: place,
		rect: heightfield.Rect{
			IMin: place.OffsetI,
			IMax: place.OffsetI + cells,
			JMin: place.OffsetJ,
			JMax: place.OffsetJ + cells,
		},
		heights: make([]float32, span*span),
		faces:   make([]mgl32.Vec3, cells*cells*2),
	}
	c.buildTopology()
	return c
}

// buildTopology fixes vertex X/Z, UVs and buffer sizes. It runs once.
func (c *Chunk) buildTopology() {
	n := c.span * c.span
	c.Ground.Positions = make([]mgl32.Vec3, n)
	c.Ground.UVs = make([]mgl32.Vec2, n)
	c.Ground.Normals = make([]mgl32.Vec3, n)
	c.Ground.Indices = make([]uint32, 0, (c.span-1)*(c.span-1)*6)

	for i := range c.span {
		for j := range c.span {
			p := c.place.Point(i, j, 0, 0, 0)
			c.Ground.Positions[i*c.span+j] = p
			c.Ground.UVs[i*c.span+j] = c.place.UV(p)
			c.Ground.Normals[i*c.span+j] = mgl32.Vec3{0, 1, 0}
		}
	}
}

// Span returns the number of vertices per chunk side.
func (c *Chunk) Span() int { return c.span }

// Rect returns the global vertex rectangle this chunk covers.
func (c *Chunk) Rect() heightfield.Rect { return c.rect }

// Height returns the last copied height at local vertex (i, j).
func (c *Chunk) Height(i, j int) float32 { return c.heights[i*c.span+j] }

// GroundQuads returns the flat-merge result of the last rebuild.
func (c *Chunk) GroundQuads() *terrain.QuadSet { return &c.ground }

// SeaQuads returns the merged sea blocks of the last CPU rebuild.
func (c *Chunk) SeaQuads() *terrain.QuadSet { return &c.sea }

// Face returns a face normal by global cell index. Only cells of this chunk
// may be requested.
func (c *Chunk) Face(ci, cj, tri int) (mgl32.Vec3, bool) {
	cells := c.span - 1
	li, lj := ci-c.place.OffsetI, cj-c.place.OffsetJ
	if li < 0 || lj < 0 || li >= cells || lj >= cells {
		panic(fmt.Sprintf("chunk: cell (%d, %d) outside chunk (%d, %d)", ci, cj, c.CX, c.CY))
	}
	return c.faces[(li*cells+lj)*2+tri], true
}

// rebuild refreshes every mesh of the chunk from the field. Border vertex
// normals are left for the grid's stitch pass.
func (c *Chunk) rebuild(f *heightfield.Field, kernel SeaKernel) error {
	f.CopyWindow(c.rect, c.heights)
	window := terrain.NewHeightGrid(c.span, c.heights)
	cells := c.span - 1

	for k, h := range c.heights {
		c.Ground.Positions[k][1] = h
	}

	spacing := f.CellSpacing()
	for i := range cells {
		for j := range cells {
			a, b := terrain.CellFaces(
				c.heights[i*c.span+j], c.heights[(i+1)*c.span+j],
				c.heights[i*c.span+j+1], c.heights[(i+1)*c.span+j+1],
				spacing,
			)
			c.faces[(i*cells+j)*2+terrain.TriA] = a
			c.faces[(i*cells+j)*2+terrain.TriB] = b
		}
	}

	c.ground.Merge(window, terrain.MergeGround)
	c.Ground.Indices = terrain.AppendGroundIndices(c.Ground.Indices[:0], &c.ground, c.span)

	// Sea topology changes between rebuilds, so the buffer is cleared and
	// refilled rather than patched.
	c.Sea.Reset()
	if kernel == nil {
		c.sea.Merge(window, terrain.MergeSea)
		terrain.AppendSeaQuads(&c.sea, c.place, &c.Sea)
		terrain.ContourSea(window, &c.sea, c.place, &c.Sea)
	} else {
		out, err := kernel.Generate(c.heights, c.span, c.place)
		if err != nil {
			return fmt.Errorf("sea kernel for chunk (%d, %d): %w", c.CX, c.CY, err)
		}
		if err := Compact(out, c.place, &c.Sea); err != nil {
			return fmt.Errorf("compacting chunk (%d, %d): %w", c.CX, c.CY, err)
		}
	}

	for i := 1; i < c.span-1; i++ {
		for j := 1; j < c.span-1; j++ {
			c.Ground.Normals[i*c.span+j] = terrain.VertexNormal(c, c.place.OffsetI+i, c.place.OffsetJ+j)
		}
	}

	c.Collider.refresh(&c.Ground)
	return nil
}

// isBorder reports whether local vertex (i, j) lies on the chunk edge.
func (c *Chunk) isBorder(i, j int) bool {
	return i == 0 || j == 0 || i == c.span-1 || j == c.span-1
}
