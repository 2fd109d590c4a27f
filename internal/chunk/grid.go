package chunk

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/willf/bitset"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/shoreline/internal/logger"
	"github.com/Faultbox/shoreline/internal/picking"
	"github.com/Faultbox/shoreline/internal/terrain"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// ErrNilField is returned by NewGrid when no field is given.
var ErrNilField = errors.New("nil height field")

// Option configures a Grid.
type Option func(*Grid)

// WithWorkers bounds the number of chunks rebuilt concurrently.
// Values below one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(g *Grid) { g.workers = n }
}

// WithSeaKernel replaces the CPU sea mesher with a kernel backend.
func WithSeaKernel(k SeaKernel) Option {
	return func(g *Grid) { g.kernel = k }
}

// WithLogger sets the logger used for rebuild diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grid) { g.log = l }
}

// Grid owns the chunk meshes of one height field. The field itself is not
// owned and must not be written while ApplyRegion runs.
type Grid struct {
	field  *heightfield.Field
	count  int
	span   int
	chunks []*Chunk

	workers int
	kernel  SeaKernel
	log     *zap.Logger

	dirty *bitset.BitSet
	ring  *bitset.BitSet
}

// Stats summarises the current meshes.
type Stats struct {
	Chunks          int
	GroundVertices  int
	GroundTriangles int
	GroundQuads     int
	SeaVertices     int
	SeaTriangles    int
	SeaQuads        int
}

// NewGrid builds every chunk of f.
func NewGrid(f *heightfield.Field, opts ...Option) (*Grid, error) {
	if f == nil {
		return nil, ErrNilField
	}
	g := &Grid{
		field: f,
		count: f.ChunkCount(),
		span:  f.ChunkVertSpan(),
		log:   logger.Log,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = runtime.NumCPU()
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}

	n := uint(g.count * g.count)
	g.dirty = bitset.New(n)
	g.ring = bitset.New(n)

	g.buildTopology()
	if err := g.ApplyRegion(f.Bounds()); err != nil {
		return nil, fmt.Errorf("initial build: %w", err)
	}
	return g, nil
}

func (g *Grid) buildTopology() {
	cells := g.span - 1
	g.chunks = make([]*Chunk, g.count*g.count)
	for cx := range g.count {
		for cy := range g.count {
			place := terrain.Placer{
				Origin:  g.field.Origin(),
				Spacing: g.field.CellSpacing(),
				Extent:  g.field.Extent(),
				OffsetI: cx * cells,
				OffsetJ: cy * cells,
			}
			g.chunks[cx*g.count+cy] = newChunk(cx, cy, g.span, place)
		}
	}
}

// Field returns the field the grid meshes.
func (g *Grid) Field() *heightfield.Field { return g.field }

// ChunkCount returns the number of chunks per side.
func (g *Grid) ChunkCount() int { return g.count }

// Span returns the number of vertices per chunk side.
func (g *Grid) Span() int { return g.span }

// Chunk returns chunk (cx, cy). It panics when out of range.
func (g *Grid) Chunk(cx, cy int) *Chunk {
	if cx < 0 || cy < 0 || cx >= g.count || cy >= g.count {
		panic(fmt.Sprintf("chunk: (%d, %d) outside %dx%d grid", cx, cy, g.count, g.count))
	}
	return g.chunks[cx*g.count+cy]
}

// Chunks returns all chunks, ordered by cx then cy.
func (g *Grid) Chunks() []*Chunk { return g.chunks }

// ChunksFor returns the chunk rectangle a vertex edit of r invalidates,
// including one chunk of slack on every side.
func (g *Grid) ChunksFor(r heightfield.Rect) (cxMin, cxMax, cyMin, cyMax int) {
	cells := g.span - 1
	clamp := func(v int) int { return min(max(v, 0), g.count-1) }
	return clamp(r.IMin/cells - 1), clamp(r.IMax/cells + 1),
		clamp(r.JMin/cells - 1), clamp(r.JMax/cells + 1)
}

// ApplyRegion rebuilds every chunk touched by an edit of the vertex
// rectangle r, then restitches border normals.
func (g *Grid) ApplyRegion(r heightfield.Rect) error {
	r = r.Intersect(g.field.Bounds())
	if r.Empty() {
		return nil
	}
	start := time.Now()

	g.dirty.ClearAll()
	cxMin, cxMax, cyMin, cyMax := g.ChunksFor(r)
	for cx := cxMin; cx <= cxMax; cx++ {
		for cy := cyMin; cy <= cyMax; cy++ {
			g.dirty.Set(uint(cx*g.count + cy))
		}
	}

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for k, ok := g.dirty.NextSet(0); ok; k, ok = g.dirty.NextSet(k + 1) {
		c := g.chunks[k]
		eg.Go(func() error {
			return c.rebuild(g.field, g.kernel)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	g.stitchNormals()

	g.log.Debug("chunks rebuilt",
		zap.Uint("dirty", g.dirty.Count()),
		zap.Uint("stitched", g.ring.Count()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// stitchNormals recomputes border vertex normals of the dirty chunks and of
// the ring of chunks around them, reading faces across chunk boundaries.
func (g *Grid) stitchNormals() {
	g.ring.ClearAll()
	for k, ok := g.dirty.NextSet(0); ok; k, ok = g.dirty.NextSet(k + 1) {
		cx, cy := int(k)/g.count, int(k)%g.count
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				nx, ny := cx+dx, cy+dy
				if nx < 0 || ny < 0 || nx >= g.count || ny >= g.count {
					continue
				}
				g.ring.Set(uint(nx*g.count + ny))
			}
		}
	}

	for k, ok := g.ring.NextSet(0); ok; k, ok = g.ring.NextSet(k + 1) {
		c := g.chunks[k]
		for i := range c.span {
			for j := range c.span {
				if !c.isBorder(i, j) {
					continue
				}
				c.Ground.Normals[i*c.span+j] = terrain.VertexNormal(g, c.place.OffsetI+i, c.place.OffsetJ+j)
			}
		}
	}
}

// Face returns a face normal by global cell index, fetched from the chunk
// that owns the cell. Cells beyond the field edge report false.
func (g *Grid) Face(ci, cj, tri int) (mgl32.Vec3, bool) {
	cells := g.field.Resolution() - 1
	if ci < 0 || cj < 0 || ci >= cells || cj >= cells {
		return mgl32.Vec3{}, false
	}
	span := g.span - 1
	return g.Chunk(ci/span, cj/span).Face(ci, cj, tri)
}

// Raycast returns the nearest ground hit over all chunks and the chunk it
// landed in.
func (g *Grid) Raycast(r picking.Ray) (picking.Hit, *Chunk, bool) {
	var (
		best  picking.Hit
		owner *Chunk
	)
	for _, c := range g.chunks {
		hit, ok := c.Collider.Raycast(r)
		if !ok {
			continue
		}
		if owner == nil || hit.T < best.T {
			best, owner = hit, c
		}
	}
	return best, owner, owner != nil
}

// Stats returns mesh totals over every chunk.
func (g *Grid) Stats() Stats {
	s := Stats{Chunks: len(g.chunks)}
	for _, c := range g.chunks {
		s.GroundVertices += c.Ground.VertexCount()
		s.GroundTriangles += c.Ground.TriangleCount()
		s.GroundQuads += len(c.ground.Quads)
		s.SeaVertices += c.Sea.VertexCount()
		s.SeaTriangles += c.Sea.TriangleCount()
		s.SeaQuads += len(c.sea.Quads)
	}
	return s
}
