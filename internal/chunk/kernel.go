package chunk

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/shoreline/internal/terrain"
)

// Per-cell output slots of a SeaKernel.
const (
	MaxCellVertices = 6
	MaxCellIndices  = 9
)

// ErrKernelOutput reports a kernel buffer that references a missing or
// sentinel vertex.
var ErrKernelOutput = errors.New("invalid sea kernel output")

// KernelOutput is the fixed-capacity result of a SeaKernel run. Cell k owns
// vertex slots [k*MaxCellVertices, (k+1)*MaxCellVertices) and index slots
// [k*MaxCellIndices, (k+1)*MaxCellIndices). Unused vertex slots hold
// SentinelVertex and unused index slots hold -1.
type KernelOutput struct {
	Vertices []mgl32.Vec3
	Indices  []int32
}

// SeaKernel produces the contour sea surface of one chunk in fixed-size
// per-cell slots, the way a data-parallel backend would.
type SeaKernel interface {
	Generate(heights []float32, span int, place terrain.Placer) (KernelOutput, error)
}

// SentinelVertex marks an unused vertex slot.
func SentinelVertex() mgl32.Vec3 {
	return mgl32.Vec3{0, float32(math.Inf(1)), 0}
}

// IsSentinel reports whether v marks an unused slot.
func IsSentinel(v mgl32.Vec3) bool {
	return math.IsInf(float64(v[1]), 1)
}

// NewKernelOutput allocates output slots for a chunk of the given span, all
// set to their sentinels.
func NewKernelOutput(span int) KernelOutput {
	cells := (span - 1) * (span - 1)
	out := KernelOutput{
		Vertices: make([]mgl32.Vec3, cells*MaxCellVertices),
		Indices:  make([]int32, cells*MaxCellIndices),
	}
	s := SentinelVertex()
	for k := range out.Vertices {
		out.Vertices[k] = s
	}
	for k := range out.Indices {
		out.Indices[k] = -1
	}
	return out
}

// CellKernel is the reference SeaKernel. It runs the contour table cell by
// cell with no flat merging, writing into per-cell slots.
type CellKernel struct{}

// Generate implements SeaKernel.
func (CellKernel) Generate(heights []float32, span int, place terrain.Placer) (KernelOutput, error) {
	if len(heights) != span*span {
		return KernelOutput{}, fmt.Errorf("%w: %d heights for span %d", ErrKernelOutput, len(heights), span)
	}
	out := NewKernelOutput(span)
	cells := span - 1

	var scratch terrain.MeshBuffer
	for i := range cells {
		for j := range cells {
			h := [4]float32{
				heights[i*span+j],
				heights[(i+1)*span+j],
				heights[i*span+j+1],
				heights[(i+1)*span+j+1],
			}
			scratch.Reset()
			if terrain.AppendCell(h, i, j, place, &scratch) == 0 {
				continue
			}
			if len(scratch.Positions) > MaxCellVertices || len(scratch.Indices) > MaxCellIndices {
				return KernelOutput{}, fmt.Errorf("%w: cell (%d, %d) overflows its slots", ErrKernelOutput, i, j)
			}
			cell := i*cells + j
			vbase := cell * MaxCellVertices
			ibase := cell * MaxCellIndices
			copy(out.Vertices[vbase:], scratch.Positions)
			for k, idx := range scratch.Indices {
				out.Indices[ibase+k] = int32(vbase) + int32(idx)
			}
		}
	}
	return out, nil
}

// Compact strips sentinels from a kernel result and appends the surviving
// geometry to dst with contiguous indices.
func Compact(out KernelOutput, place terrain.Placer, dst *terrain.MeshBuffer) error {
	remap := make([]int32, len(out.Vertices))
	base := uint32(len(dst.Positions))
	next := int32(0)
	for k, v := range out.Vertices {
		if IsSentinel(v) {
			remap[k] = -1
			continue
		}
		remap[k] = next
		next++
		dst.Positions = append(dst.Positions, v)
		dst.UVs = append(dst.UVs, place.UV(v))
		dst.Normals = append(dst.Normals, mgl32.Vec3{0, 1, 0})
	}

	tri := make([]uint32, 0, 3)
	for k, idx := range out.Indices {
		if idx < 0 {
			if len(tri) != 0 {
				return fmt.Errorf("%w: partial triangle at index slot %d", ErrKernelOutput, k)
			}
			continue
		}
		if int(idx) >= len(remap) || remap[idx] < 0 {
			return fmt.Errorf("%w: index slot %d references vertex %d", ErrKernelOutput, k, idx)
		}
		tri = append(tri, base+uint32(remap[idx]))
		if len(tri) == 3 {
			dst.Indices = append(dst.Indices, tri...)
			tri = tri[:0]
		}
	}
	if len(tri) != 0 {
		return fmt.Errorf("%w: trailing partial triangle", ErrKernelOutput)
	}
	return nil
}
