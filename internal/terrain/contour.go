package terrain

import "github.com/go-gl/mathgl/mgl32"

// Cell corners and edge crossings referenced by the case table.
// Corners: c0=(i,j) c1=(i+1,j) c2=(i,j+1) c3=(i+1,j+1).
type cellPoint uint8

const (
	pC0 cellPoint = iota
	pC1
	pC2
	pC3
	pE01
	pE02
	pE13
	pE23
)

// contourCases lists the sea polygons of each 4-bit case (bit k set when
// corner k is below zero). Polygons are fan-triangulated from their first
// point. Cases 6 and 9 are two separate triangles, never a connected band.
var contourCases = [16][][]cellPoint{
	0:  nil,
	1:  {{pC0, pE02, pE01}},
	2:  {{pC1, pE01, pE13}},
	3:  {{pC1, pC0, pE02, pE13}},
	4:  {{pC2, pE23, pE02}},
	5:  {{pC0, pC2, pE23, pE01}},
	6:  {{pC1, pE01, pE13}, {pC2, pE23, pE02}},
	7:  {{pC1, pC0, pC2, pE23, pE13}},
	8:  {{pC3, pE13, pE23}},
	9:  {{pC0, pE02, pE01}, {pC3, pE13, pE23}},
	10: {{pC3, pC1, pE01, pE23}},
	11: {{pC3, pC1, pC0, pE02, pE23}},
	12: {{pC2, pC3, pE13, pE02}},
	13: {{pC0, pC2, pC3, pE13, pE01}},
	14: {{pC2, pC3, pC1, pE01, pE02}},
	15: {{pC0, pC2, pC3, pC1}},
}

// CaseIndex classifies a cell by the sign of its corner heights.
// Exactly zero counts as land.
func CaseIndex(h0, h1, h2, h3 float32) int {
	idx := 0
	if h0 < 0 {
		idx |= 1
	}
	if h1 < 0 {
		idx |= 2
	}
	if h2 < 0 {
		idx |= 4
	}
	if h3 < 0 {
		idx |= 8
	}
	return idx
}

// EdgeCrossing returns the fraction along the edge from a to b where the
// linearly interpolated height reaches zero. Callers always pass the corner
// with the lower grid index as a, so neighbouring cells agree bit for bit.
func EdgeCrossing(ha, hb float32) float32 {
	return ha / (ha - hb)
}

// ContourSea meshes every cell of w not owned by a sea quad.
func ContourSea(w Window, quads *QuadSet, place Placer, out *MeshBuffer) {
	cells := w.Span() - 1
	for i := range cells {
		for j := range cells {
			if quads != nil && quads.Covered(i, j) {
				continue
			}
			h := [4]float32{w.At(i, j), w.At(i+1, j), w.At(i, j+1), w.At(i+1, j+1)}
			AppendCell(h, i, j, place, out)
		}
	}
}

// AppendSeaQuads emits one quad per merged sea block.
func AppendSeaQuads(quads *QuadSet, place Placer, out *MeshBuffer) {
	for _, q := range quads.Quads {
		s := q.Size
		appendPolygon(out, place, []mgl32.Vec3{
			place.Point(q.I, q.J, 0, 0, 0),
			place.Point(q.I, q.J+s, 0, 0, 0),
			place.Point(q.I+s, q.J+s, 0, 0, 0),
			place.Point(q.I+s, q.J, 0, 0, 0),
		})
	}
}

// AppendCell emits the sea polygons of one cell with corner heights h at
// local cell (i, j). It returns the number of vertices added.
func AppendCell(h [4]float32, i, j int, place Placer, out *MeshBuffer) int {
	polys := contourCases[CaseIndex(h[0], h[1], h[2], h[3])]
	added := 0
	var pts [5]mgl32.Vec3
	for _, poly := range polys {
		for k, p := range poly {
			pts[k] = cellPointPosition(p, h, i, j, place)
		}
		appendPolygon(out, place, pts[:len(poly)])
		added += len(poly)
	}
	return added
}

func cellPointPosition(p cellPoint, h [4]float32, i, j int, place Placer) mgl32.Vec3 {
	switch p {
	case pC0:
		return place.Point(i, j, 0, 0, 0)
	case pC1:
		return place.Point(i+1, j, 0, 0, 0)
	case pC2:
		return place.Point(i, j+1, 0, 0, 0)
	case pC3:
		return place.Point(i+1, j+1, 0, 0, 0)
	case pE01:
		return place.Point(i, j, EdgeCrossing(h[0], h[1]), 0, 0)
	case pE02:
		return place.Point(i, j, 0, EdgeCrossing(h[0], h[2]), 0)
	case pE13:
		return place.Point(i+1, j, 0, EdgeCrossing(h[1], h[3]), 0)
	case pE23:
		return place.Point(i, j+1, EdgeCrossing(h[2], h[3]), 0, 0)
	}
	panic("terrain: unknown cell point")
}

// appendPolygon adds the points as new vertices and fans triangles from the first.
func appendPolygon(out *MeshBuffer, place Placer, pts []mgl32.Vec3) {
	base := uint32(len(out.Positions))
	up := mgl32.Vec3{0, 1, 0}
	for _, p := range pts {
		out.Positions = append(out.Positions, p)
		out.UVs = append(out.UVs, place.UV(p))
		out.Normals = append(out.Normals, up)
	}
	for k := 1; k+1 < len(pts); k++ {
		out.Indices = append(out.Indices, base, base+uint32(k), base+uint32(k+1))
	}
}
