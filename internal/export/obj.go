// Package export writes terrain meshes to interchange formats.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/shoreline/internal/terrain"
)

// Group is a named mesh inside an OBJ file.
type Group struct {
	Name string
	Mesh *terrain.MeshBuffer
}

// WriteOBJ writes the groups as one Wavefront OBJ document. Vertex indices
// are global across groups, as the format requires.
func WriteOBJ(w io.Writer, groups []Group) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# shoreline terrain")

	base := 1
	for _, g := range groups {
		m := g.Mesh
		if m == nil || m.TriangleCount() == 0 {
			continue
		}
		fmt.Fprintf(bw, "o %s\n", g.Name)
		for _, p := range m.Positions {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		for t := 0; t+2 < len(m.Indices); t += 3 {
			a := int(m.Indices[t]) + base
			b := int(m.Indices[t+1]) + base
			c := int(m.Indices[t+2]) + base
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		base += len(m.Positions)
	}
	return bw.Flush()
}
