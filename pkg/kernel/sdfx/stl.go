package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
)

// Triangles converts a mesh into sdfx triangles.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	vertex := func(i uint32) v3.Vec {
		p := m.Vertex(int(i))
		return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	for t := 0; t < len(m.Indices); t += 3 {
		out = append(out, &sdf.Triangle3{
			vertex(m.Indices[t]), vertex(m.Indices[t+1]), vertex(m.Indices[t+2]),
		})
	}
	return out
}

// SaveSTL writes a mesh to a binary STL file.
func SaveSTL(path string, m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("sdfx: refusing to write empty mesh to %s", path)
	}
	if err := render.SaveSTL(path, Triangles(m)); err != nil {
		return fmt.Errorf("sdfx: %w", err)
	}
	tracer().Infof("wrote %d triangles to %s", m.TriangleCount(), path)
	return nil
}
