package kernel

import "math"

// Mesh is a triangle mesh. All arrays are flat: vertices has 3 floats per
// vertex (x,y,z), normals has 3 floats per vertex, indices has 3 per triangle.
// Regions holds, per triangle, the partition region it was generated from.
type Mesh struct {
	Vertices []float64 `json:"vertices"`
	Normals  []float64 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Regions  []int     `json:"regions,omitempty"`
	PartName string    `json:"partName"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) [3]float64 {
	return [3]float64{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh has
// zero bounds.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for k := range 3 {
		min[k], max[k] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		for k := range 3 {
			v := m.Vertices[i+k]
			min[k] = math.Min(min[k], v)
			max[k] = math.Max(max[k], v)
		}
	}
	return min, max
}

// Append adds the triangles of o to m, renumbering its indices. Region ids
// of o are shifted past the regions already present in m; untagged
// triangles belong to region 0.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	for len(m.Regions) < m.TriangleCount() {
		m.Regions = append(m.Regions, 0)
	}
	regionBase := 0
	for _, r := range m.Regions {
		regionBase = max(regionBase, r+1)
	}
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
	if len(o.Regions) == 0 {
		for range o.TriangleCount() {
			m.Regions = append(m.Regions, regionBase)
		}
		return
	}
	for _, r := range o.Regions {
		m.Regions = append(m.Regions, regionBase+r)
	}
}
