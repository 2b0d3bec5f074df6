// Package export writes meshed parts to Abaqus input files.
//
// Meshes from the kernel carry one vertex per triangle corner. Before
// writing, coincident vertices are welded into shared nodes so that the
// orphan mesh is connected.
package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer traces with key 'turtle.export'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.export")
}

// Default export settings.
const (
	DefaultWeldTolerance = 1e-9
	DefaultAssemblyName  = "Assembly"
	// itemsPerLine is the Abaqus limit for set data lines.
	itemsPerLine = 16
)

// NodeSet selects the nodes of a part lying on a plane. A zero Normal
// selects the single node nearest to Point.
type NodeSet struct {
	Name      string
	Point     r3.Vec
	Normal    r3.Vec
	Tolerance float64
}

// Part is one meshed part to write.
type Part struct {
	Name        string
	Mesh        *kernel.Mesh
	ElementType string
	NodeSets    []NodeSet
}

// Options controls the layout of the input file.
type Options struct {
	ModelName string
	// Assembly adds an assembly with one instance per part.
	Assembly      bool
	WeldTolerance float64
}

// Welded is a mesh with shared nodes. Elements index into Nodes.
type Welded struct {
	Nodes    []r3.Vec
	Elements [][3]int
	Regions  []int
}

// Weld merges vertices closer than tol and drops triangles that collapse.
func Weld(m *kernel.Mesh, tol float64) Welded {
	if tol <= 0 {
		tol = DefaultWeldTolerance
	}
	type cell [3]int64
	key := func(p [3]float64) cell {
		return cell{
			int64(math.Round(p[0] / tol)),
			int64(math.Round(p[1] / tol)),
			int64(math.Round(p[2] / tol)),
		}
	}
	var w Welded
	index := make(map[cell]int)
	remap := make([]int, m.VertexCount())
	for i := range remap {
		p := m.Vertex(i)
		k := key(p)
		n, ok := index[k]
		if !ok {
			n = len(w.Nodes)
			index[k] = n
			w.Nodes = append(w.Nodes, r3.Vec{X: p[0], Y: p[1], Z: p[2]})
		}
		remap[i] = n
	}
	for t := 0; t < m.TriangleCount(); t++ {
		e := [3]int{
			remap[m.Indices[3*t]],
			remap[m.Indices[3*t+1]],
			remap[m.Indices[3*t+2]],
		}
		if e[0] == e[1] || e[1] == e[2] || e[0] == e[2] {
			continue
		}
		w.Elements = append(w.Elements, e)
		region := 0
		if t < len(m.Regions) {
			region = m.Regions[t]
		}
		w.Regions = append(w.Regions, region)
	}
	return w
}

// SelectNodes returns the indices of the nodes matched by s, in ascending
// order.
func SelectNodes(nodes []r3.Vec, s NodeSet) []int {
	if len(nodes) == 0 {
		return nil
	}
	if r3.Norm(s.Normal) == 0 {
		best, bestDist := 0, math.Inf(1)
		for i, n := range nodes {
			if d := r3.Norm(r3.Sub(n, s.Point)); d < bestDist {
				best, bestDist = i, d
			}
		}
		return []int{best}
	}
	normal := r3.Unit(s.Normal)
	var out []int
	for i, n := range nodes {
		if math.Abs(r3.Dot(r3.Sub(n, s.Point), normal)) <= s.Tolerance {
			out = append(out, i)
		}
	}
	return out
}

// planarElement reports whether an element type is a 2D continuum element.
func planarElement(elementType string) bool {
	t := strings.ToUpper(elementType)
	for _, prefix := range []string{"CPS", "CPE", "CAX", "CGAX"} {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

// writeIDs writes 1-based ids, itemsPerLine to a line.
func writeIDs(w *bufio.Writer, ids []int) {
	for i, id := range ids {
		if i > 0 {
			if i%itemsPerLine == 0 {
				w.WriteString("\n")
			} else {
				w.WriteString(", ")
			}
		}
		fmt.Fprintf(w, "%d", id+1)
	}
	w.WriteString("\n")
}

func writePart(w *bufio.Writer, p Part, tol float64) error {
	if p.Mesh == nil || p.Mesh.IsEmpty() {
		return fmt.Errorf("export: part %q has no mesh", p.Name)
	}
	if p.ElementType == "" {
		return fmt.Errorf("export: part %q has no element type", p.Name)
	}
	welded := Weld(p.Mesh, tol)
	flat := planarElement(p.ElementType)

	fmt.Fprintf(w, "*Part, name=%s\n*Node\n", p.Name)
	for i, n := range welded.Nodes {
		if flat {
			fmt.Fprintf(w, "%d, %.12g, %.12g\n", i+1, n.X, n.Y)
		} else {
			fmt.Fprintf(w, "%d, %.12g, %.12g, %.12g\n", i+1, n.X, n.Y, n.Z)
		}
	}
	fmt.Fprintf(w, "*Element, type=%s\n", p.ElementType)
	for i, e := range welded.Elements {
		fmt.Fprintf(w, "%d, %d, %d, %d\n", i+1, e[0]+1, e[1]+1, e[2]+1)
	}

	regions := map[int][]int{}
	maxRegion := 0
	for i, r := range welded.Regions {
		regions[r] = append(regions[r], i)
		maxRegion = max(maxRegion, r)
	}
	if len(regions) > 1 {
		for r := 0; r <= maxRegion; r++ {
			if len(regions[r]) == 0 {
				continue
			}
			fmt.Fprintf(w, "*Elset, elset=region-%d\n", r+1)
			writeIDs(w, regions[r])
		}
	}

	for _, s := range p.NodeSets {
		ids := SelectNodes(welded.Nodes, s)
		if len(ids) == 0 {
			tracer().Infof("node set %q on part %q selects no nodes", s.Name, p.Name)
			continue
		}
		fmt.Fprintf(w, "*Nset, nset=%s\n", s.Name)
		writeIDs(w, ids)
	}
	w.WriteString("*End Part\n")
	tracer().Debugf("part %q: %d nodes, %d elements", p.Name, len(welded.Nodes), len(welded.Elements))
	return nil
}

// WriteAbaqus writes parts as orphan meshes to w.
func WriteAbaqus(w io.Writer, parts []Part, opts Options) error {
	if len(parts) == 0 {
		return fmt.Errorf("export: no parts to write")
	}
	seen := map[string]bool{}
	for _, p := range parts {
		if seen[p.Name] {
			return fmt.Errorf("export: duplicate part name %q", p.Name)
		}
		seen[p.Name] = true
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("*Heading\n")
	if opts.ModelName != "" {
		fmt.Fprintf(bw, "** Model name: %s\n", opts.ModelName)
	}
	for _, p := range parts {
		if err := writePart(bw, p, opts.WeldTolerance); err != nil {
			return err
		}
	}
	if opts.Assembly {
		fmt.Fprintf(bw, "*Assembly, name=%s\n", DefaultAssemblyName)
		for _, p := range parts {
			fmt.Fprintf(bw, "*Instance, name=%s-1, part=%s\n*End Instance\n", p.Name, p.Name)
		}
		bw.WriteString("*End Assembly\n")
	}
	return bw.Flush()
}

// WriteAbaqusFile writes parts to the file at path.
func WriteAbaqusFile(path string, parts []Part, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
	}()
	if err := WriteAbaqus(f, parts, opts); err != nil {
		return err
	}
	tracer().Infof("wrote %d parts to %s", len(parts), path)
	return nil
}
