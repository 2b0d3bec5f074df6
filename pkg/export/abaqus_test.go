package export

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// squareMesh is a unit square in the XY plane split into two triangles,
// with one vertex per triangle corner as the kernel emits them.
func squareMesh() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float64{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			0, 0, 0, 1, 1, 0, 0, 1, 0,
		},
		Normals: make([]float64, 18),
		Indices: []uint32{0, 1, 2, 3, 4, 5},
		Regions: []int{0, 1},
	}
}

func TestWeld(t *testing.T) {
	w := Weld(squareMesh(), 0)
	assert.Len(t, w.Nodes, 4)
	require.Len(t, w.Elements, 2)
	assert.Equal(t, [3]int{0, 1, 2}, w.Elements[0])
	assert.Equal(t, [3]int{0, 2, 3}, w.Elements[1])
	assert.Equal(t, []int{0, 1}, w.Regions)
}

func TestWeldDropsCollapsedTriangles(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1e-12, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
	w := Weld(m, 1e-6)
	assert.Len(t, w.Nodes, 2)
	assert.Empty(t, w.Elements)
}

func TestSelectNodes(t *testing.T) {
	nodes := []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	bottom := SelectNodes(nodes, NodeSet{Normal: r3.Vec{Y: 2}, Tolerance: 1e-6})
	assert.Equal(t, []int{0, 1}, bottom)

	right := SelectNodes(nodes, NodeSet{Point: r3.Vec{X: 1}, Normal: r3.Vec{X: 1}, Tolerance: 1e-6})
	assert.Equal(t, []int{1, 2}, right)

	nearest := SelectNodes(nodes, NodeSet{Point: r3.Vec{X: 0.9, Y: 1.2}})
	assert.Equal(t, []int{2}, nearest)

	assert.Nil(t, SelectNodes(nil, NodeSet{}))
}

func TestWriteAbaqus(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	parts := []Part{{
		Name:        "square",
		Mesh:        squareMesh(),
		ElementType: "CPS3",
		NodeSets:    []NodeSet{{Name: "bottom", Normal: r3.Vec{Y: 1}, Tolerance: 1e-6}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteAbaqus(&buf, parts, Options{ModelName: "Model-1", Assembly: true}))
	out := buf.String()

	for _, want := range []string{
		"*Heading\n** Model name: Model-1\n",
		"*Part, name=square\n*Node\n1, 0, 0\n2, 1, 0\n3, 1, 1\n4, 0, 1\n",
		"*Element, type=CPS3\n1, 1, 2, 3\n2, 1, 3, 4\n",
		"*Elset, elset=region-1\n1\n*Elset, elset=region-2\n2\n",
		"*Nset, nset=bottom\n1, 2\n",
		"*End Part\n",
		"*Assembly, name=Assembly\n*Instance, name=square-1, part=square\n*End Instance\n*End Assembly\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteAbaqusSolidNodes(t *testing.T) {
	var buf bytes.Buffer
	parts := []Part{{Name: "shell", Mesh: squareMesh(), ElementType: "S3R"}}
	require.NoError(t, WriteAbaqus(&buf, parts, Options{}))
	out := buf.String()
	assert.Contains(t, out, "3, 1, 1, 0\n")
	assert.NotContains(t, out, "*Assembly")
	assert.NotContains(t, out, "Model name")
}

func TestWriteIDsWraps(t *testing.T) {
	ids := make([]int, 20)
	for i := range ids {
		ids[i] = i
	}
	var lines bytes.Buffer
	w := bufio.NewWriter(&lines)
	writeIDs(w, ids)
	require.NoError(t, w.Flush())
	got := strings.Split(strings.TrimSpace(lines.String()), "\n")
	require.Len(t, got, 2)
	assert.Equal(t, 16, len(strings.Split(got[0], ", ")))
	assert.Equal(t, "17, 18, 19, 20", got[1])
}

func TestWriteAbaqusErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteAbaqus(&buf, nil, Options{}))
	assert.Error(t, WriteAbaqus(&buf, []Part{{Name: "a", Mesh: &kernel.Mesh{}, ElementType: "S3R"}}, Options{}))
	assert.Error(t, WriteAbaqus(&buf, []Part{{Name: "a", Mesh: squareMesh()}}, Options{}))
	dup := Part{Name: "a", Mesh: squareMesh(), ElementType: "S3R"}
	err := WriteAbaqus(&buf, []Part{dup, dup}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate part name")
}

func TestWriteAbaqusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.inp")
	parts := []Part{{Name: "square", Mesh: squareMesh(), ElementType: "S3R"}}
	require.NoError(t, WriteAbaqusFile(path, parts, Options{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "*Heading\n"))
}
