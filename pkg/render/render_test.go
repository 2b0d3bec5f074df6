package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetrahedron returns a closed four triangle mesh.
func tetrahedron() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:  []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
}

func TestViewRotation(t *testing.T) {
	v := newView(ImageOptions{ZAngle: 90})
	p := v.apply(r3.Vec{X: 1})
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	identity := newView(ImageOptions{})
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, identity.apply(r3.Vec{X: 1, Y: 2, Z: 3}))
}

func TestFacetsDepthOrder(t *testing.T) {
	fs := facets(tetrahedron(), newView(ImageOptions{}))
	require.Len(t, fs, 4)
	for i := 1; i < len(fs); i++ {
		assert.LessOrEqual(t, fs[i-1].depth, fs[i].depth)
	}
	// The face in the XY plane faces the viewer head on.
	assert.InDelta(t, 1, fs[0].shade, 1e-12)
}

func TestSVG(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, tetrahedron(), ImageOptions{XAngle: 30, YAngle: 45, Width: 200, Height: 100}))
	out := buf.String()
	assert.Contains(t, out, `width="200"`)
	assert.Contains(t, out, `height="100"`)
	assert.Equal(t, 4, strings.Count(out, "<polygon"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))

	assert.Error(t, SVG(&buf, &kernel.Mesh{}, ImageOptions{}))
}

func TestSaveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tet.svg")
	require.NoError(t, SaveSVG(path, tetrahedron(), ImageOptions{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="1920"`)
}

func washerPart() PlotPart {
	pts := []segment.Point{{X: 1, Y: -0.5}, {X: 2, Y: -0.5}, {X: 2, Y: 0.5}, {X: 1, Y: 0.5}}
	lines, splines, _ := segment.LinesAndSplines(pts, segment.DefaultEuclideanDistance, segment.DefaultTolerance())
	return PlotPart{Name: "washer", Coordinates: pts, Lines: lines, Splines: splines}
}

func TestNewXYPlotScale(t *testing.T) {
	p, err := NewXYPlot([]PlotPart{washerPart()}, PlotOptions{Annotate: true, Scale: true})
	require.NoError(t, err)
	assert.InDelta(t, p.X.Max-p.X.Min, p.Y.Max-p.Y.Min, 1e-12)
	assert.LessOrEqual(t, p.X.Min, 1.0)
	assert.GreaterOrEqual(t, p.X.Max, 2.0)
}

func TestXYPlot(t *testing.T) {
	dir := t.TempDir()
	second := washerPart()
	second.Name = "other"
	for _, name := range []string{"plot.png", "plot.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, XYPlot(path, []PlotPart{washerPart(), second}, PlotOptions{NoMarkers: true}))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Error(t, XYPlot(filepath.Join(dir, "empty.png"), nil, PlotOptions{}))
}
