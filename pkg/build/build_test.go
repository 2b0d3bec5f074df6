package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/sdfx"
	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Fake kernel
// ---------------------------------------------------------------------------

type fakeSolid struct {
	planar  bool
	regions int
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) { return min, max }
func (s *fakeSolid) Planar() bool                        { return s.planar }
func (s *fakeSolid) Regions() int                        { return s.regions }

// fakeKernel records calls and returns a unit square mesh.
type fakeKernel struct {
	meshes int
	angles []float64
}

func (k *fakeKernel) Revolve(p *kernel.Profile, angleDeg float64) (kernel.Solid, error) {
	k.angles = append(k.angles, angleDeg)
	return &fakeSolid{planar: angleDeg == 0, regions: 1}, nil
}

func (k *fakeKernel) Extrude(p *kernel.Profile, depth float64) (kernel.Solid, error) {
	return &fakeSolid{regions: 1}, nil
}

func (k *fakeKernel) Planar(p *kernel.Profile) (kernel.Solid, error) {
	return &fakeSolid{planar: true, regions: 1}, nil
}

func (k *fakeKernel) Intersect(a, b kernel.Solid) (kernel.Solid, error) {
	return nil, kernel.ErrUnsupported
}

func (k *fakeKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return nil, kernel.ErrUnsupported
}

func (k *fakeKernel) Partition(s kernel.Solid, g partition.Geometry) (kernel.Solid, kernel.CutReport) {
	var report kernel.CutReport
	report.Record("yz", nil)
	report.Record("diagonal upper", kernel.ErrCutMissed)
	return &fakeSolid{planar: s.Planar(), regions: 8}, report
}

func (k *fakeKernel) ToMesh(s kernel.Solid, globalSeed float64) (*kernel.Mesh, error) {
	k.meshes++
	return &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}, nil
}

// ---------------------------------------------------------------------------
// Plan helpers
// ---------------------------------------------------------------------------

type planBuilder struct {
	p *plan.Plan
	n int
}

func newPlan() *planBuilder { return &planBuilder{p: plan.New()} }

func (b *planBuilder) part(kind plan.NodeKind, name string, d plan.NodeData) plan.NodeID {
	id := plan.NewNodeID(kind.String() + "/" + name)
	b.p.AddNode(&plan.Node{ID: id, Kind: kind, Name: name, Data: d})
	return id
}

func (b *planBuilder) step(kind plan.NodeKind, target plan.NodeID, d plan.NodeData) {
	b.n++
	id := plan.NewNodeID(kind.String() + "/" + string(rune('a'+b.n)))
	b.p.AddNode(&plan.Node{ID: id, Kind: kind, Children: []plan.NodeID{target}, Data: d})
}

func tube(angle float64) plan.CylinderData {
	return plan.CylinderData{InnerRadius: 1, OuterRadius: 2, Height: 1, RevolutionAngle: angle}
}

func washer(planar bool) plan.GeometryData {
	d := plan.NewGeometryData()
	d.Points = []segment.Point{{X: 1, Y: -0.5}, {X: 2, Y: -0.5}, {X: 2, Y: 0.5}, {X: 1, Y: 0.5}}
	d.Planar = planar
	return d
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunFailingPartContinues(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	dir := t.TempDir()
	b := newPlan()
	bad := plan.NewGeometryData()
	bad.InputFile = "missing.csv"
	badID := b.part(plan.NodeGeometry, "bad", bad)
	b.step(plan.NodeExport, badID, plan.ExportData{OutputFile: "all.inp"})
	goodID := b.part(plan.NodeCylinder, "good", tube(360))
	b.step(plan.NodeExport, goodID, plan.ExportData{OutputFile: "all.inp"})

	r, err := Run(context.Background(), b.p, &fakeKernel{}, Options{BaseDir: dir})
	require.NoError(t, err)
	require.Len(t, r.Parts, 2)

	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Err.Error(), "failed to build part bad from missing.csv")
	assert.Error(t, r.Err())

	assert.NoError(t, r.Part("good").Err)
	assert.Equal(t, []string{filepath.Join(dir, "all.inp")}, r.Outputs)
	inp := readFile(t, filepath.Join(dir, "all.inp"))
	assert.Contains(t, inp, "*Part, name=good")
	assert.NotContains(t, inp, "name=bad")
}

func TestRunElementTypes(t *testing.T) {
	dir := t.TempDir()
	b := newPlan()
	shell := b.part(plan.NodeCylinder, "shell", tube(360))
	axi := b.part(plan.NodeCylinder, "axi", tube(0))
	flat := b.part(plan.NodeGeometry, "flat", washer(true))
	custom := b.part(plan.NodeGeometry, "custom", washer(false))
	b.step(plan.NodeMesh, custom, plan.MeshData{GlobalSeed: 0.5, ElementType: "S3"})
	for _, id := range []plan.NodeID{shell, axi, flat, custom} {
		b.step(plan.NodeExport, id, plan.ExportData{OutputFile: "model.inp", Assembly: id == flat})
	}

	k := &fakeKernel{}
	r, err := Run(context.Background(), b.p, k, Options{BaseDir: dir})
	require.NoError(t, err)
	require.NoError(t, r.Err())

	assert.Equal(t, ElementShell, r.Part("shell").ElementType)
	assert.Equal(t, ElementAxisymmetric, r.Part("axi").ElementType)
	assert.Equal(t, ElementPlaneStress, r.Part("flat").ElementType)
	assert.Equal(t, "S3", r.Part("custom").ElementType)
	assert.Equal(t, []float64{360, 0, 360}, k.angles)

	inp := readFile(t, filepath.Join(dir, "model.inp"))
	assert.Equal(t, 4, strings.Count(inp, "*Part, name="))
	assert.Contains(t, inp, "*Element, type=CAX3")
	assert.Contains(t, inp, "*Instance, name=custom-1, part=custom")
	assert.Equal(t, 4, k.meshes)
}

func TestRunPartitionRemeshes(t *testing.T) {
	dir := t.TempDir()
	b := newPlan()
	id := b.part(plan.NodeSphere, "ball", plan.SphereData{InnerRadius: 1, OuterRadius: 2, Quadrant: "both", RevolutionAngle: 360})
	b.step(plan.NodeMesh, id, plan.MeshData{GlobalSeed: 1})
	b.step(plan.NodeExport, id, plan.ExportData{OutputFile: "before.inp"})
	b.step(plan.NodePartition, id, plan.NewPartitionData())
	b.step(plan.NodeSets, id, plan.NodeSetData{Name: "bottom", Normal: r3.Vec{Y: 1}, Tolerance: 1e-6})
	b.step(plan.NodeExport, id, plan.ExportData{OutputFile: "after.inp"})
	b.step(plan.NodeImage, id, plan.ImageData{OutputFile: "ball.svg", Width: 100, Height: 100})

	k := &fakeKernel{}
	r, err := Run(context.Background(), b.p, k, Options{BaseDir: dir})
	require.NoError(t, err)
	ball := r.Part("ball")
	require.NoError(t, ball.Err)

	assert.Equal(t, 2, k.meshes)
	assert.Equal(t, 8, ball.Solid.Regions())
	assert.Equal(t, 1, ball.Cuts.Succeeded())
	assert.Len(t, ball.Cuts.Failed(), 1)
	assert.NoError(t, ball.Cuts.Err())

	assert.NotContains(t, readFile(t, filepath.Join(dir, "before.inp")), "*Nset")
	assert.Contains(t, readFile(t, filepath.Join(dir, "after.inp")), "*Nset, nset=bottom\n1, 2\n")
	assert.Contains(t, readFile(t, filepath.Join(dir, "ball.svg")), "<polygon")
	assert.Len(t, r.Outputs, 3)
}

func TestRunInvalidPlan(t *testing.T) {
	b := newPlan()
	b.part(plan.NodeCylinder, "broken", plan.CylinderData{InnerRadius: 3, OuterRadius: 2, Height: 1})
	_, err := Run(context.Background(), b.p, &fakeKernel{}, Options{})
	assert.True(t, errors.Is(err, ErrInvalidPlan))
}

func TestRunCancelled(t *testing.T) {
	b := newPlan()
	b.part(plan.NodeCylinder, "tube", tube(360))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, b.p, &fakeKernel{}, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunSdfxWasher(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	dir := t.TempDir()
	b := newPlan()
	id := b.part(plan.NodeGeometry, "washer", washer(true))
	pd := plan.NewPartitionData()
	pd.Center = r3.Vec{X: 1.5}
	b.step(plan.NodePartition, id, pd)
	b.step(plan.NodeMesh, id, plan.MeshData{GlobalSeed: 0.25})
	b.step(plan.NodeExport, id, plan.ExportData{OutputFile: "washer.inp"})
	b.step(plan.NodeExport, id, plan.ExportData{OutputFile: "washer.stl"})

	r, err := Run(context.Background(), b.p, sdfx.New(), Options{BaseDir: dir})
	require.NoError(t, err)
	require.NoError(t, r.Err())

	w := r.Part("washer")
	assert.Greater(t, w.Solid.Regions(), 1)
	assert.False(t, w.Mesh.IsEmpty())
	inp := readFile(t, filepath.Join(dir, "washer.inp"))
	assert.Contains(t, inp, "*Element, type=CPS3")
	assert.Contains(t, inp, "*Elset, elset=region-")
	_, err = os.Stat(filepath.Join(dir, "washer.stl"))
	assert.NoError(t, err)
}
