package external

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner remembers every command line instead of running it.
type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, argv []string) error {
	r.calls = append(r.calls, argv)
	return r.err
}

func TestParseEngine(t *testing.T) {
	for _, name := range []string{"abaqus", "Cubit", "GMSH"} {
		_, err := ParseEngine(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseEngine("ansys")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestFindCommand(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	dir := t.TempDir()
	exe := filepath.Join(dir, "fake-abaqus")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	got, err := FindCommand([]string{"missing-abaqus", "fake-abaqus"})
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = FindCommand([]string{"missing-one", "missing-two"})
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.Contains(t, err.Error(), "missing-one, missing-two")
}

func TestAbaqusGeometry(t *testing.T) {
	argv := AbaqusGeometry("abaqus", "/scripts", GeometryArgs{
		InputFiles:        []string{"vase.csv", "washer.csv"},
		OutputFile:        "out.cae",
		UnitConversion:    1,
		EuclideanDistance: 4,
		Planar:            true,
		ModelName:         "Model-1",
		PartNames:         []string{"vase", "washer"},
		Delimiter:         ",",
		RevolutionAngle:   360,
		Rtol:              1e-4,
	})
	want := "abaqus cae -noGui /scripts/geometry.py -- " +
		"--input-file vase.csv washer.csv --output-file out.cae --unit-conversion 1 " +
		"--euclidean-distance 4 --planar --model-name Model-1 --part-name vase washer " +
		"--delimiter , --header-lines 0 --revolution-angle 360 --y-offset 0 --rtol 0.0001"
	assert.Equal(t, want, strings.Join(argv, " "))
}

func TestAbaqusPartition(t *testing.T) {
	argv := AbaqusPartition("abaqus", "/scripts", PartitionArgs{
		InputFile: "sphere.cae",
		Center:    [3]float64{0, 0, 0},
		XVector:   [3]float64{1, 0, 0},
		ZVector:   [3]float64{0, 0, 1},
		ModelName: "Model-1",
		PartNames: []string{"sphere"},
		BigNumber: 1e6,
	})
	want := "abaqus cae -noGui /scripts/partition.py -- --input-file sphere.cae " +
		"--center 0 0 0 --xvector 1 0 0 --zvector 0 0 1 --model-name Model-1 " +
		"--part-name sphere --big-number 1e+06"
	assert.Equal(t, want, strings.Join(argv, " "))
}

func TestAbaqusOptionalFlags(t *testing.T) {
	sets := AbaqusSets("abaqus", "/s", SetsArgs{
		InputFile: "in.cae", ModelName: "m", PartName: "p",
		FaceSets: []NamedMask{{Name: "top", Mask: "[#1 ]"}},
	})
	assert.Equal(t, []string{"--face-set", "top", "[#1 ]"}, sets[len(sets)-3:])
	assert.NotContains(t, sets, "--output-file")

	mesh := AbaqusMesh("abaqus", "/s", MeshArgs{
		InputFile: "in.cae", ElementType: "C3D8", ModelName: "m", PartName: "p",
		GlobalSeed: 1, EdgeSeeds: []EdgeSeed{{Name: "arc", Value: 12}},
	})
	assert.Equal(t, "/s/mesh_module.py", mesh[3])
	assert.Equal(t, []string{"--edge-seed", "arc", "12"}, mesh[len(mesh)-3:])

	image := AbaqusImage("abaqus", "/s", ImageArgs{
		InputFile: "in.cae", OutputFile: "out.png", ImageSize: [2]int{1920, 1080},
		ModelName: "m", ColorMap: "MATERIAL",
	})
	assert.NotContains(t, image, "--part-name")
	assert.Contains(t, strings.Join(image, " "), "--image-size 1920 1080")
}

func TestCubitCylinderJournal(t *testing.T) {
	text, err := CubitCylinderJournal(CylinderArgs{
		InnerRadius: 1, OuterRadius: 2, Height: 1, YOffset: 0.5,
		OutputFile: "cyl.cae", PartName: "my-cyl", RevolutionAngle: 360,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "create vertex 1 1.5 0\n")
	assert.Contains(t, text, "create curve vertex 4 1\n")
	assert.Contains(t, text, "sweep surface 1 axis 0 0 0 0 1 0 angle 360 merge\n")
	assert.Contains(t, text, `volume 1 name "my_cyl"`)
	assert.Contains(t, text, "save as 'cyl.cub' overwrite")

	planar, err := CubitCylinderJournal(CylinderArgs{InnerRadius: 1, OuterRadius: 2, Height: 1, PartName: "c"})
	require.NoError(t, err)
	assert.NotContains(t, planar, "sweep")
}

func TestGmshCylinderScript(t *testing.T) {
	text, err := GmshCylinderScript(CylinderArgs{
		InnerRadius: 1, OuterRadius: 3, Height: 2, YOffset: -1, RevolutionAngle: 180,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Rectangle(1) = {1, -1, 0, 2, 2};")
	assert.Contains(t, text, "Extrude {{0, 1, 0}, {0, 0, 0}, 3.141592653589793}")

	_, err = GmshCylinderScript(CylinderArgs{InnerRadius: 3, OuterRadius: 1, Height: 1})
	assert.Error(t, err)
}

func TestDispatcher(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	ctx := context.Background()
	rec := &recordingRunner{}
	d := &Dispatcher{Engine: Gmsh, Command: "gmsh", WorkDir: t.TempDir(), Runner: rec}

	err := d.Cylinder(ctx, CylinderArgs{
		InnerRadius: 1, OuterRadius: 2, Height: 1, OutputFile: "cyl.msh", PartName: "cyl", RevolutionAngle: 360,
	})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	script := filepath.Join(d.WorkDir, "cyl.geo")
	assert.Equal(t, []string{"gmsh", script, "-0", "-o", "cyl.step"}, rec.calls[0])
	_, err = os.Stat(script)
	assert.NoError(t, err)

	err = d.Sphere(ctx, SphereArgs{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Len(t, rec.calls, 1)

	d.Engine = Abaqus
	d.Command = "abaqus"
	rec.err = errors.New("exit status 1")
	err = d.Mesh(ctx, MeshArgs{InputFile: "in.cae"})
	assert.EqualError(t, err, "exit status 1")
	assert.Equal(t, "abaqus", rec.calls[1][0])
}

func TestExecRunner(t *testing.T) {
	var out strings.Builder
	r := &ExecRunner{Stdout: &out}
	err := r.Run(context.Background(), []string{"sh", "-c", "echo turtle"})
	if err != nil {
		t.Skipf("no shell available: %v", err)
	}
	assert.Equal(t, "turtle\n", out.String())

	assert.Error(t, r.Run(context.Background(), nil))
}
