package external

import (
	"path/filepath"
	"strconv"
)

// GeometryArgs configures the geometry subcommand.
type GeometryArgs struct {
	InputFiles        []string
	OutputFile        string
	UnitConversion    float64
	EuclideanDistance float64
	Planar            bool
	ModelName         string
	PartNames         []string
	Delimiter         string
	HeaderLines       int
	RevolutionAngle   float64
	YOffset           float64
	Rtol, Atol        float64 // 0 leaves the engine default
}

// CylinderArgs configures the cylinder subcommand.
type CylinderArgs struct {
	InnerRadius     float64
	OuterRadius     float64
	Height          float64
	OutputFile      string
	ModelName       string
	PartName        string
	RevolutionAngle float64
	YOffset         float64
}

// SphereArgs configures the sphere subcommand.
type SphereArgs struct {
	InnerRadius     float64
	OuterRadius     float64
	OutputFile      string
	InputFile       string
	Quadrant        string
	RevolutionAngle float64
	YOffset         float64
	ModelName       string
	PartName        string
}

// PartitionArgs configures the partition subcommand.
type PartitionArgs struct {
	InputFile  string
	OutputFile string
	Center     [3]float64
	XVector    [3]float64
	ZVector    [3]float64
	ModelName  string
	PartNames  []string
	BigNumber  float64
}

// NamedMask is a set name paired with an engine selection mask.
type NamedMask struct {
	Name string
	Mask string
}

// SetsArgs configures the sets subcommand.
type SetsArgs struct {
	InputFile  string
	OutputFile string
	ModelName  string
	PartName   string
	FaceSets   []NamedMask
	EdgeSets   []NamedMask
	VertexSets []NamedMask
}

// EdgeSeed seeds the edges of a named set.
type EdgeSeed struct {
	Name  string
	Value float64
}

// MeshArgs configures the mesh subcommand.
type MeshArgs struct {
	InputFile   string
	ElementType string
	OutputFile  string
	ModelName   string
	PartName    string
	GlobalSeed  float64
	EdgeSeeds   []EdgeSeed
}

// MergeArgs configures the merge subcommand.
type MergeArgs struct {
	InputFiles      []string
	OutputFile      string
	MergedModelName string
	ModelNames      []string
	PartNames       []string
}

// ExportArgs configures the export subcommand.
type ExportArgs struct {
	InputFile    string
	ModelName    string
	PartNames    []string
	ElementTypes []string
	Destination  string
	Assembly     string
}

// ImageArgs configures the image subcommand.
type ImageArgs struct {
	InputFile              string
	OutputFile             string
	XAngle, YAngle, ZAngle float64
	ImageSize              [2]int
	ModelName              string
	PartName               string
	ColorMap               string
}

// flags accumulates "--name value..." pairs.
type flags []string

func (f *flags) add(name string, values ...string) {
	*f = append(*f, name)
	*f = append(*f, values...)
}

func (f *flags) addIf(cond bool, name string, values ...string) {
	if cond {
		f.add(name, values...)
	}
}

// abaqusArgv prefixes flags with the journal script invocation.
func abaqusArgv(command, scriptDir, script string, f flags) []string {
	argv := []string{command, "cae", "-noGui", filepath.Join(scriptDir, script), "--"}
	return append(argv, f...)
}

// AbaqusGeometry returns the command line of the geometry journal.
func AbaqusGeometry(command, scriptDir string, a GeometryArgs) []string {
	var f flags
	f.add("--input-file", a.InputFiles...)
	f.add("--output-file", a.OutputFile)
	f.add("--unit-conversion", num(a.UnitConversion))
	f.add("--euclidean-distance", num(a.EuclideanDistance))
	f.addIf(a.Planar, "--planar")
	f.add("--model-name", a.ModelName)
	f.addIf(len(a.PartNames) > 0, "--part-name", a.PartNames...)
	f.add("--delimiter", a.Delimiter)
	f.add("--header-lines", strconv.Itoa(a.HeaderLines))
	f.add("--revolution-angle", num(a.RevolutionAngle))
	f.add("--y-offset", num(a.YOffset))
	f.addIf(a.Rtol != 0, "--rtol", num(a.Rtol))
	f.addIf(a.Atol != 0, "--atol", num(a.Atol))
	return abaqusArgv(command, scriptDir, "geometry.py", f)
}

// AbaqusCylinder returns the command line of the cylinder journal.
func AbaqusCylinder(command, scriptDir string, a CylinderArgs) []string {
	var f flags
	f.add("--inner-radius", num(a.InnerRadius))
	f.add("--outer-radius", num(a.OuterRadius))
	f.add("--height", num(a.Height))
	f.add("--output-file", a.OutputFile)
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartName)
	f.add("--revolution-angle", num(a.RevolutionAngle))
	f.add("--y-offset", num(a.YOffset))
	return abaqusArgv(command, scriptDir, "cylinder.py", f)
}

// AbaqusSphere returns the command line of the sphere journal.
func AbaqusSphere(command, scriptDir string, a SphereArgs) []string {
	var f flags
	f.add("--inner-radius", num(a.InnerRadius))
	f.add("--outer-radius", num(a.OuterRadius))
	f.add("--output-file", a.OutputFile)
	f.addIf(a.InputFile != "", "--input-file", a.InputFile)
	f.add("--quadrant", a.Quadrant)
	f.add("--revolution-angle", num(a.RevolutionAngle))
	f.add("--y-offset", num(a.YOffset))
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartName)
	return abaqusArgv(command, scriptDir, "sphere.py", f)
}

// AbaqusPartition returns the command line of the partition journal.
func AbaqusPartition(command, scriptDir string, a PartitionArgs) []string {
	var f flags
	f.add("--input-file", a.InputFile)
	f.addIf(a.OutputFile != "", "--output-file", a.OutputFile)
	f.add("--center", nums(a.Center[:]...)...)
	f.add("--xvector", nums(a.XVector[:]...)...)
	f.add("--zvector", nums(a.ZVector[:]...)...)
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartNames...)
	f.add("--big-number", num(a.BigNumber))
	return abaqusArgv(command, scriptDir, "partition.py", f)
}

// AbaqusSets returns the command line of the sets journal.
func AbaqusSets(command, scriptDir string, a SetsArgs) []string {
	var f flags
	f.add("--input-file", a.InputFile)
	f.addIf(a.OutputFile != "", "--output-file", a.OutputFile)
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartName)
	for _, s := range a.FaceSets {
		f.add("--face-set", s.Name, s.Mask)
	}
	for _, s := range a.EdgeSets {
		f.add("--edge-set", s.Name, s.Mask)
	}
	for _, s := range a.VertexSets {
		f.add("--vertex-set", s.Name, s.Mask)
	}
	return abaqusArgv(command, scriptDir, "sets.py", f)
}

// AbaqusMesh returns the command line of the mesh journal.
func AbaqusMesh(command, scriptDir string, a MeshArgs) []string {
	var f flags
	f.add("--input-file", a.InputFile)
	f.add("--element-type", a.ElementType)
	f.addIf(a.OutputFile != "", "--output-file", a.OutputFile)
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartName)
	f.add("--global-seed", num(a.GlobalSeed))
	for _, s := range a.EdgeSeeds {
		f.add("--edge-seed", s.Name, num(s.Value))
	}
	return abaqusArgv(command, scriptDir, "mesh_module.py", f)
}

// AbaqusMerge returns the command line of the merge journal.
func AbaqusMerge(command, scriptDir string, a MergeArgs) []string {
	var f flags
	f.add("--input-file", a.InputFiles...)
	f.add("--output-file", a.OutputFile)
	f.add("--merged-model-name", a.MergedModelName)
	f.addIf(len(a.ModelNames) > 0, "--model-name", a.ModelNames...)
	f.addIf(len(a.PartNames) > 0, "--part-name", a.PartNames...)
	return abaqusArgv(command, scriptDir, "merge.py", f)
}

// AbaqusExport returns the command line of the export journal.
func AbaqusExport(command, scriptDir string, a ExportArgs) []string {
	var f flags
	f.add("--input-file", a.InputFile)
	f.add("--model-name", a.ModelName)
	f.add("--part-name", a.PartNames...)
	f.addIf(len(a.ElementTypes) > 0, "--element-type", a.ElementTypes...)
	f.add("--destination", a.Destination)
	f.addIf(a.Assembly != "", "--assembly", a.Assembly)
	return abaqusArgv(command, scriptDir, "export.py", f)
}

// AbaqusImage returns the command line of the image journal.
func AbaqusImage(command, scriptDir string, a ImageArgs) []string {
	var f flags
	f.add("--input-file", a.InputFile)
	f.add("--output-file", a.OutputFile)
	f.add("--x-angle", num(a.XAngle))
	f.add("--y-angle", num(a.YAngle))
	f.add("--z-angle", num(a.ZAngle))
	f.add("--image-size", strconv.Itoa(a.ImageSize[0]), strconv.Itoa(a.ImageSize[1]))
	f.add("--model-name", a.ModelName)
	f.addIf(a.PartName != "", "--part-name", a.PartName)
	f.add("--color-map", a.ColorMap)
	return abaqusArgv(command, scriptDir, "image.py", f)
}
