package cmd

import (
	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/external"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/spf13/cobra"
)

// sketchFlags are shared by geometry and geometry-xyplot.
type sketchFlags struct {
	inputFiles        []string
	partNames         []string
	unitConversion    float64
	euclideanDistance float64
	delimiter         string
	headerLines       int
	yOffset           float64
	rtol, atol        float64
}

func (f *sketchFlags) bind(c *cobra.Command) {
	fl := c.Flags()
	fl.StringSliceVar(&f.inputFiles, "input-file", nil, "Coordinate files with (r, z) pairs (required)")
	fl.StringSliceVar(&f.partNames, "part-name", nil, "Part names, one per input file (default: file base names)")
	fl.Float64Var(&f.unitConversion, "unit-conversion", coords.DefaultUnitConversion, "Multiplier applied to every coordinate")
	fl.Float64Var(&f.euclideanDistance, "euclidean-distance", segment.DefaultEuclideanDistance, "Neighbour distance that starts a straight line")
	fl.StringVar(&f.delimiter, "delimiter", coords.DefaultDelimiter, "Column delimiter of the input files")
	fl.IntVar(&f.headerLines, "header-lines", coords.DefaultHeaderLines, "Header rows to skip")
	fl.Float64Var(&f.yOffset, "y-offset", coords.DefaultYOffset, "Offset along the revolution axis")
	fl.Float64Var(&f.rtol, "rtol", 0, "Relative tolerance of the alignment check (0 for the default)")
	fl.Float64Var(&f.atol, "atol", 0, "Absolute tolerance of the alignment check (0 for the default)")
	c.MarkFlagRequired("input-file")
}

func (f *sketchFlags) tolerance() segment.Tolerance {
	return segment.Tolerance{Rtol: f.rtol, Atol: f.atol}
}

func (f *sketchFlags) readOptions() coords.ReadOptions {
	return coords.ReadOptions{Delimiter: f.delimiter, HeaderLines: f.headerLines}
}

var (
	geometryFlags  sketchFlags
	geometryOut    string
	geometryModel  string
	geometryPlanar bool
	geometryAngle  float64
)

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Create parts from coordinate files",
	Long: `Reads (r, z) coordinate files and draws one part per file. Runs of
points closer than --euclidean-distance become splines; longer jumps and
axis aligned steps become straight lines. The sketch is revolved about
the Y axis, or kept planar with --planar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := coords.PartNames(geometryFlags.inputFiles, geometryFlags.partNames)
		if err != nil {
			return err
		}
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			f := geometryFlags
			return d.Geometry(cmd.Context(), external.GeometryArgs{
				InputFiles:        f.inputFiles,
				OutputFile:        outputFile(geometryOut, "geometry"),
				UnitConversion:    f.unitConversion,
				EuclideanDistance: f.euclideanDistance,
				Planar:            geometryPlanar,
				ModelName:         geometryModel,
				PartNames:         names,
				Delimiter:         f.delimiter,
				HeaderLines:       f.headerLines,
				RevolutionAngle:   geometryAngle,
				YOffset:           f.yOffset,
				Rtol:              f.rtol,
				Atol:              f.atol,
			})
		}
		return runPlan(cmd, geometryPlan(names))
	},
}

func geometryPlan(names []string) *plan.Plan {
	f := geometryFlags
	p := plan.New()
	p.Defaults.ModelName = geometryModel
	out := outputFile(geometryOut, "geometry")
	for i, file := range f.inputFiles {
		d := plan.NewGeometryData()
		d.InputFile = file
		d.Read = f.readOptions()
		d.UnitConversion = f.unitConversion
		d.EuclideanDistance = f.euclideanDistance
		d.Tolerance = f.tolerance()
		d.Planar = geometryPlanar
		d.RevolutionAngle = geometryAngle
		d.YOffset = f.yOffset
		part := addPart(p, plan.NodeGeometry, names[i], d)
		addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: out})
	}
	return p
}

// outputFile returns the --output-file value, or the default for the
// selected back end: a CAE database for Abaqus and an orphan mesh for sdfx.
func outputFile(flag, command string) string {
	switch {
	case flag != "":
		return flag
	case isExternal():
		return command + ".cae"
	}
	return command + ".inp"
}

func init() {
	rootCmd.AddCommand(geometryCmd)
	geometryFlags.bind(geometryCmd)
	f := geometryCmd.Flags()
	f.StringVar(&geometryOut, "output-file", "", "Output file (default geometry.inp, or geometry.cae for abaqus)")
	f.StringVar(&geometryModel, "model-name", plan.DefaultModelName, "Model name")
	f.BoolVar(&geometryPlanar, "planar", false, "Keep the sketch planar instead of revolving it")
	f.Float64Var(&geometryAngle, "revolution-angle", plan.DefaultRevolutionAngle, "Revolution angle in degrees (0 for an axisymmetric part)")
}
