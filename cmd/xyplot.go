package cmd

import (
	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/render"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/spf13/cobra"
)

var (
	xyplotFlags sketchFlags
	xyplotOut   string
	xyplotOpts  render.PlotOptions
)

var xyplotCmd = &cobra.Command{
	Use:   "geometry-xyplot",
	Short: "Plot the lines and splines drawn from coordinate files",
	Long: `Plots the sketch primitives the geometry command would draw: straight
lines solid, splines dashed. Useful to tune --euclidean-distance before
building parts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := plotParts(xyplotFlags)
		if err != nil {
			return err
		}
		return render.XYPlot(xyplotOut, parts, xyplotOpts)
	},
}

// plotParts reads and segments every input file.
func plotParts(f sketchFlags) ([]render.PlotPart, error) {
	names, err := coords.PartNames(f.inputFiles, f.partNames)
	if err != nil {
		return nil, err
	}
	parts := make([]render.PlotPart, len(f.inputFiles))
	for i, file := range f.inputFiles {
		pts, err := coords.ReadFile(file, f.readOptions())
		if err != nil {
			return nil, err
		}
		pts = coords.ScaleAndOffset(pts, f.unitConversion, f.yOffset)
		lines, splines, err := segment.LinesAndSplines(pts, f.euclideanDistance, f.tolerance())
		if err != nil {
			return nil, err
		}
		parts[i] = render.PlotPart{Name: names[i], Coordinates: pts, Lines: lines, Splines: splines}
	}
	return parts, nil
}

func init() {
	rootCmd.AddCommand(xyplotCmd)
	xyplotFlags.bind(xyplotCmd)
	f := xyplotCmd.Flags()
	f.StringVar(&xyplotOut, "output-file", "geometry-xyplot.png", "Plot file; the format follows the extension")
	f.BoolVar(&xyplotOpts.NoMarkers, "no-markers", false, "Draw lines without point markers")
	f.BoolVar(&xyplotOpts.Annotate, "annotate", false, "Label every coordinate with its index")
	f.BoolVar(&xyplotOpts.Scale, "scale", false, "Use equal scales for both axes")
}
