package cmd

import (
	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/external"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/spf13/cobra"
)

// primitiveFlags are shared by cylinder and sphere.
type primitiveFlags struct {
	inner, outer float64
	output       string
	model        string
	part         string
	angle        float64
	yOffset      float64
}

func (f *primitiveFlags) bind(c *cobra.Command, part string) {
	fl := c.Flags()
	fl.Float64Var(&f.inner, "inner-radius", 0, "Inner radius (required)")
	fl.Float64Var(&f.outer, "outer-radius", 0, "Outer radius (required)")
	fl.StringVar(&f.output, "output-file", "", "Output file (default "+c.Name()+".inp, or "+c.Name()+".cae for abaqus)")
	fl.StringVar(&f.model, "model-name", plan.DefaultModelName, "Model name")
	fl.StringVar(&f.part, "part-name", part, "Part name")
	fl.Float64Var(&f.angle, "revolution-angle", plan.DefaultRevolutionAngle, "Revolution angle in degrees (0 for an axisymmetric part)")
	fl.Float64Var(&f.yOffset, "y-offset", coords.DefaultYOffset, "Offset along the revolution axis")
	c.MarkFlagRequired("inner-radius")
	c.MarkFlagRequired("outer-radius")
}

var (
	cylinderFlags  primitiveFlags
	cylinderHeight float64
)

var cylinderCmd = &cobra.Command{
	Use:   "cylinder",
	Short: "Create a hollow cylinder",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cylinderFlags
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Cylinder(cmd.Context(), external.CylinderArgs{
				InnerRadius:     f.inner,
				OuterRadius:     f.outer,
				Height:          cylinderHeight,
				OutputFile:      outputFile(f.output, "cylinder"),
				ModelName:       f.model,
				PartName:        f.part,
				RevolutionAngle: f.angle,
				YOffset:         f.yOffset,
			})
		}
		p := plan.New()
		p.Defaults.ModelName = f.model
		part := addPart(p, plan.NodeCylinder, f.part, plan.CylinderData{
			InnerRadius:     f.inner,
			OuterRadius:     f.outer,
			Height:          cylinderHeight,
			RevolutionAngle: f.angle,
			YOffset:         f.yOffset,
		})
		addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: outputFile(f.output, "cylinder")})
		return runPlan(cmd, p)
	},
}

var (
	sphereFlags    primitiveFlags
	sphereInput    string
	sphereQuadrant string
)

var sphereCmd = &cobra.Command{
	Use:   "sphere",
	Short: "Create a hollow sphere",
	Long: `Creates a hollow sphere, or its upper or lower half with --quadrant.
With --input-file the sphere is added to an existing model: a CAE
database for abaqus, or a recipe for sdfx.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := sphereFlags
		q, err := coords.ParseQuadrant(sphereQuadrant)
		if err != nil {
			return err
		}
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Sphere(cmd.Context(), external.SphereArgs{
				InnerRadius:     f.inner,
				OuterRadius:     f.outer,
				OutputFile:      outputFile(f.output, "sphere"),
				InputFile:       sphereInput,
				Quadrant:        string(q),
				RevolutionAngle: f.angle,
				YOffset:         f.yOffset,
				ModelName:       f.model,
				PartName:        f.part,
			})
		}
		p := plan.New()
		if sphereInput != "" {
			if p, err = loadRecipe(sphereInput); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("model-name") || sphereInput == "" {
			p.Defaults.ModelName = f.model
		}
		part := addPart(p, plan.NodeSphere, f.part, plan.SphereData{
			InnerRadius:     f.inner,
			OuterRadius:     f.outer,
			Quadrant:        q,
			RevolutionAngle: f.angle,
			YOffset:         f.yOffset,
		})
		addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: outputFile(f.output, "sphere")})
		return runPlan(cmd, p)
	},
}

func init() {
	rootCmd.AddCommand(cylinderCmd, sphereCmd)
	cylinderFlags.bind(cylinderCmd, "cylinder")
	cylinderCmd.Flags().Float64Var(&cylinderHeight, "height", 0, "Cylinder height (required)")
	cylinderCmd.MarkFlagRequired("height")

	sphereFlags.bind(sphereCmd, "sphere")
	sphereCmd.Flags().StringVar(&sphereInput, "input-file", "", "Existing model to add the sphere to")
	sphereCmd.Flags().StringVar(&sphereQuadrant, "quadrant", string(coords.QuadrantBoth), "Sphere portion: both, upper or lower")
}
