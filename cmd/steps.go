package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/external"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

// stepOutput returns the --output-file value. Without one, the external
// back ends update the input model in place and sdfx writes an orphan mesh
// next to the recipe.
func stepOutput(flag, input string) string {
	switch {
	case flag != "":
		return flag
	case isExternal():
		return input
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".inp"
}

// ---------------------------------------------------------------------------
// partition
// ---------------------------------------------------------------------------

var partitionFlags struct {
	input, output, model string
	parts                []string
	center, x, z         []float64
	bigNumber            float64
}

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition parts into the turtle-shell pattern",
	Long: `Cuts parts with the planes of a cube centered on --center: the three
local coordinate planes and six diagonal planes through the cube edges.
--xvector and --zvector orient the cube and must be orthogonal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := partitionFlags
		center, err := vec3("center", f.center)
		if err != nil {
			return err
		}
		x, err := vec3("xvector", f.x)
		if err != nil {
			return err
		}
		z, err := vec3("zvector", f.z)
		if err != nil {
			return err
		}
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Partition(cmd.Context(), external.PartitionArgs{
				InputFile:  f.input,
				OutputFile: stepOutput(f.output, f.input),
				Center:     array3(center),
				XVector:    array3(x),
				ZVector:    array3(z),
				ModelName:  f.model,
				PartNames:  f.parts,
				BigNumber:  f.bigNumber,
			})
		}
		p, parts, err := recipeParts(f.input, f.parts)
		if err != nil {
			return err
		}
		for _, part := range parts {
			addStep(p, plan.NodePartition, part, plan.PartitionData{
				Center: center, XVector: x, ZVector: z, BigNumber: f.bigNumber,
			})
			addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: stepOutput(f.output, f.input)})
		}
		return runPlan(cmd, p)
	},
}

// recipeParts loads a recipe and selects the named parts.
func recipeParts(path string, names []string) (*plan.Plan, []*plan.Node, error) {
	p, err := loadRecipe(path)
	if err != nil {
		return nil, nil, err
	}
	parts, err := selectParts(p, names)
	if err != nil {
		return nil, nil, err
	}
	return p, parts, nil
}

// ---------------------------------------------------------------------------
// sets
// ---------------------------------------------------------------------------

var setsFlags struct {
	input, output, model, part string
	faceSets, edgeSets         []string
	vertexSets, nodeSets       []string
	tolerance                  float64
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Create named sets",
	Long: `Creates named sets on a part. The abaqus back end takes face, edge and
vertex sets as NAME=MASK pairs. The sdfx back end takes node sets as
NAME=x,y,z:nx,ny,nz selecting the mesh nodes on a plane, or NAME=x,y,z
selecting the node nearest to a point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := setsFlags
		if isExternal() {
			if len(f.nodeSets) > 0 {
				return errors.New("--node-set requires --backend sdfx")
			}
			faces, err := masks("face-set", f.faceSets)
			if err != nil {
				return err
			}
			edges, err := masks("edge-set", f.edgeSets)
			if err != nil {
				return err
			}
			vertices, err := masks("vertex-set", f.vertexSets)
			if err != nil {
				return err
			}
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Sets(cmd.Context(), external.SetsArgs{
				InputFile:  f.input,
				OutputFile: stepOutput(f.output, f.input),
				ModelName:  f.model,
				PartName:   f.part,
				FaceSets:   faces,
				EdgeSets:   edges,
				VertexSets: vertices,
			})
		}
		if len(f.faceSets)+len(f.edgeSets)+len(f.vertexSets) > 0 {
			return errors.New("face, edge and vertex masks require --backend abaqus")
		}
		sets, err := nodeSets(f.nodeSets, f.tolerance)
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			return errors.New("no sets given")
		}
		p, parts, err := recipeParts(f.input, partList(f.part))
		if err != nil {
			return err
		}
		for _, part := range parts {
			for _, s := range sets {
				addStep(p, plan.NodeSets, part, s)
			}
			addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: stepOutput(f.output, f.input)})
		}
		return runPlan(cmd, p)
	},
}

func partList(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}

func masks(flag string, values []string) ([]external.NamedMask, error) {
	kv, err := pairs(flag, values)
	if err != nil {
		return nil, err
	}
	out := make([]external.NamedMask, len(kv))
	for i, p := range kv {
		out[i] = external.NamedMask{Name: p[0], Mask: p[1]}
	}
	return out, nil
}

// nodeSets parses NAME=x,y,z[:nx,ny,nz] values.
func nodeSets(values []string, tolerance float64) ([]plan.NodeSetData, error) {
	kv, err := pairs("node-set", values)
	if err != nil {
		return nil, err
	}
	out := make([]plan.NodeSetData, len(kv))
	for i, p := range kv {
		point, normal, hasNormal := strings.Cut(p[1], ":")
		d := plan.NodeSetData{Name: p[0], Tolerance: tolerance}
		if d.Point, err = parseVec(point); err != nil {
			return nil, fmt.Errorf("--node-set %s: point: %w", p[0], err)
		}
		if hasNormal {
			if d.Normal, err = parseVec(normal); err != nil {
				return nil, fmt.Errorf("--node-set %s: normal: %w", p[0], err)
			}
		}
		out[i] = d
	}
	return out, nil
}

func parseVec(s string) (r3.Vec, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return r3.Vec{}, err
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// ---------------------------------------------------------------------------
// mesh
// ---------------------------------------------------------------------------

var meshFlags struct {
	input, output, model, part, elementType string
	globalSeed                              float64
	edgeSeeds                               []string
}

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Mesh parts with a global seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := meshFlags
		if isExternal() {
			seeds, err := edgeSeeds(f.edgeSeeds)
			if err != nil {
				return err
			}
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Mesh(cmd.Context(), external.MeshArgs{
				InputFile:   f.input,
				ElementType: f.elementType,
				OutputFile:  stepOutput(f.output, f.input),
				ModelName:   f.model,
				PartName:    f.part,
				GlobalSeed:  f.globalSeed,
				EdgeSeeds:   seeds,
			})
		}
		if len(f.edgeSeeds) > 0 {
			return errors.New("--edge-seed requires --backend abaqus")
		}
		p, parts, err := recipeParts(f.input, partList(f.part))
		if err != nil {
			return err
		}
		for _, part := range parts {
			addStep(p, plan.NodeMesh, part, plan.MeshData{GlobalSeed: f.globalSeed, ElementType: f.elementType})
			addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: stepOutput(f.output, f.input)})
		}
		return runPlan(cmd, p)
	},
}

func edgeSeeds(values []string) ([]external.EdgeSeed, error) {
	kv, err := pairs("edge-seed", values)
	if err != nil {
		return nil, err
	}
	out := make([]external.EdgeSeed, len(kv))
	for i, p := range kv {
		v, err := strconv.ParseFloat(p[1], 64)
		if err != nil {
			return nil, fmt.Errorf("--edge-seed %s: %w", p[0], err)
		}
		out[i] = external.EdgeSeed{Name: p[0], Value: v}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// image
// ---------------------------------------------------------------------------

var imageFlags struct {
	input, output, model, part, colorMap string
	xAngle, yAngle, zAngle               float64
	size                                 []int
}

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Render an image of a part",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := imageFlags
		if len(f.size) != 2 {
			return fmt.Errorf("--image-size needs 2 values, got %d", len(f.size))
		}
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Image(cmd.Context(), external.ImageArgs{
				InputFile:  f.input,
				OutputFile: f.output,
				XAngle:     f.xAngle,
				YAngle:     f.yAngle,
				ZAngle:     f.zAngle,
				ImageSize:  [2]int{f.size[0], f.size[1]},
				ModelName:  f.model,
				PartName:   f.part,
				ColorMap:   f.colorMap,
			})
		}
		p, parts, err := recipeParts(f.input, partList(f.part))
		if err != nil {
			return err
		}
		addStep(p, plan.NodeImage, parts[0], plan.ImageData{
			OutputFile: f.output,
			XAngle:     f.xAngle,
			YAngle:     f.yAngle,
			ZAngle:     f.zAngle,
			Width:      f.size[0],
			Height:     f.size[1],
		})
		return runPlan(cmd, p)
	},
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

var exportFlags struct {
	input, model, destination, assembly string
	parts, elementTypes                 []string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orphan mesh input files",
	Long: `Writes each part's mesh as an Abaqus orphan mesh file <part>.inp in
--destination. With --assembly the parts share that file and it carries
an assembly block instancing every part.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := exportFlags
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Export(cmd.Context(), external.ExportArgs{
				InputFile:    f.input,
				ModelName:    f.model,
				PartNames:    f.parts,
				ElementTypes: f.elementTypes,
				Destination:  f.destination,
				Assembly:     f.assembly,
			})
		}
		p, parts, err := recipeParts(f.input, f.parts)
		if err != nil {
			return err
		}
		types, err := coords.ElementTypes(len(parts), f.elementTypes)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("model-name") {
			p.Defaults.ModelName = f.model
		}
		for i, part := range parts {
			d := plan.ExportData{
				OutputFile:  filepath.Join(f.destination, part.Name+".inp"),
				ElementType: types[i],
			}
			if f.assembly != "" {
				d.OutputFile = filepath.Join(f.destination, f.assembly)
				d.Assembly = true
			}
			addStep(p, plan.NodeExport, part, d)
		}
		return runPlan(cmd, p)
	},
}

// ---------------------------------------------------------------------------
// merge
// ---------------------------------------------------------------------------

var mergeFlags struct {
	inputs, models, parts []string
	output, mergedModel   string
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge parts from several models into one",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := mergeFlags
		if isExternal() {
			d, err := dispatcher()
			if err != nil {
				return err
			}
			return d.Merge(cmd.Context(), external.MergeArgs{
				InputFiles:      f.inputs,
				OutputFile:      f.output,
				MergedModelName: f.mergedModel,
				ModelNames:      f.models,
				PartNames:       f.parts,
			})
		}
		p, err := mergeRecipes(f.inputs)
		if err != nil {
			return err
		}
		p.Defaults.ModelName = f.mergedModel
		parts, err := selectParts(p, f.parts)
		if err != nil {
			return err
		}
		for _, part := range parts {
			addStep(p, plan.NodeExport, part, plan.ExportData{OutputFile: f.output, Assembly: true})
		}
		return runPlan(cmd, p)
	},
}

// mergeRecipes evaluates every recipe into one plan.
func mergeRecipes(paths []string) (*plan.Plan, error) {
	merged := plan.New()
	for _, path := range paths {
		p, err := loadRecipe(path)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return merged, nil
}

func init() {
	rootCmd.AddCommand(partitionCmd, setsCmd, meshCmd, imageCmd, exportCmd, mergeCmd)

	f := partitionCmd.Flags()
	f.StringVar(&partitionFlags.input, "input-file", "", "Model or recipe file (required)")
	f.StringVar(&partitionFlags.output, "output-file", "", "Output file (default: the input file, or <input>.inp for sdfx)")
	f.StringVar(&partitionFlags.model, "model-name", plan.DefaultModelName, "Model name")
	f.StringSliceVar(&partitionFlags.parts, "part-name", nil, "Parts to partition (default: all)")
	f.Float64SliceVar(&partitionFlags.center, "center", []float64{0, 0, 0}, "Partition center")
	f.Float64SliceVar(&partitionFlags.x, "xvector", []float64{1, 0, 0}, "Local x axis")
	f.Float64SliceVar(&partitionFlags.z, "zvector", []float64{0, 0, 1}, "Local z axis")
	f.Float64Var(&partitionFlags.bigNumber, "big-number", plan.DefaultBigNumber, "Size of the cutting planes")
	partitionCmd.MarkFlagRequired("input-file")

	f = setsCmd.Flags()
	f.StringVar(&setsFlags.input, "input-file", "", "Model or recipe file (required)")
	f.StringVar(&setsFlags.output, "output-file", "", "Output file (default: the input file, or <input>.inp for sdfx)")
	f.StringVar(&setsFlags.model, "model-name", plan.DefaultModelName, "Model name")
	f.StringVar(&setsFlags.part, "part-name", "", "Part name (default: every part for sdfx)")
	f.StringArrayVar(&setsFlags.faceSets, "face-set", nil, "Face set as NAME=MASK")
	f.StringArrayVar(&setsFlags.edgeSets, "edge-set", nil, "Edge set as NAME=MASK")
	f.StringArrayVar(&setsFlags.vertexSets, "vertex-set", nil, "Vertex set as NAME=MASK")
	f.StringArrayVar(&setsFlags.nodeSets, "node-set", nil, "Node set as NAME=x,y,z[:nx,ny,nz]")
	f.Float64Var(&setsFlags.tolerance, "set-tolerance", plan.DefaultSetTolerance, "Distance tolerance of node sets")
	setsCmd.MarkFlagRequired("input-file")

	f = meshCmd.Flags()
	f.StringVar(&meshFlags.input, "input-file", "", "Model or recipe file (required)")
	f.StringVar(&meshFlags.output, "output-file", "", "Output file (default: the input file, or <input>.inp for sdfx)")
	f.StringVar(&meshFlags.model, "model-name", plan.DefaultModelName, "Model name")
	f.StringVar(&meshFlags.part, "part-name", "", "Part name (default: every part for sdfx)")
	f.StringVar(&meshFlags.elementType, "element-type", "", "Element type (required for abaqus)")
	f.Float64Var(&meshFlags.globalSeed, "global-seed", plan.DefaultGlobalSeed, "Global mesh seed")
	f.StringArrayVar(&meshFlags.edgeSeeds, "edge-seed", nil, "Edge seed as NAME=VALUE")
	meshCmd.MarkFlagRequired("input-file")

	f = imageCmd.Flags()
	f.StringVar(&imageFlags.input, "input-file", "", "Model or recipe file (required)")
	f.StringVar(&imageFlags.output, "output-file", "", "Image file (required)")
	f.StringVar(&imageFlags.model, "model-name", plan.DefaultModelName, "Model name")
	f.StringVar(&imageFlags.part, "part-name", "", "Part to render (default: the first part)")
	f.Float64Var(&imageFlags.xAngle, "x-angle", 0, "Rotation about X in degrees")
	f.Float64Var(&imageFlags.yAngle, "y-angle", 0, "Rotation about Y in degrees")
	f.Float64Var(&imageFlags.zAngle, "z-angle", 0, "Rotation about Z in degrees")
	f.IntSliceVar(&imageFlags.size, "image-size", []int{plan.DefaultImageWidth, plan.DefaultImageHeight}, "Image width and height in pixels")
	f.StringVar(&imageFlags.colorMap, "color-map", "MATERIAL", "Abaqus color map")
	imageCmd.MarkFlagRequired("input-file")
	imageCmd.MarkFlagRequired("output-file")

	f = exportCmd.Flags()
	f.StringVar(&exportFlags.input, "input-file", "", "Model or recipe file (required)")
	f.StringVar(&exportFlags.model, "model-name", plan.DefaultModelName, "Model name")
	f.StringSliceVar(&exportFlags.parts, "part-name", nil, "Parts to export (default: all)")
	f.StringSliceVar(&exportFlags.elementTypes, "element-type", nil, "Element types, one for all parts or one per part")
	f.StringVar(&exportFlags.destination, "destination", ".", "Output directory")
	f.StringVar(&exportFlags.assembly, "assembly", "", "Assembly file shared by every part")
	exportCmd.MarkFlagRequired("input-file")

	f = mergeCmd.Flags()
	f.StringSliceVar(&mergeFlags.inputs, "input-file", nil, "Models or recipes to merge (required)")
	f.StringVar(&mergeFlags.output, "output-file", "", "Merged output file (required)")
	f.StringVar(&mergeFlags.mergedModel, "merged-model-name", plan.DefaultModelName, "Model name of the merged model")
	f.StringSliceVar(&mergeFlags.models, "model-name", nil, "Models to merge from (abaqus)")
	f.StringSliceVar(&mergeFlags.parts, "part-name", nil, "Parts to merge (default: all)")
	mergeCmd.MarkFlagRequired("input-file")
	mergeCmd.MarkFlagRequired("output-file")
}
