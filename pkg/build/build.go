// Package build runs a plan against a geometry kernel. Parts are built in
// declaration order and their steps applied in order; a part that fails is
// reported and the remaining parts continue.
package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/export"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'turtle.build'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.build")
}

// Default element types by part dimension.
const (
	ElementShell        = "S3R"
	ElementAxisymmetric = "CAX3"
	ElementPlaneStress  = "CPS3"
)

// ErrInvalidPlan is returned when plan validation reports errors.
var ErrInvalidPlan = errors.New("build: plan is not valid")

// Options configures a build.
type Options struct {
	// BaseDir resolves relative input and output paths. Empty means the
	// working directory.
	BaseDir string
	Sketch  kernel.SketchOptions
	// WeldTolerance merges coincident mesh vertices on export.
	WeldTolerance float64
}

func (o Options) path(p string) string {
	if p == "" || filepath.IsAbs(p) || o.BaseDir == "" {
		return p
	}
	return filepath.Join(o.BaseDir, p)
}

// PartResult is the outcome of building one part.
type PartResult struct {
	Name string
	// Source names the input file, or the primitive the part was drawn from.
	Source      string
	Solid       kernel.Solid
	Mesh        *kernel.Mesh
	Cuts        kernel.CutReport
	NodeSets    []export.NodeSet
	ElementType string
	Outputs     []string
	Err         error

	seed       float64
	dimension  string // default element type for the part shape
	meshedWith string // element type from the last mesh step
}

// Result collects the part results of a build in plan order.
type Result struct {
	Parts []*PartResult
	// Outputs lists every file written, in write order.
	Outputs []string
}

// Failed returns the parts that did not build.
func (r *Result) Failed() []*PartResult {
	var out []*PartResult
	for _, p := range r.Parts {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Err joins the part failures, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Failed() {
		errs = append(errs, p.Err)
	}
	return errors.Join(errs...)
}

// Part returns the result for the named part, or nil.
func (r *Result) Part(name string) *PartResult {
	for _, p := range r.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Run builds every part of p. The returned error is reserved for failures
// that stop the whole build: an invalid plan or a cancelled context. Part
// failures are reported in the result.
func Run(ctx context.Context, p *plan.Plan, k kernel.Kernel, opts Options) (*Result, error) {
	res := plan.ValidateAll(p)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(toErrors(res.Errors)...))
	}
	for _, w := range res.Warnings {
		tracer().Infof("plan: %v", w)
	}

	r := &Result{}
	exports := newExportGroups()
	for _, part := range p.Parts() {
		if err := ctx.Err(); err != nil {
			return r, fmt.Errorf("build: %w", err)
		}
		pr := &PartResult{Name: part.Name, seed: p.Defaults.GlobalSeed}
		r.Parts = append(r.Parts, pr)

		b := &builder{k: k, opts: opts, pr: pr}
		if err := b.part(part); err != nil {
			pr.Err = fmt.Errorf("failed to build part %s from %s: %w", pr.Name, pr.Source, err)
			tracer().Errorf("%v", pr.Err)
			continue
		}
		for _, step := range p.StepsFor(part.ID) {
			if err := ctx.Err(); err != nil {
				return r, fmt.Errorf("build: %w", err)
			}
			if err := b.step(step, exports); err != nil {
				pr.Err = fmt.Errorf("part %s: %s step: %w", pr.Name, step.Kind, err)
				tracer().Errorf("%v", pr.Err)
				break
			}
		}
		if pr.Err == nil {
			tracer().Infof("built part %s: %d regions", pr.Name, pr.Solid.Regions())
		}
	}

	r.Outputs = append(r.Outputs, exports.write(opts, p.Defaults.ModelName)...)
	for _, pr := range r.Parts {
		r.Outputs = append(r.Outputs, pr.Outputs...)
	}
	return r, nil
}

func toErrors(findings []plan.ValidationError) []error {
	errs := make([]error, len(findings))
	for i, f := range findings {
		errs[i] = f
	}
	return errs
}

// builder applies the nodes of one part.
type builder struct {
	k    kernel.Kernel
	opts Options
	pr   *PartResult
}

// part creates the part solid.
func (b *builder) part(n *plan.Node) error {
	switch d := n.Data.(type) {
	case plan.GeometryData:
		return b.geometry(d)
	case plan.CylinderData:
		b.pr.Source = "cylinder"
		pts, err := coords.Cylinder(d.InnerRadius, d.OuterRadius, d.Height)
		if err != nil {
			return err
		}
		pts = coords.ScaleAndOffset(pts, coords.DefaultUnitConversion, d.YOffset)
		lines, splines, err := segment.LinesAndSplines(pts, segment.DefaultEuclideanDistance, segment.DefaultTolerance())
		if err != nil {
			return err
		}
		profile, err := kernel.Sketch(lines, splines, nil, b.opts.Sketch)
		if err != nil {
			return err
		}
		return b.revolve(profile, d.RevolutionAngle)
	case plan.SphereData:
		b.pr.Source = "sphere"
		center := segment.Point{X: 0, Y: d.YOffset}
		arcs, err := coords.SphereArcPoints(center, d.InnerRadius, d.OuterRadius, d.Quadrant)
		if err != nil {
			return err
		}
		lines, arcList := arcs.Sketch()
		profile, err := kernel.Sketch(lines, nil, arcList, b.opts.Sketch)
		if err != nil {
			return err
		}
		return b.revolve(profile, d.RevolutionAngle)
	}
	return fmt.Errorf("unsupported part data %T", n.Data)
}

func (b *builder) geometry(d plan.GeometryData) error {
	pts := d.Points
	b.pr.Source = "inline points"
	if d.InputFile != "" {
		b.pr.Source = d.InputFile
		var err error
		if pts, err = coords.ReadFile(b.opts.path(d.InputFile), d.Read); err != nil {
			return err
		}
	}
	pts = coords.ScaleAndOffset(pts, d.UnitConversion, d.YOffset)
	lines, splines, err := segment.LinesAndSplines(pts, d.EuclideanDistance, d.Tolerance)
	if err != nil {
		return err
	}
	profile, err := kernel.Sketch(lines, splines, nil, b.opts.Sketch)
	if err != nil {
		return err
	}
	if d.Planar {
		b.pr.dimension = ElementPlaneStress
		b.pr.Solid, err = b.k.Planar(profile)
		return err
	}
	return b.revolve(profile, d.RevolutionAngle)
}

func (b *builder) revolve(profile *kernel.Profile, angle float64) error {
	b.pr.dimension = ElementShell
	if angle == 0 {
		b.pr.dimension = ElementAxisymmetric
	}
	s, err := b.k.Revolve(profile, angle)
	if err != nil {
		return err
	}
	b.pr.Solid = s
	return nil
}

// step applies one step node to the part.
func (b *builder) step(n *plan.Node, exports *exportGroups) error {
	switch d := n.Data.(type) {
	case plan.PartitionData:
		return b.partition(d)
	case plan.NodeSetData:
		b.pr.NodeSets = append(b.pr.NodeSets, export.NodeSet{
			Name: d.Name, Point: d.Point, Normal: d.Normal, Tolerance: d.Tolerance,
		})
		return nil
	case plan.MeshData:
		b.pr.seed = d.GlobalSeed
		b.pr.meshedWith = d.ElementType
		b.pr.Mesh = nil
		return b.mesh()
	case plan.ExportData:
		if err := b.mesh(); err != nil {
			return err
		}
		b.pr.ElementType = b.elementType(d.ElementType)
		exports.add(b.opts.path(d.OutputFile), d.Assembly, b.pr)
		return nil
	case plan.ImageData:
		return b.image(d)
	}
	return fmt.Errorf("unsupported step data %T", n.Data)
}

// mesh meshes the current solid unless a mesh is already up to date.
func (b *builder) mesh() error {
	if b.pr.Mesh != nil {
		return nil
	}
	m, err := b.k.ToMesh(b.pr.Solid, b.pr.seed)
	if err != nil {
		return err
	}
	m.PartName = b.pr.Name
	b.pr.Mesh = m
	tracer().Debugf("meshed part %s: %d triangles", b.pr.Name, m.TriangleCount())
	return nil
}

// elementType resolves the element type of an export: the export's own,
// then the last mesh step's, then the default for the part shape.
func (b *builder) elementType(override string) string {
	switch {
	case override != "":
		return override
	case b.pr.meshedWith != "":
		return b.pr.meshedWith
	}
	return b.pr.dimension
}
