package recipe

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a plan.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   plan.NodeID
	name string // part name for messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(part %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns its
// name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// floatKW sets *dst from keyword name when present.
func (a kwArgs) floatKW(name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, name, err)
	}
	*dst = f
	return nil
}

// intKW sets *dst from keyword name when present.
func (a kwArgs) intKW(name string, dst *int) error {
	var f float64
	if _, ok := a.kw[name]; !ok {
		return nil
	}
	if err := a.floatKW(name, &f); err != nil {
		return err
	}
	if f != float64(int(f)) {
		return fmt.Errorf("%s: %s: expected integer, got %g", a.fn, name, f)
	}
	*dst = int(f)
	return nil
}

// stringKW sets *dst from keyword name when present. Keywords are accepted
// as strings, so :quadrant :upper and :quadrant "upper" are equivalent.
func (a kwArgs) stringKW(name string, dst *string) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, name, err)
	}
	*dst = s
	return nil
}

// boolKW sets *dst from keyword name when present. A trailing keyword with
// no value counts as true.
func (a kwArgs) boolKW(name string, dst *bool) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case *zygo.SexpBool:
		*dst = b.Val
		return nil
	case *zygo.SexpSentinel:
		if b == zygo.SexpNull {
			*dst = true
			return nil
		}
	}
	return fmt.Errorf("%s: %s: expected true or false, got %s", a.fn, name, v.SexpString(nil))
}

// vecKW sets *dst from keyword name when present.
func (a kwArgs) vecKW(name string, dst *r3.Vec) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, name, err)
	}
	*dst = vec
	return nil
}

// first returns the first error of errs.
func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints reads a flat list of x y pairs.
func toPoints(s zygo.Sexp) ([]segment.Point, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("expected x y pairs, got %d numbers", len(items))
	}
	pts := make([]segment.Point, 0, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		x, err := toFloat64(items[i])
		if err != nil {
			return nil, err
		}
		y, err := toFloat64(items[i+1])
		if err != nil {
			return nil, err
		}
		pts = append(pts, segment.Point{X: x, Y: y})
	}
	return pts, nil
}

// ---------------------------------------------------------------------------
// Plan builder
// ---------------------------------------------------------------------------

// builder adds nodes to the plan under construction. Step IDs are derived
// from the part name and a per-evaluation counter so that evaluating the
// same recipe twice yields identical plans.
type builder struct {
	p     *plan.Plan
	steps int
}

func newBuilder(p *plan.Plan) *builder {
	return &builder{p: p}
}

func (b *builder) addPart(kind plan.NodeKind, name string, data plan.NodeData) *sexpNodeRef {
	id := plan.NewNodeID(kind.String() + "/" + name)
	b.p.AddNode(&plan.Node{ID: id, Kind: kind, Name: name, Data: data})
	tracer().Debugf("%s part %q", kind, name)
	return &sexpNodeRef{id: id, name: name}
}

func (b *builder) addStep(kind plan.NodeKind, target *sexpNodeRef, data plan.NodeData) *sexpNodeRef {
	b.steps++
	id := plan.NewNodeID(fmt.Sprintf("%s/%s/%d", kind, target.name, b.steps))
	b.p.AddNode(&plan.Node{ID: id, Kind: kind, Children: []plan.NodeID{target.id}, Data: data})
	return &sexpNodeRef{id: id}
}

// target resolves the part a step applies to: the first positional argument
// or :part, given as a part reference or a part name.
func (b *builder) target(a kwArgs) (*sexpNodeRef, error) {
	var v zygo.Sexp
	if p, ok := a.kw["part"]; ok {
		v = p
	} else if len(a.positional) > 0 {
		v = a.positional[0]
	} else {
		return nil, fmt.Errorf("%s requires a part as first argument or :part", a.fn)
	}
	switch t := v.(type) {
	case *sexpNodeRef:
		if t.name == "" {
			return nil, fmt.Errorf("%s: expected a part, got a step reference", a.fn)
		}
		return t, nil
	case *zygo.SexpStr:
		n := b.p.Lookup(t.S)
		if n == nil {
			return nil, fmt.Errorf("%s: no part named %q", a.fn, t.S)
		}
		return &sexpNodeRef{id: n.ID, name: n.Name}, nil
	}
	return nil, fmt.Errorf("%s: expected part reference or name, got %T (%s)", a.fn, v, v.SexpString(nil))
}

// partName returns the leading name argument of a part builtin.
func partName(a kwArgs) (string, error) {
	if len(a.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", a.fn)
	}
	name, err := toString(a.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", a.fn, err)
	}
	return name, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// userFunction is the zygomys builtin signature.
type userFunction = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the recipe builtins into a zygomys environment.
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens are recognizable and node-set reads as node_set.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	for name, fn := range map[string]userFunction{
		"vec3":      vec3Builtin,
		"defaults":  b.defaultsBuiltin,
		"geometry":  b.geometryBuiltin,
		"cylinder":  b.cylinderBuiltin,
		"sphere":    b.sphereBuiltin,
		"part":      b.partBuiltin,
		"partition": b.partitionBuiltin,
		"node_set":  b.nodeSetBuiltin,
		"mesh":      b.meshBuiltin,
		"export":    b.exportBuiltin,
		"image":     b.imageBuiltin,
	} {
		env.AddFunction(name, fn)
	}
}

// (vec3 1 2 3)
func vec3Builtin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, arg := range args {
		f, err := toFloat64(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (defaults :model-name "Model-1" :global-seed 1)
func (b *builder) defaultsBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("defaults", args)
	d := b.p.Defaults
	if err := first(
		a.stringKW("model-name", &d.ModelName),
		a.floatKW("global-seed", &d.GlobalSeed),
	); err != nil {
		return zygo.SexpNull, err
	}
	if d.GlobalSeed <= 0 {
		return zygo.SexpNull, fmt.Errorf("defaults: global-seed must be positive, got %g", d.GlobalSeed)
	}
	b.p.Defaults = d
	return zygo.SexpNull, nil
}

// (geometry "vase" :input-file "vase.csv" :euclidean-distance 4 :planar false
//           :unit-conversion 1 :delimiter "," :header-lines 0
//           :revolution-angle 360 :y-offset 0 :rtol 1e-5 :atol 1e-8)
// (geometry "washer" :points (list 1 -0.5 2 -0.5 2 0.5 1 0.5))
func (b *builder) geometryBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("geometry", args)
	part, err := partName(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.NewGeometryData()
	if err := first(
		a.stringKW("input-file", &d.InputFile),
		a.floatKW("unit-conversion", &d.UnitConversion),
		a.floatKW("euclidean-distance", &d.EuclideanDistance),
		a.boolKW("planar", &d.Planar),
		a.stringKW("delimiter", &d.Read.Delimiter),
		a.intKW("header-lines", &d.Read.HeaderLines),
		a.floatKW("revolution-angle", &d.RevolutionAngle),
		a.floatKW("y-offset", &d.YOffset),
		a.floatKW("rtol", &d.Tolerance.Rtol),
		a.floatKW("atol", &d.Tolerance.Atol),
	); err != nil {
		return zygo.SexpNull, err
	}
	if v, ok := a.kw["points"]; ok {
		pts, err := toPoints(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("geometry: points: %w", err)
		}
		d.Points = pts
	}
	return b.addPart(plan.NodeGeometry, part, d), nil
}

// (cylinder "tube" :inner-radius 1 :outer-radius 2 :height 1
//           :revolution-angle 360 :y-offset 0)
func (b *builder) cylinderBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("cylinder", args)
	part, err := partName(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.CylinderData{RevolutionAngle: plan.DefaultRevolutionAngle, YOffset: coords.DefaultYOffset}
	if err := first(
		a.floatKW("inner-radius", &d.InnerRadius),
		a.floatKW("outer-radius", &d.OuterRadius),
		a.floatKW("height", &d.Height),
		a.floatKW("revolution-angle", &d.RevolutionAngle),
		a.floatKW("y-offset", &d.YOffset),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.addPart(plan.NodeCylinder, part, d), nil
}

// (sphere "ball" :inner-radius 1 :outer-radius 2 :quadrant :both
//         :revolution-angle 360 :y-offset 0)
func (b *builder) sphereBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("sphere", args)
	part, err := partName(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.SphereData{Quadrant: coords.QuadrantBoth, RevolutionAngle: plan.DefaultRevolutionAngle}
	quadrant := string(d.Quadrant)
	if err := first(
		a.floatKW("inner-radius", &d.InnerRadius),
		a.floatKW("outer-radius", &d.OuterRadius),
		a.stringKW("quadrant", &quadrant),
		a.floatKW("revolution-angle", &d.RevolutionAngle),
		a.floatKW("y-offset", &d.YOffset),
	); err != nil {
		return zygo.SexpNull, err
	}
	q, err := coords.ParseQuadrant(quadrant)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	d.Quadrant = q
	return b.addPart(plan.NodeSphere, part, d), nil
}

// (part "name")
func (b *builder) partBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("part", args)
	part, err := partName(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	n := b.p.Lookup(part)
	if n == nil {
		return zygo.SexpNull, fmt.Errorf("part: no part named %q", part)
	}
	return &sexpNodeRef{id: n.ID, name: part}, nil
}

// (partition ball :center (vec3 0 0 0) :xvector (vec3 1 0 0)
//            :zvector (vec3 0 0 1) :big-number 1000000)
func (b *builder) partitionBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("partition", args)
	t, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.NewPartitionData()
	if err := first(
		a.vecKW("center", &d.Center),
		a.vecKW("xvector", &d.XVector),
		a.vecKW("zvector", &d.ZVector),
		a.floatKW("big-number", &d.BigNumber),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.addStep(plan.NodePartition, t, d), nil
}

// (node-set ball :name "equator" :point (vec3 0 0 0) :normal (vec3 0 1 0)
//           :tolerance 1e-6)
func (b *builder) nodeSetBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("node-set", args)
	t, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.NodeSetData{Tolerance: plan.DefaultSetTolerance}
	if err := first(
		a.stringKW("name", &d.Name),
		a.vecKW("point", &d.Point),
		a.vecKW("normal", &d.Normal),
		a.floatKW("tolerance", &d.Tolerance),
	); err != nil {
		return zygo.SexpNull, err
	}
	if d.Name == "" {
		return zygo.SexpNull, fmt.Errorf("node-set requires :name")
	}
	return b.addStep(plan.NodeSets, t, d), nil
}

// (mesh ball :global-seed 1 :element-type "S3R")
func (b *builder) meshBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("mesh", args)
	t, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.MeshData{GlobalSeed: b.p.Defaults.GlobalSeed}
	if err := first(
		a.floatKW("global-seed", &d.GlobalSeed),
		a.stringKW("element-type", &d.ElementType),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.addStep(plan.NodeMesh, t, d), nil
}

// (export ball :output-file "ball.inp" :element-type "S3R" :assembly true)
func (b *builder) exportBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("export", args)
	t, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.ExportData{OutputFile: t.name + ".inp"}
	if err := first(
		a.stringKW("output-file", &d.OutputFile),
		a.stringKW("element-type", &d.ElementType),
		a.boolKW("assembly", &d.Assembly),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.addStep(plan.NodeExport, t, d), nil
}

// (image ball :output-file "ball.svg" :x-angle 0 :y-angle 0 :z-angle 0
//        :width 1920 :height 1080)
func (b *builder) imageBuiltin(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs("image", args)
	t, err := b.target(a)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := plan.ImageData{
		OutputFile: t.name + ".svg",
		Width:      plan.DefaultImageWidth,
		Height:     plan.DefaultImageHeight,
	}
	if err := first(
		a.stringKW("output-file", &d.OutputFile),
		a.floatKW("x-angle", &d.XAngle),
		a.floatKW("y-angle", &d.YAngle),
		a.floatKW("z-angle", &d.ZAngle),
		a.intKW("width", &d.Width),
		a.intKW("height", &d.Height),
	); err != nil {
		return zygo.SexpNull, err
	}
	return b.addStep(plan.NodeImage, t, d), nil
}
