package recipe

import (
	"strings"
	"testing"

	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere "ball" :quadrant :upper)`,
			expect: `(sphere "ball" "__kw_quadrant" "__kw_upper")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(node-set ball :revolution-angle 90)`,
			expect: `(node_set ball "__kw_revolution-angle" 90)`,
		},
		{
			name:   "minus operator and negative numbers preserved",
			input:  `(- 10 5) (list 1 -0.5) 1e-5`,
			expect: `(- 10 5) (list 1 -0.5) 1e-5`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(part \"a\")",
			expect: "// comment with :keyword\n(part \"a\")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

const turtleRecipe = `
;; a hollow sphere cut into pyramids, meshed and exported
(defaults :model-name "Turtle" :global-seed 0.25)

(def ball (sphere "ball" :inner-radius 1 :outer-radius 2 :quadrant :upper :revolution-angle 90))
(partition ball :center (vec3 0 0 0) :xvector (vec3 1 0 0) :zvector (vec3 0 0 1))
(mesh ball :element-type "S3R")
(node-set ball :name "bottom" :point (vec3 0 0 0) :normal (vec3 0 1 0))
(export ball :output-file "turtle.inp" :assembly true)

(geometry "washer" :points (list 1 -0.5 2 -0.5 2 0.5 1 0.5) :planar true :euclidean-distance 10)
(image "washer" :output-file "washer.svg" :width 640 :height 480 :x-angle 30)
`

func evaluateOK(t *testing.T, source string) *plan.Plan {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return p
}

func TestTurtleRecipe(t *testing.T) {
	p := evaluateOK(t, turtleRecipe)

	if res := plan.ValidateAll(p); !res.OK() {
		t.Fatalf("plan does not validate: %v", res.Errors)
	}
	if p.Defaults.ModelName != "Turtle" || p.Defaults.GlobalSeed != 0.25 {
		t.Errorf("defaults not applied: %+v", p.Defaults)
	}
	if parts := p.Parts(); len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	ball := p.MustLookup("ball")
	sd := ball.Data.(plan.SphereData)
	if sd.Quadrant != coords.QuadrantUpper || sd.RevolutionAngle != 90 || sd.OuterRadius != 2 {
		t.Errorf("unexpected sphere data: %+v", sd)
	}

	steps := p.StepsFor(ball.ID)
	kinds := []plan.NodeKind{plan.NodePartition, plan.NodeMesh, plan.NodeSets, plan.NodeExport}
	if len(steps) != len(kinds) {
		t.Fatalf("expected %d steps on ball, got %d", len(kinds), len(steps))
	}
	for i, s := range steps {
		if s.Kind != kinds[i] {
			t.Errorf("step %d: kind = %s, want %s", i, s.Kind, kinds[i])
		}
	}

	pd := steps[0].Data.(plan.PartitionData)
	if pd.BigNumber != plan.DefaultBigNumber || pd.ZVector != (r3.Vec{Z: 1}) {
		t.Errorf("unexpected partition data: %+v", pd)
	}
	md := steps[1].Data.(plan.MeshData)
	if md.GlobalSeed != 0.25 || md.ElementType != "S3R" {
		t.Errorf("mesh should inherit the default seed: %+v", md)
	}
	nd := steps[2].Data.(plan.NodeSetData)
	if nd.Name != "bottom" || nd.Normal != (r3.Vec{Y: 1}) || nd.Tolerance != plan.DefaultSetTolerance {
		t.Errorf("unexpected node set data: %+v", nd)
	}
	ed := steps[3].Data.(plan.ExportData)
	if ed.OutputFile != "turtle.inp" || !ed.Assembly {
		t.Errorf("unexpected export data: %+v", ed)
	}

	washer := p.MustLookup("washer")
	gd := washer.Data.(plan.GeometryData)
	if !gd.Planar || len(gd.Points) != 4 || gd.Points[0].Y != -0.5 || gd.EuclideanDistance != 10 {
		t.Errorf("unexpected geometry data: %+v", gd)
	}
	img := p.StepsFor(washer.ID)[0].Data.(plan.ImageData)
	if img.Width != 640 || img.Height != 480 || img.XAngle != 30 || img.OutputFile != "washer.svg" {
		t.Errorf("unexpected image data: %+v", img)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	a := evaluateOK(t, turtleRecipe)
	b := evaluateOK(t, turtleRecipe)
	if len(a.Steps) != len(b.Steps) {
		t.Fatalf("step count differs: %d vs %d", len(a.Steps), len(b.Steps))
	}
	for i := range a.Steps {
		if a.Steps[i] != b.Steps[i] {
			t.Errorf("step %d: %s != %s", i, a.Steps[i].Short(), b.Steps[i].Short())
		}
	}
}

func TestStepDefaults(t *testing.T) {
	p := evaluateOK(t, `
(cylinder "tube" :inner-radius 1 :outer-radius 2 :height 3)
(export "tube")
(image (part "tube"))
`)
	tube := p.MustLookup("tube")
	cd := tube.Data.(plan.CylinderData)
	if cd.RevolutionAngle != plan.DefaultRevolutionAngle || cd.Height != 3 {
		t.Errorf("unexpected cylinder data: %+v", cd)
	}
	steps := p.StepsFor(tube.ID)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if ed := steps[0].Data.(plan.ExportData); ed.OutputFile != "tube.inp" {
		t.Errorf("default export file = %q", ed.OutputFile)
	}
	img := steps[1].Data.(plan.ImageData)
	if img.OutputFile != "tube.svg" || img.Width != plan.DefaultImageWidth {
		t.Errorf("unexpected image defaults: %+v", img)
	}
}

func TestVariableAndKeywordTarget(t *testing.T) {
	p := evaluateOK(t, `
(def r 2)
(def my-tube (cylinder "tube" :inner-radius (/ r 2) :outer-radius r :height (* r 2)))
(mesh :part my-tube :global-seed 0.5)
`)
	tube := p.MustLookup("tube")
	cd := tube.Data.(plan.CylinderData)
	if cd.InnerRadius != 1 || cd.Height != 4 {
		t.Errorf("arithmetic not evaluated: %+v", cd)
	}
	if steps := p.StepsFor(tube.ID); len(steps) != 1 || steps[0].Kind != plan.NodeMesh {
		t.Fatalf("expected one mesh step, got %v", steps)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing part", `(mesh "nope")`, "no part named"},
		{"part lookup", `(part "nope")`, "no part named"},
		{"bad quadrant", `(sphere "s" :outer-radius 1 :quadrant :left)`, "quadrant"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"bad number", `(cylinder "c" :height "tall")`, "expected number"},
		{"odd points", `(geometry "g" :points (list 1 2 3))`, "x y pairs"},
		{"node set name", `(cylinder "c" :outer-radius 1 :height 1) (node-set "c")`, "requires :name"},
		{"step as target", `(def m (mesh (cylinder "c" :outer-radius 1 :height 1))) (export m)`, "step reference"},
		{"header lines", `(geometry "g" :input-file "a.csv" :header-lines 1.5)`, "expected integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if p != nil || len(evalErrs) == 0 {
				t.Fatal("expected eval errors and no plan")
			}
			var msgs []string
			for _, e := range evalErrs {
				msgs = append(msgs, e.Message)
			}
			if !strings.Contains(strings.Join(msgs, "\n"), tt.want) {
				t.Errorf("errors %q do not mention %q", msgs, tt.want)
			}
		})
	}
}
