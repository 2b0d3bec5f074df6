package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kyle-brindley/turbo-turtle/pkg/build"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/sdfx"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/recipe"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

// errPartsFailed is returned after every part was attempted and at least
// one failed. The failures themselves are already printed.
var errPartsFailed = errors.New("one or more parts failed")

// runPlan builds p with the sdfx kernel and prints a summary.
func runPlan(cmd *cobra.Command, p *plan.Plan) error {
	r, err := build.Run(cmd.Context(), p, sdfx.New(), build.Options{})
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), r)
	for _, pr := range r.Failed() {
		fmt.Fprintln(cmd.ErrOrStderr(), pr.Err)
	}
	if len(r.Failed()) > 0 {
		return errPartsFailed
	}
	return nil
}

func printResult(out io.Writer, r *build.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PART\tSOURCE\tREGIONS\tCUTS\tTRIANGLES\tSTATUS")
	for _, pr := range r.Parts {
		regions, triangles, status := "-", "-", "ok"
		if pr.Solid != nil {
			regions = fmt.Sprint(pr.Solid.Regions())
		}
		if pr.Mesh != nil {
			triangles = fmt.Sprint(pr.Mesh.TriangleCount())
		}
		if pr.Err != nil {
			status = "failed"
		}
		cuts := "-"
		if n := len(pr.Cuts.Outcomes); n > 0 {
			cuts = fmt.Sprintf("%d/%d", pr.Cuts.Succeeded(), n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", pr.Name, pr.Source, regions, cuts, triangles, status)
	}
	w.Flush()
	for _, path := range r.Outputs {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
}

// loadRecipe evaluates a recipe file into a plan.
func loadRecipe(path string) (*plan.Plan, error) {
	p, evalErrs, err := recipe.NewEngine().EvaluateFile(path)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return p, nil
}

// selectParts returns the named parts of p, or every part when names is
// empty.
func selectParts(p *plan.Plan, names []string) ([]*plan.Node, error) {
	if len(names) == 0 {
		parts := p.Parts()
		if len(parts) == 0 {
			return nil, errors.New("no parts defined")
		}
		return parts, nil
	}
	parts := make([]*plan.Node, 0, len(names))
	for _, name := range names {
		n := p.Lookup(name)
		if n == nil {
			return nil, fmt.Errorf("no part named %q", name)
		}
		parts = append(parts, n)
	}
	return parts, nil
}

// addPart adds a part node to p.
func addPart(p *plan.Plan, kind plan.NodeKind, name string, d plan.NodeData) *plan.Node {
	n := &plan.Node{ID: plan.NewNodeID(kind.String() + "/" + name), Kind: kind, Name: name, Data: d}
	p.AddNode(n)
	return n
}

// addStep appends a step for part to p.
func addStep(p *plan.Plan, kind plan.NodeKind, part *plan.Node, d plan.NodeData) {
	path := fmt.Sprintf("cli/%s/%s/%d", kind, part.Name, p.NodeCount())
	p.AddNode(&plan.Node{ID: plan.NewNodeID(path), Kind: kind, Children: []plan.NodeID{part.ID}, Data: d})
}

// vec3 converts a three element flag value.
func vec3(flag string, v []float64) (r3.Vec, error) {
	if len(v) != 3 {
		return r3.Vec{}, fmt.Errorf("--%s needs 3 values, got %d", flag, len(v))
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func array3(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// pairs parses repeated NAME=VALUE flag values.
func pairs(flag string, values []string) ([][2]string, error) {
	out := make([][2]string, 0, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("--%s %q: expected NAME=VALUE", flag, v)
		}
		out = append(out, [2]string{name, value})
	}
	return out, nil
}
