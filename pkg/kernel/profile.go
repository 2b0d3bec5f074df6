package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"gonum.org/v1/gonum/interp"
)

// ErrOpenProfile is returned when sketch primitives do not form one closed
// loop.
var ErrOpenProfile = errors.New("kernel: sketch primitives do not form a closed loop")

// Default sketch resolution.
const (
	DefaultSplineSamples = 16
	DefaultArcSamples    = 32
)

// SketchOptions controls how curves are flattened into the profile outline.
type SketchOptions struct {
	// SplineSamples is the number of sub-intervals per spline span.
	SplineSamples int
	// ArcSamples is the number of sub-intervals per arc.
	ArcSamples int
}

func (o SketchOptions) resolved() SketchOptions {
	if o.SplineSamples < 1 {
		o.SplineSamples = DefaultSplineSamples
	}
	if o.ArcSamples < 1 {
		o.ArcSamples = DefaultArcSamples
	}
	return o
}

// Profile is a closed 2D sketch boundary. Outline does not repeat its first
// point at the end.
type Profile struct {
	Outline []segment.Point
}

// Area returns the signed area of the outline, positive when wound counter
// clockwise.
func (p *Profile) Area() float64 {
	a := 0.0
	n := len(p.Outline)
	for i := range n {
		j := (i + 1) % n
		a += p.Outline[i].X*p.Outline[j].Y - p.Outline[j].X*p.Outline[i].Y
	}
	return a / 2
}

// SampleSpline interpolates spline with a natural cubic through every knot,
// parameterised by chord length, and returns samples points per span with
// both end knots included.
func SampleSpline(spline segment.Spline, samples int) ([]segment.Point, error) {
	if len(spline) < 3 {
		return append([]segment.Point(nil), spline...), nil
	}
	ts := make([]float64, len(spline))
	xs := make([]float64, len(spline))
	ys := make([]float64, len(spline))
	for i, p := range spline {
		xs[i], ys[i] = p.X, p.Y
		if i > 0 {
			d := spline[i-1].Dist(p)
			if d == 0 {
				return nil, fmt.Errorf("kernel: spline has duplicate knot %v", p)
			}
			ts[i] = ts[i-1] + d
		}
	}
	var fx, fy interp.NaturalCubic
	if err := fx.Fit(ts, xs); err != nil {
		return nil, fmt.Errorf("kernel: spline fit: %w", err)
	}
	if err := fy.Fit(ts, ys); err != nil {
		return nil, fmt.Errorf("kernel: spline fit: %w", err)
	}
	out := make([]segment.Point, 0, (len(spline)-1)*samples+1)
	out = append(out, spline[0])
	for i := 1; i < len(spline); i++ {
		for s := 1; s < samples; s++ {
			t := ts[i-1] + (ts[i]-ts[i-1])*float64(s)/float64(samples)
			out = append(out, segment.Point{X: fx.Predict(t), Y: fy.Predict(t)})
		}
		out = append(out, spline[i])
	}
	return out, nil
}

// Sketch joins lines, splines and arcs into a single closed profile. The
// primitives may be given in any order and direction.
func Sketch(lines []segment.Line, splines []segment.Spline, arcs []segment.Arc, opts SketchOptions) (*Profile, error) {
	opts = opts.resolved()
	var edges [][]segment.Point
	for _, l := range lines {
		edges = append(edges, []segment.Point{l.Start, l.End})
	}
	for _, s := range splines {
		pts, err := SampleSpline(s, opts.SplineSamples)
		if err != nil {
			return nil, err
		}
		edges = append(edges, pts)
	}
	for _, a := range arcs {
		edges = append(edges, a.Sample(opts.ArcSamples))
	}
	outline, err := chain(edges)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("sketch: %d lines, %d splines, %d arcs -> %d outline points",
		len(lines), len(splines), len(arcs), len(outline))
	return &Profile{Outline: outline}, nil
}

// near compares points with an absolute tolerance scaled to their magnitude.
func near(a, b segment.Point) bool {
	scale := 1 + math.Max(math.Max(math.Abs(a.X), math.Abs(a.Y)), math.Max(math.Abs(b.X), math.Abs(b.Y)))
	return a.Dist(b) <= 1e-9*scale
}

// chain walks edges end to start until the loop closes.
func chain(edges [][]segment.Point) ([]segment.Point, error) {
	var used []bool
	var remaining int
	for _, e := range edges {
		degenerate := len(e) < 2 || (len(e) == 2 && near(e[0], e[1]))
		used = append(used, degenerate)
		if !degenerate {
			remaining++
		}
	}
	if remaining == 0 {
		return nil, fmt.Errorf("%w: no edges", ErrOpenProfile)
	}
	var outline []segment.Point
	for i, e := range edges {
		if !used[i] {
			outline = append(outline, e...)
			used[i] = true
			remaining--
			break
		}
	}
	for remaining > 0 {
		tail := outline[len(outline)-1]
		found := false
		for i, e := range edges {
			if used[i] {
				continue
			}
			switch {
			case near(e[0], tail):
				outline = append(outline, e[1:]...)
			case near(e[len(e)-1], tail):
				for k := len(e) - 2; k >= 0; k-- {
					outline = append(outline, e[k])
				}
			default:
				continue
			}
			used[i] = true
			remaining--
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("%w: dangling end at %v", ErrOpenProfile, tail)
		}
	}
	if !near(outline[0], outline[len(outline)-1]) {
		return nil, fmt.Errorf("%w: %v does not meet %v", ErrOpenProfile, outline[len(outline)-1], outline[0])
	}
	outline = outline[:len(outline)-1]
	if len(outline) < 3 {
		return nil, fmt.Errorf("%w: only %d distinct points", ErrOpenProfile, len(outline))
	}
	return outline, nil
}
