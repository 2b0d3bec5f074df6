package coords

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
)

// ErrRadius is returned for radii that cannot form a hollow primitive.
var ErrRadius = errors.New("coords: inner radius must be >= 0 and less than the outer radius")

// Cylinder returns the rectangular (r, z) profile of a hollow cylinder.
func Cylinder(inner, outer, height float64) ([]segment.Point, error) {
	if inner < 0 || inner >= outer {
		return nil, fmt.Errorf("%w: inner=%g outer=%g", ErrRadius, inner, outer)
	}
	if height <= 0 {
		return nil, fmt.Errorf("coords: cylinder height must be positive, got %g", height)
	}
	return []segment.Point{
		{X: inner, Y: height},
		{X: outer, Y: height},
		{X: outer, Y: 0},
		{X: inner, Y: 0},
	}, nil
}

// Quadrant selects which half of the XY plane a sphere sketch covers.
type Quadrant string

// Sphere quadrants.
const (
	QuadrantBoth  Quadrant = "both"
	QuadrantUpper Quadrant = "upper"
	QuadrantLower Quadrant = "lower"
)

// ErrQuadrant is returned for an unknown quadrant name.
var ErrQuadrant = errors.New("coords: quadrant must be one of both, upper, lower")

// ParseQuadrant validates a quadrant name.
func ParseQuadrant(s string) (Quadrant, error) {
	switch q := Quadrant(strings.ToLower(s)); q {
	case QuadrantBoth, QuadrantUpper, QuadrantLower:
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrQuadrant, s)
}

// angles returns the start and end sweep angles of the quadrant, measured
// from +X and running clockwise.
func (q Quadrant) angles() (start, end float64) {
	switch q {
	case QuadrantUpper:
		return math.Pi / 2, 0
	case QuadrantLower:
		return 0, -math.Pi / 2
	}
	return math.Pi / 2, -math.Pi / 2
}

// SphereArcs holds the arc end points of a hollow sphere sketch.
type SphereArcs struct {
	Center         segment.Point
	Inner1, Inner2 segment.Point
	Outer1, Outer2 segment.Point
}

// SphereArcPoints returns the inner and outer arc end points of a sphere
// sketch centered on center.
func SphereArcPoints(center segment.Point, inner, outer float64, q Quadrant) (SphereArcs, error) {
	if inner < 0 || inner >= outer {
		return SphereArcs{}, fmt.Errorf("%w: inner=%g outer=%g", ErrRadius, inner, outer)
	}
	if _, err := ParseQuadrant(string(q)); err != nil {
		return SphereArcs{}, err
	}
	start, end := q.angles()
	at := func(r, a float64) segment.Point {
		s, c := math.Sincos(a)
		return segment.Point{X: center.X + r*c, Y: center.Y + r*s}
	}
	return SphereArcs{
		Center: center,
		Inner1: at(inner, start),
		Inner2: at(inner, end),
		Outer1: at(outer, start),
		Outer2: at(outer, end),
	}, nil
}

// Sketch returns the closed sketch of the sphere profile: the outer arc,
// a line down to the inner arc, the inner arc run backwards and a line
// back out. A solid sphere has no inner arc.
func (a SphereArcs) Sketch() ([]segment.Line, []segment.Arc) {
	arcs := []segment.Arc{segment.ArcThrough(a.Center, a.Outer1, a.Outer2, true)}
	if a.Inner1 != a.Inner2 {
		arcs = append(arcs, segment.ArcThrough(a.Center, a.Inner2, a.Inner1, false))
	}
	lines := []segment.Line{
		{Start: a.Outer2, End: a.Inner2},
		{Start: a.Inner1, End: a.Outer1},
	}
	return lines, arcs
}

// PartNames returns the part name for each input file. Without explicit
// names the file base names are used; explicit names must match the files
// one to one.
func PartNames(files, names []string) ([]string, error) {
	if len(names) == 0 {
		out := make([]string, len(files))
		for i, f := range files {
			base := filepath.Base(f)
			out[i] = strings.TrimSuffix(base, filepath.Ext(base))
		}
		return out, nil
	}
	if len(names) != len(files) {
		return nil, fmt.Errorf("coords: part name length %d must match the input file length %d", len(names), len(files))
	}
	return append([]string(nil), names...), nil
}

// ElementTypes broadcasts a single element type to n parts, or checks that
// one type was given per part.
func ElementTypes(n int, types []string) ([]string, error) {
	switch len(types) {
	case 0:
		return make([]string, n), nil
	case 1:
		out := make([]string, n)
		for i := range out {
			out[i] = types[0]
		}
		return out, nil
	case n:
		return append([]string(nil), types...), nil
	}
	return nil, fmt.Errorf("coords: element type length %d must match the part name length %d", len(types), n)
}
