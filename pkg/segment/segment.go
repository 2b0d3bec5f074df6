// Package segment breaks an ordered 2D coordinate sequence into the straight
// lines and interpolating splines that a sketch is built from.
//
// A break is placed before every point that is either farther than a
// distance threshold from its predecessor or horizontally/vertically aligned
// with it. The runs between breaks become splines (more than two points) or
// lines (exactly two points); runs of a single point survive only as a vertex
// shared by two connector lines. Connector lines join adjacent runs and a
// closure line joins the end of the last run to the start of the first, so
// the returned geometry always describes a closed loop.
//
// Every function in this package is pure and safe for concurrent use.
package segment

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'turtle.segment'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.segment")
}

// Default tolerances and thresholds.
const (
	// DefaultRtol is the relative tolerance used for alignment checks.
	DefaultRtol = 1e-5
	// DefaultAtol is the absolute tolerance used for alignment checks.
	DefaultAtol = 1e-8
	// DefaultEuclideanDistance is the distance above which neighbouring
	// points are joined by a straight line instead of a spline.
	DefaultEuclideanDistance = 4.0
)

// ErrTooFewPoints is returned when a coordinate sequence cannot form a curve.
var ErrTooFewPoints = errors.New("segment: at least 2 coordinates are required")

// Point is a 2D coordinate, either (x, y) or (r, z).
type Point struct {
	X, Y float64
}

// String formats the point for traces and error messages.
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Segment is a maximal run of consecutive coordinates between breaks.
type Segment []Point

// Line is a straight edge between two coordinates.
type Line struct {
	Start, End Point
}

// Spline is an ordered list of three or more coordinates to interpolate.
type Spline []Point

// Tolerance holds the comparison tolerances for alignment checks. The zero
// value means "use the defaults"; a Tolerance is passed by value and never
// shared.
type Tolerance struct {
	Rtol float64
	Atol float64
}

// DefaultTolerance returns the standard floating-point comparison tolerances.
func DefaultTolerance() Tolerance {
	return Tolerance{Rtol: DefaultRtol, Atol: DefaultAtol}
}

// resolved fills unset fields with the defaults.
func (t Tolerance) resolved() Tolerance {
	if t.Rtol == 0 {
		t.Rtol = DefaultRtol
	}
	if t.Atol == 0 {
		t.Atol = DefaultAtol
	}
	return t
}

// IsClose reports whether a is within tolerance of the reference value b,
// i.e. |a-b| <= atol + rtol*|b|. The comparison is asymmetric in b.
func (t Tolerance) IsClose(a, b float64) bool {
	t = t.resolved()
	return math.Abs(a-b) <= t.Atol+t.Rtol*math.Abs(b)
}
