// Package partition computes the plane and pyramid geometry used to cut a
// sphere or cylinder into turtle-shell partitions about a local frame.
//
// The package only does vector arithmetic. Turning normals into cuts and
// pyramids into Boolean intersections is the job of a kernel.Kernel.
package partition

import (
	"errors"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer traces with key 'turtle.partition'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.partition")
}

// zeroTol is the absolute tolerance below which a length or dot product is
// treated as zero.
const zeroTol = 1e-8

// ErrNotOrthogonal is returned when the local x and z axes are not orthogonal.
var ErrNotOrthogonal = errors.New("partition: x-vector and z-vector are not orthogonal")

// ErrZeroVector is returned when a local axis has zero length.
var ErrZeroVector = errors.New("partition: local axis vector has zero length")

func isZero(f float64) bool {
	return math.Abs(f) <= zeroTol
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if isZero(n) {
		return v
	}
	return r3.Scale(1/n, v)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Frame is a local coordinate system. Y is always Z cross X.
type Frame struct {
	X, Y, Z r3.Vec
}

// DeriveFrame normalizes x and z independently and completes the frame with
// their cross product. Orthogonality of x and z is not enforced; use
// Frame.Orthogonal to check it.
func DeriveFrame(x, z r3.Vec) Frame {
	xhat := Normalize(x)
	zhat := Normalize(z)
	return Frame{X: xhat, Y: r3.Cross(zhat, xhat), Z: zhat}
}

// Orthogonal reports whether X and Z are perpendicular within tol.
func (f Frame) Orthogonal(tol float64) bool {
	return math.Abs(r3.Dot(f.X, f.Z)) <= tol
}

// Axis returns the signed principal axis for index i in pyramid order
// +X, -X, +Y, -Y, +Z, -Z.
func (f Frame) Axis(i int) r3.Vec {
	var v r3.Vec
	switch i / 2 {
	case 0:
		v = f.X
	case 1:
		v = f.Y
	default:
		v = f.Z
	}
	if i%2 == 1 {
		return r3.Scale(-1, v)
	}
	return v
}

// checkAxes rejects degenerate or non-orthogonal local axes.
func checkAxes(x, z r3.Vec) error {
	if isZero(r3.Norm(x)) || isZero(r3.Norm(z)) {
		return ErrZeroVector
	}
	if !DeriveFrame(x, z).Orthogonal(zeroTol) {
		return ErrNotOrthogonal
	}
	return nil
}
