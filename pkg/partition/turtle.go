package partition

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Default partition parameters.
const (
	// DefaultBigNumber sizes construction geometry so that it reaches past
	// any part being partitioned.
	DefaultBigNumber = 1e6
)

// Geometry is everything a kernel needs to cut a turtle-shell partition.
type Geometry struct {
	Center          r3.Vec
	Frame           Frame
	PlaneNormals    [9]r3.Vec
	Planes          PlaneSet
	PyramidSurfaces [6]Surface
	Pyramids        [6]Pyramid
}

// TurtleShell computes the partition planes and pyramid surfaces for a cube
// of half-diagonal size centered on center. The local x and z axes must be
// non-zero and orthogonal.
func TurtleShell(center, x, z r3.Vec, size float64) (Geometry, error) {
	if err := checkAxes(x, z); err != nil {
		return Geometry{}, fmt.Errorf("%w: x=%v z=%v", err, x, z)
	}
	if size <= 0 {
		return Geometry{}, fmt.Errorf("partition: size must be positive, got %g", size)
	}
	g := Geometry{
		Center:          center,
		Frame:           DeriveFrame(x, z),
		PlaneNormals:    PlaneNormals(x, z),
		Planes:          Planes(x, z),
		PyramidSurfaces: PyramidSurfaces(center, x, z, size),
		Pyramids:        Pyramids(center, x, z, size),
	}
	tracer().Debugf("turtle shell about %v with size %g", center, size)
	return g, nil
}
