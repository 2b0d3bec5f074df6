// Package kernel defines the geometry kernel capability used to turn sketch
// primitives into parts. Implementations (sdfx) provide sweeps, partition
// cuts and meshing behind this interface so the build pipeline never
// depends on a particular backend.
package kernel

import (
	"errors"

	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'turtle.kernel'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.kernel")
}

// ErrUnsupported is returned by kernels for operations they cannot perform.
var ErrUnsupported = errors.New("kernel: operation not supported")

// Solid is an opaque handle to a kernel part. Implementations wrap their
// internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Planar reports whether the part is a 2D profile rather than a body.
	Planar() bool
	// Regions returns the number of partitioned regions, 1 for an
	// unpartitioned part.
	Regions() int
}

// Kernel is the geometry kernel capability.
type Kernel interface {
	// Sweeps. A revolution angle of 0 yields a 2D axisymmetric part.
	Revolve(p *Profile, angleDeg float64) (Solid, error)
	Extrude(p *Profile, depth float64) (Solid, error)
	Planar(p *Profile) (Solid, error)

	// Boolean operations
	Intersect(a, b Solid) (Solid, error)
	Union(a, b Solid) (Solid, error)

	// Partition cuts s into turtle-shell regions. Cuts are best effort: the
	// report holds one outcome per attempted cut and the returned solid
	// carries every cut that succeeded.
	Partition(s Solid, g partition.Geometry) (Solid, CutReport)

	// Mesh output. globalSeed is the target element edge length.
	ToMesh(s Solid, globalSeed float64) (*Mesh, error)
}
