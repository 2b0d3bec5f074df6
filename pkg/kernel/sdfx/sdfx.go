// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Bodies of revolution and extrusions are signed distance fields. Planar
// (2D) parts keep their outline polygons and are partitioned with
// polygon clipping instead.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer traces with key 'turtle.sdfx'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.sdfx")
}

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// Marching cubes resolution bounds.
const (
	minMeshCells = 8
	maxMeshCells = 300
)

// ErrForeignSolid is returned for solids created by another kernel.
var ErrForeignSolid = errors.New("sdfx: solid was not created by this kernel")

// sdfxSolid is either a set of SDF regions or a set of planar outlines.
type sdfxSolid struct {
	regions  []sdf.SDF3
	outlines [][]segment.Point
	planar   bool
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	if s.planar {
		min = [3]float64{math.Inf(1), math.Inf(1), 0}
		max = [3]float64{math.Inf(-1), math.Inf(-1), 0}
		for _, o := range s.outlines {
			for _, p := range o {
				min[0], min[1] = math.Min(min[0], p.X), math.Min(min[1], p.Y)
				max[0], max[1] = math.Max(max[0], p.X), math.Max(max[1], p.Y)
			}
		}
		return min, max
	}
	bb := s.whole().BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Planar reports whether the part is a 2D outline.
func (s *sdfxSolid) Planar() bool { return s.planar }

// Regions returns the number of partition regions.
func (s *sdfxSolid) Regions() int {
	if s.planar {
		return len(s.outlines)
	}
	return len(s.regions)
}

// whole returns the union of all regions.
func (s *sdfxSolid) whole() sdf.SDF3 {
	if len(s.regions) == 1 {
		return s.regions[0]
	}
	return sdf.Union3D(s.regions...)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	u, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignSolid, s)
	}
	return u, nil
}

// wrap creates a kernel.Solid from SDF regions.
func wrap(regions ...sdf.SDF3) kernel.Solid {
	return &sdfxSolid{regions: regions}
}

func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// polygon2D converts a profile outline to an SDF2.
func polygon2D(outline []segment.Point) (sdf.SDF2, error) {
	vs := make([]v2.Vec, len(outline))
	for i, p := range outline {
		vs[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return s, nil
}

// Revolve sweeps the profile about the sketch Y axis, which becomes the
// global Y axis. An angle of 0 returns the planar profile.
func (k *SdfxKernel) Revolve(p *kernel.Profile, angleDeg float64) (kernel.Solid, error) {
	if angleDeg == 0 {
		return k.Planar(p)
	}
	if angleDeg < 0 || angleDeg > 360 {
		return nil, fmt.Errorf("sdfx: revolution angle %g outside (0, 360]", angleDeg)
	}
	s2, err := polygon2D(p.Outline)
	if err != nil {
		return nil, err
	}
	var s3 sdf.SDF3
	if angleDeg == 360 {
		s3, err = sdf.Revolve3D(s2)
	} else {
		s3, err = sdf.RevolveTheta3D(s2, angleDeg*math.Pi/180)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	// sdfx revolves about its Z axis.
	return wrap(sdf.Transform3D(s3, sdf.RotateX(-math.Pi/2))), nil
}

// Extrude sweeps the profile from z=0 to z=depth.
func (k *SdfxKernel) Extrude(p *kernel.Profile, depth float64) (kernel.Solid, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("sdfx: extrusion depth must be positive, got %g", depth)
	}
	s2, err := polygon2D(p.Outline)
	if err != nil {
		return nil, err
	}
	s3 := sdf.Extrude3D(s2, depth)
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: depth / 2})
	return wrap(sdf.Transform3D(s3, m)), nil
}

// Planar returns the profile as a 2D part.
func (k *SdfxKernel) Planar(p *kernel.Profile) (kernel.Solid, error) {
	if len(p.Outline) < 3 {
		return nil, fmt.Errorf("sdfx: planar part needs 3 points, got %d", len(p.Outline))
	}
	outline := append([]segment.Point(nil), p.Outline...)
	return &sdfxSolid{outlines: [][]segment.Point{outline}, planar: true}, nil
}

// Intersect returns the intersection of two parts of the same dimension.
func (k *SdfxKernel) Intersect(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(a, b, clipIntersection, sdf.Intersect3D)
}

// Union returns the union of two parts of the same dimension.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(a, b, clipUnion, func(x, y sdf.SDF3) sdf.SDF3 {
		return sdf.Union3D(x, y)
	})
}

func (k *SdfxKernel) boolean(a, b kernel.Solid, clip clipOp, op func(x, y sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	switch {
	case sa.planar && sb.planar:
		outlines := clipOutlines(sa.outlines, sb.outlines, clip)
		if len(outlines) == 0 {
			return nil, kernel.ErrEmptyRegion
		}
		return &sdfxSolid{outlines: outlines, planar: true}, nil
	case !sa.planar && !sb.planar:
		return wrap(op(sa.whole(), sb.whole())), nil
	}
	return nil, fmt.Errorf("%w: boolean between planar and 3D parts", kernel.ErrUnsupported)
}

// meshCells picks a marching cubes resolution giving cells of roughly
// globalSeed along the longest side.
func meshCells(lo, hi [3]float64, globalSeed float64) int {
	extent := 0.0
	for k := range 3 {
		extent = math.Max(extent, hi[k]-lo[k])
	}
	if globalSeed <= 0 {
		return maxMeshCells
	}
	cells := int(math.Ceil(extent / globalSeed))
	return int(math.Min(maxMeshCells, math.Max(minMeshCells, float64(cells))))
}

// ToMesh converts a part to a triangle mesh, one region after the other.
func (k *SdfxKernel) ToMesh(s kernel.Solid, globalSeed float64) (*kernel.Mesh, error) {
	u, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if u.planar {
		return meshOutlines(u.outlines, globalSeed)
	}
	lo, hi := u.BoundingBox()
	cells := meshCells(lo, hi, globalSeed)
	tracer().Debugf("meshing %d regions with %d cells", len(u.regions), cells)

	mesh := &kernel.Mesh{}
	for r, region := range u.regions {
		renderer := render.NewMarchingCubesUniform(cells)
		triangles := render.ToTriangles(region, renderer)
		for _, tri := range triangles {
			n := tri.Normal()
			for j := 0; j < 3; j++ {
				v := tri[j]
				mesh.Vertices = append(mesh.Vertices, v.X, v.Y, v.Z)
				mesh.Normals = append(mesh.Normals, n.X, n.Y, n.Z)
			}
			base := uint32(mesh.VertexCount() - 3)
			mesh.Indices = append(mesh.Indices, base, base+1, base+2)
			mesh.Regions = append(mesh.Regions, r)
		}
	}
	if mesh.IsEmpty() {
		return nil, fmt.Errorf("sdfx: mesh is empty at %d cells", cells)
	}
	return mesh, nil
}
