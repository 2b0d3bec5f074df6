package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sampling density used to decide whether a field holds material.
const (
	materialSamples = 16
	triangleSamples = 24
)

var signNames = [2]string{"+", "-"}
var axisNames = [3]string{"x", "y", "z"}

// hasMaterial reports whether any grid sample inside the bounding box of s
// lies inside the body.
func hasMaterial(s sdf.SDF3) bool {
	bb := s.BoundingBox()
	size := r3.Sub(fromV3(bb.Max), fromV3(bb.Min))
	for i := range materialSamples {
		for j := range materialSamples {
			for k := range materialSamples {
				p := bb.Min
				p.X += size.X * (float64(i) + 0.5) / materialSamples
				p.Y += size.Y * (float64(j) + 0.5) / materialSamples
				p.Z += size.Z * (float64(k) + 0.5) / materialSamples
				if s.Evaluate(p) < 0 {
					return true
				}
			}
		}
	}
	return false
}

// touchesTriangle reports whether the body holds material anywhere on the
// triangle, whose first vertex is the apex.
func touchesTriangle(s sdf.SDF3, tri [3]r3.Vec) bool {
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	for i := 1; i <= triangleSamples; i++ {
		t := float64(i) / triangleSamples
		for j := 0; j <= triangleSamples; j++ {
			u := float64(j) / triangleSamples
			edge := r3.Add(r3.Scale(1-u, e1), r3.Scale(u, e2))
			p := r3.Add(tri[0], r3.Scale(t, edge))
			if s.Evaluate(toV3(p)) < 0 {
				return true
			}
		}
	}
	return false
}

// reach returns the largest distance from center to a bounding box corner.
func reach(s sdf.SDF3, center r3.Vec) float64 {
	bb := s.BoundingBox()
	r := 0.0
	for i := range 8 {
		corner := bb.Min
		if i&1 != 0 {
			corner.X = bb.Max.X
		}
		if i&2 != 0 {
			corner.Y = bb.Max.Y
		}
		if i&4 != 0 {
			corner.Z = bb.Max.Z
		}
		r = math.Max(r, r3.Norm(r3.Sub(fromV3(corner), center)))
	}
	if r == 0 {
		return 1
	}
	return r
}

// Partition cuts s into the turtle-shell regions of g. For 3D parts every
// pyramid is split into its four octants, giving up to 24 regions. Planar
// parts are split into eight 45 degree wedges.
func (k *SdfxKernel) Partition(s kernel.Solid, g partition.Geometry) (kernel.Solid, kernel.CutReport) {
	var report kernel.CutReport
	u, err := unwrap(s)
	if err != nil {
		report.Record("partition", err)
		return s, report
	}
	if u.planar {
		return partitionPlanar(u, g)
	}

	whole := u.whole()
	c := toV3(g.Center)

	for _, pl := range g.Planes.Principal {
		pos := hasMaterial(sdf.Cut3D(whole, c, toV3(pl.Normal)))
		neg := hasMaterial(sdf.Cut3D(whole, c, toV3(r3.Scale(-1, pl.Normal))))
		if pos && neg {
			report.Record(pl.Name, nil)
		} else {
			report.Record(pl.Name, kernel.ErrCutMissed)
		}
	}

	tris := partition.DiagonalCutTriangles(g.Center, g.Planes, reach(whole, g.Center))
	for i, d := range g.Planes.Diagonal {
		for j, tri := range tris[i] {
			name := fmt.Sprintf("%s %s", d.Name, [2]string{"upper", "lower"}[j])
			if touchesTriangle(whole, tri) {
				report.Record(name, nil)
			} else {
				report.Record(name, kernel.ErrCutMissed)
			}
		}
	}

	axes := [3]r3.Vec{g.Frame.X, g.Frame.Y, g.Frame.Z}
	var regions []sdf.SDF3
	for i, pyr := range g.Pyramids {
		axis := i / 2
		others := [2]int{(axis + 1) % 3, (axis + 2) % 3}
		tool := whole
		for _, o := range others {
			for _, sign := range []float64{1, -1} {
				n := partition.Normalize(r3.Sub(pyr.Axis, r3.Scale(sign, axes[o])))
				tool = sdf.Cut3D(tool, c, toV3(n))
			}
		}
		for q := range 4 {
			region := tool
			name := "pyramid " + signNames[i%2] + axisNames[axis] + " octant"
			for bit, o := range others {
				sign := 1.0
				if q&(1<<bit) != 0 {
					sign = -1
				}
				region = sdf.Cut3D(region, c, toV3(r3.Scale(sign, axes[o])))
				name += " " + signNames[q>>bit&1] + axisNames[o]
			}
			if hasMaterial(region) {
				regions = append(regions, region)
				report.Record(name, nil)
			} else {
				report.Record(name, kernel.ErrEmptyRegion)
			}
		}
	}
	tracer().Infof("partition: %d regions, %d of %d cuts succeeded",
		len(regions), report.Succeeded(), len(report.Outcomes))
	if len(regions) == 0 {
		return s, report
	}
	return wrap(regions...), report
}
