package sdfx

import (
	"errors"
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
)

type clipOp = polyclip.Op

const (
	clipIntersection = polyclip.INTERSECTION
	clipUnion        = polyclip.UNION
)

// minRegionArea is the smallest clipped contour kept as a region.
const minRegionArea = 1e-12

func toPolygon(outline []segment.Point) polyclip.Polygon {
	c := make(polyclip.Contour, len(outline))
	for i, p := range outline {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return polyclip.Polygon{c}
}

func contourArea(c polyclip.Contour) float64 {
	a := 0.0
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a / 2
}

// fromPolygon returns the contours of p with a non-zero area.
func fromPolygon(p polyclip.Polygon) [][]segment.Point {
	var out [][]segment.Point
	for _, c := range p {
		if math.Abs(contourArea(c)) <= minRegionArea {
			continue
		}
		o := make([]segment.Point, len(c))
		for i, pt := range c {
			o[i] = segment.Point{X: pt.X, Y: pt.Y}
		}
		out = append(out, o)
	}
	return out
}

// clipOutlines applies op between every outline of a and the union of b.
func clipOutlines(a, b [][]segment.Point, op clipOp) [][]segment.Point {
	var clipping polyclip.Polygon
	for _, o := range b {
		clipping = append(clipping, toPolygon(o)...)
	}
	var subject polyclip.Polygon
	for _, o := range a {
		subject = append(subject, toPolygon(o)...)
	}
	return fromPolygon(subject.Construct(op, clipping))
}

// outlineArea sums the unsigned areas of outlines.
func outlineArea(outlines [][]segment.Point) float64 {
	a := 0.0
	for _, o := range outlines {
		a += math.Abs((&kernel.Profile{Outline: o}).Area())
	}
	return a
}

// pointInOutlines reports whether p lies inside any outline, by crossing
// number.
func pointInOutlines(outlines [][]segment.Point, p segment.Point) bool {
	for _, o := range outlines {
		in := false
		for i := range o {
			a, b := o[i], o[(i+1)%len(o)]
			if (a.Y > p.Y) != (b.Y > p.Y) && p.X < a.X+(p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y) {
				in = !in
			}
		}
		if in {
			return true
		}
	}
	return false
}

// wedgeHoldsMaterial reports whether an outline vertex lies strictly inside
// the wedge, or the wedge tip sits in material.
func wedgeHoldsMaterial(outlines [][]segment.Point, wedge []segment.Point, eps float64) bool {
	c, a, b := wedge[0], wedge[1], wedge[2]
	for _, o := range outlines {
		for _, p := range o {
			if cross(c, a, p) > eps && cross(a, b, p) > eps && cross(b, c, p) > eps {
				return true
			}
		}
	}
	mid := segment.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	tip := segment.Point{X: c.X + 1e-6*(mid.X-c.X), Y: c.Y + 1e-6*(mid.Y-c.Y)}
	return pointInOutlines(outlines, tip)
}

// partitionPlanar splits every outline into eight wedges about the center,
// bounded by the local X and Y axes and their bisectors.
func partitionPlanar(u *sdfxSolid, g partition.Geometry) (kernel.Solid, kernel.CutReport) {
	var report kernel.CutReport
	c := segment.Point{X: g.Center.X, Y: g.Center.Y}
	rot := math.Atan2(g.Frame.X.Y, g.Frame.X.X)

	big := 0.0
	for _, o := range u.outlines {
		for _, p := range o {
			big = math.Max(big, c.Dist(p))
		}
	}
	// A wedge triangle only covers radius big*cos(pi/8).
	big = 2*big + 1

	radii := make([]float64, 8)
	angles := make([]float64, 8)
	for k := range radii {
		radii[k] = big
		angles[k] = rot + float64(k)*math.Pi/4
	}
	// Neighbouring wedges share the same rim points so their edges coincide
	// exactly. Round-off residue is snapped to the axes.
	rim := partition.RectalinearCoordinates(radii, angles)
	for k, p := range rim {
		rim[k] = segment.Point{X: snap(c.X+p.X, c.X, big), Y: snap(c.Y+p.Y, c.Y, big)}
	}

	var outlines [][]segment.Point
	for k := range 8 {
		wedge := []segment.Point{c, rim[k], rim[(k+1)%8]}
		pieces := clipOutlines(u.outlines, [][]segment.Point{wedge}, clipIntersection)
		name := fmt.Sprintf("wedge %d", k)
		if len(pieces) == 0 {
			if wedgeHoldsMaterial(u.outlines, wedge, 1e-12*big*big) {
				report.Record(name, errors.New("sdfx: clipping dropped the material of the wedge"))
			} else {
				report.Record(name, kernel.ErrEmptyRegion)
			}
			continue
		}
		report.Record(name, nil)
		outlines = append(outlines, pieces...)
	}
	if len(outlines) == 0 {
		return u, report
	}
	want, got := outlineArea(u.outlines), outlineArea(outlines)
	if math.Abs(got-want) > 1e-9*math.Max(1, want) {
		report.Record("wedges", fmt.Errorf("sdfx: wedges cover area %g, outline area is %g", got, want))
	}
	return &sdfxSolid{outlines: outlines, planar: true}, report
}

// snap returns ref when v differs from it by round-off only.
func snap(v, ref, scale float64) float64 {
	if math.Abs(v-ref) <= 1e-12*scale {
		return ref
	}
	return v
}

// errNoEar is returned when ear clipping cannot make progress, which only
// happens for self-intersecting outlines.
var errNoEar = errors.New("sdfx: outline is self-intersecting")

// refine inserts points along every edge so that no edge is longer than
// seed.
func refine(outline []segment.Point, seed float64) []segment.Point {
	if seed <= 0 {
		return outline
	}
	var out []segment.Point
	for i, a := range outline {
		b := outline[(i+1)%len(outline)]
		n := int(math.Ceil(a.Dist(b) / seed))
		for s := range max(n, 1) {
			t := float64(s) / float64(max(n, 1))
			out = append(out, segment.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)})
		}
	}
	return out
}

func cross(o, a, b segment.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func inTriangle(p, a, b, c segment.Point) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}

// triangulate ear-clips a simple polygon and returns counter clockwise
// triangles as index triples into outline.
func triangulate(outline []segment.Point) ([][3]int, error) {
	idx := make([]int, len(outline))
	for i := range idx {
		idx[i] = i
	}
	if (&kernel.Profile{Outline: outline}).Area() < 0 {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	var tris [][3]int
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			prev, cur, next := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			a, b, c := outline[prev], outline[cur], outline[next]
			if cross(a, b, c) <= 0 {
				continue
			}
			ear := true
			for _, other := range idx {
				if other == prev || other == cur || other == next {
					continue
				}
				if inTriangle(outline[other], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// Drop a straight vertex without emitting a triangle.
		dropped := false
		for i := range idx {
			a := outline[idx[(i+len(idx)-1)%len(idx)]]
			b := outline[idx[i]]
			c := outline[idx[(i+1)%len(idx)]]
			if math.Abs(cross(a, b, c)) <= 1e-12*(1+a.Dist(c)) {
				idx = append(idx[:i], idx[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return nil, errNoEar
		}
	}
	if len(idx) == 3 && cross(outline[idx[0]], outline[idx[1]], outline[idx[2]]) > 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris, nil
}

// meshOutlines triangulates planar regions in the z=0 plane.
func meshOutlines(outlines [][]segment.Point, globalSeed float64) (*kernel.Mesh, error) {
	mesh := &kernel.Mesh{}
	for r, o := range outlines {
		pts := refine(o, globalSeed)
		tris, err := triangulate(pts)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", r, err)
		}
		base := uint32(mesh.VertexCount())
		for _, p := range pts {
			mesh.Vertices = append(mesh.Vertices, p.X, p.Y, 0)
			mesh.Normals = append(mesh.Normals, 0, 0, 1)
		}
		for _, t := range tris {
			mesh.Indices = append(mesh.Indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
			mesh.Regions = append(mesh.Regions, r)
		}
	}
	if mesh.TriangleCount() == 0 {
		return nil, errors.New("sdfx: planar mesh is empty")
	}
	return mesh, nil
}
