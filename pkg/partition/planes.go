package partition

import (
	"math"

	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlaneNormals returns the nine partition plane normals in their fixed order:
// the XY, YZ and ZX plane normals (Z, X, Y), followed by the unit bisectors
// X+Y, X-Y, Y+Z, Y-Z, Z+X, Z-X.
func PlaneNormals(x, z r3.Vec) [9]r3.Vec {
	f := DeriveFrame(x, z)
	bisect := func(a, b r3.Vec) r3.Vec {
		return Normalize(Midpoint(a, b))
	}
	neg := func(v r3.Vec) r3.Vec { return r3.Scale(-1, v) }
	return [9]r3.Vec{
		f.Z,
		f.X,
		f.Y,
		bisect(f.X, f.Y),
		bisect(f.X, neg(f.Y)),
		bisect(f.Y, f.Z),
		bisect(f.Y, neg(f.Z)),
		bisect(f.Z, f.X),
		bisect(f.Z, neg(f.X)),
	}
}

// DiagonalPlane is a 45 degree partition plane paired with the local axis
// used to orient sketches on it. The edge is projected onto the plane and the
// projection becomes the sketch up (+Y) direction.
type DiagonalPlane struct {
	Name       string
	Normal     r3.Vec
	SketchEdge r3.Vec
}

// SketchAxes returns the unit sketch X and Y directions in 3D.
func (d DiagonalPlane) SketchAxes() (sx, sy r3.Vec) {
	n := Normalize(d.Normal)
	sy = Normalize(r3.Sub(d.SketchEdge, r3.Scale(r3.Dot(d.SketchEdge, n), n)))
	sx = r3.Cross(sy, n)
	return sx, sy
}

// PrincipalPlane is one of the three planes through the frame origin spanned
// by two local axes.
type PrincipalPlane struct {
	Name   string
	Normal r3.Vec
}

// PlaneSet holds every partition plane of a frame.
type PlaneSet struct {
	Principal [3]PrincipalPlane
	Diagonal  [6]DiagonalPlane
}

// Normals flattens the set back into PlaneNormals order.
func (s PlaneSet) Normals() [9]r3.Vec {
	var out [9]r3.Vec
	for i, p := range s.Principal {
		out[i] = p.Normal
	}
	for i, d := range s.Diagonal {
		out[3+i] = d.Normal
	}
	return out
}

// Planes returns the partition planes of the frame given by x and z, with each
// diagonal plane already paired with its sketch edge.
func Planes(x, z r3.Vec) PlaneSet {
	n := PlaneNormals(x, z)
	f := DeriveFrame(x, z)
	return PlaneSet{
		Principal: [3]PrincipalPlane{
			{Name: "xy", Normal: n[0]},
			{Name: "yz", Normal: n[1]},
			{Name: "zx", Normal: n[2]},
		},
		Diagonal: [6]DiagonalPlane{
			{Name: "x+y", Normal: n[3], SketchEdge: f.Y},
			{Name: "x-y", Normal: n[4], SketchEdge: f.Y},
			{Name: "y+z", Normal: n[5], SketchEdge: f.Z},
			{Name: "y-z", Normal: n[6], SketchEdge: f.Z},
			{Name: "z+x", Normal: n[7], SketchEdge: f.X},
			{Name: "z-x", Normal: n[8], SketchEdge: f.X},
		},
	}
}

// sketchAngle is the elevation of a cube corner above a face diagonal, seen
// in a diagonal partition plane.
var sketchAngle = math.Pi/2 - math.Acos(math.Sqrt(2.0/3.0))

// SketchVertexPairs returns the two vertex pairs that, together with the
// sketch origin, form the triangles swept by a diagonal cut. Coordinates are
// in the plane's 2D sketch space. Scaled to unit length the vertices land on
// cube corners, so each triangle spans one pyramid's cross section.
func SketchVertexPairs(bigNumber float64) [2][2]segment.Point {
	p := RectalinearCoordinates([]float64{bigNumber}, []float64{sketchAngle})[0]
	return [2][2]segment.Point{
		{{X: -p.X, Y: p.Y}, {X: p.X, Y: p.Y}},
		{{X: -p.X, Y: -p.Y}, {X: p.X, Y: -p.Y}},
	}
}

// DiagonalCutTriangles maps the sketch triangles of every diagonal plane into
// 3D. Each triangle has the center as its first vertex.
func DiagonalCutTriangles(center r3.Vec, planes PlaneSet, bigNumber float64) [6][2][3]r3.Vec {
	pairs := SketchVertexPairs(bigNumber)
	var out [6][2][3]r3.Vec
	for i, d := range planes.Diagonal {
		sx, sy := d.SketchAxes()
		place := func(p segment.Point) r3.Vec {
			return r3.Add(center, r3.Add(r3.Scale(p.X, sx), r3.Scale(p.Y, sy)))
		}
		for j, pair := range pairs {
			out[i][j] = [3]r3.Vec{center, place(pair[0]), place(pair[1])}
		}
	}
	return out
}

// RectalinearCoordinates converts polar (radius, angle) pairs to XY points.
// Angles are in radians from the positive X axis. Extra entries in the longer
// slice are ignored.
func RectalinearCoordinates(radii, angles []float64) []segment.Point {
	n := min(len(radii), len(angles))
	out := make([]segment.Point, n)
	for i := range n {
		s, c := math.Sincos(angles[i])
		out[i] = segment.Point{X: radii[i] * c, Y: radii[i] * s}
	}
	return out
}
