package partition

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a planar polygon given by its vertices in order.
type Surface []r3.Vec

// Centroid returns the vertex average of the surface.
func (s Surface) Centroid() r3.Vec {
	var c r3.Vec
	if len(s) == 0 {
		return c
	}
	for _, v := range s {
		c = r3.Add(c, v)
	}
	return r3.Scale(1/float64(len(s)), c)
}

// corner signs in binary order: bit 2 is x, bit 1 is y, bit 0 is z, set bit
// means negative.
func cornerSign(i int) (sx, sy, sz float64) {
	sign := func(bit int) float64 {
		if i&bit != 0 {
			return -1
		}
		return 1
	}
	return sign(4), sign(2), sign(1)
}

// CubeCorners returns the eight corners of the cube centered on center and
// aligned with f, each at distance size from the center.
func CubeCorners(center r3.Vec, f Frame, size float64) [8]r3.Vec {
	var out [8]r3.Vec
	for i := range out {
		sx, sy, sz := cornerSign(i)
		dir := r3.Add(r3.Add(r3.Scale(sx, f.X), r3.Scale(sy, f.Y)), r3.Scale(sz, f.Z))
		out[i] = r3.Add(center, r3.Scale(size, Normalize(dir)))
	}
	return out
}

// cubeFaces lists the corner indices of each face in pyramid order
// +X, -X, +Y, -Y, +Z, -Z. Vertices wind around the face.
var cubeFaces = [6][4]int{
	{0, 2, 3, 1}, // +x
	{4, 5, 7, 6}, // -x
	{0, 1, 5, 4}, // +y
	{2, 6, 7, 3}, // -y
	{0, 4, 6, 2}, // +z
	{1, 3, 7, 5}, // -z
}

// cubeEdges lists the twelve cube edges as corner index pairs.
var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along z
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along x
}

// PyramidSurfaces returns the six square faces of the cube centered on center
// in the frame of x and z. Faces are ordered +X, -X, +Y, -Y, +Z, -Z.
func PyramidSurfaces(center, x, z r3.Vec, size float64) [6]Surface {
	corners := CubeCorners(center, DeriveFrame(x, z), size)
	var out [6]Surface
	for i, face := range cubeFaces {
		s := make(Surface, 4)
		for j, c := range face {
			s[j] = corners[c]
		}
		out[i] = s
	}
	return out
}

// PyramidSideSurfaces returns the twelve triangles joining center to each
// cube edge. Every triangle is a side face of two neighbouring pyramids.
func PyramidSideSurfaces(center, x, z r3.Vec, size float64) [12]Surface {
	corners := CubeCorners(center, DeriveFrame(x, z), size)
	var out [12]Surface
	for i, e := range cubeEdges {
		out[i] = Surface{center, corners[e[0]], corners[e[1]]}
	}
	return out
}

// SurfacesByVector keeps the surfaces whose centroid lies on the positive side
// of axis as seen from center. Surfaces with a dot product of numerically zero
// are dropped.
func SurfacesByVector(surfaces []Surface, axis, center r3.Vec) []Surface {
	var out []Surface
	for _, s := range surfaces {
		d := r3.Dot(r3.Sub(s.Centroid(), center), axis)
		if isZero(d) {
			continue
		}
		if d > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Pyramid is the four-sided pyramid with its apex at the frame center and its
// base on the cube face pierced by Axis.
type Pyramid struct {
	Axis  r3.Vec
	Apex  r3.Vec
	Base  Surface
	Faces []Surface
}

// Pyramids classifies the cube faces and side triangles into the six pyramids
// in order +X, -X, +Y, -Y, +Z, -Z. Each pyramid receives its square base and
// four side triangles.
func Pyramids(center, x, z r3.Vec, size float64) [6]Pyramid {
	f := DeriveFrame(x, z)
	squares := PyramidSurfaces(center, x, z, size)
	sides := PyramidSideSurfaces(center, x, z, size)
	all := make([]Surface, 0, len(squares)+len(sides))
	all = append(all, squares[:]...)
	all = append(all, sides[:]...)

	var out [6]Pyramid
	for i := range out {
		axis := f.Axis(i)
		faces := SurfacesByVector(all, axis, center)
		out[i] = Pyramid{Axis: axis, Apex: center, Base: squares[i], Faces: faces}
		tracer().Debugf("pyramid %d: %d faces", i, len(faces))
	}
	return out
}
