package segment

import "math"

// Arc is a circular arc swept from StartAngle to EndAngle (radians, measured
// from +X). A negative sweep runs clockwise.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// ArcThrough returns the arc about center from start to end. The radius is
// taken from start; clockwise selects the sweep direction.
func ArcThrough(center, start, end Point, clockwise bool) Arc {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)
	if clockwise && a1 > a0 {
		a1 -= 2 * math.Pi
	}
	if !clockwise && a1 < a0 {
		a1 += 2 * math.Pi
	}
	return Arc{Center: center, Radius: center.Dist(start), StartAngle: a0, EndAngle: a1}
}

// At returns the point at angle a on the arc's circle.
func (a Arc) At(angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{X: a.Center.X + a.Radius*c, Y: a.Center.Y + a.Radius*s}
}

// Start returns the first point of the arc.
func (a Arc) Start() Point { return a.At(a.StartAngle) }

// End returns the last point of the arc.
func (a Arc) End() Point { return a.At(a.EndAngle) }

// Sample returns n+1 points evenly spaced along the arc, endpoints included.
func (a Arc) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	out := make([]Point, n+1)
	step := (a.EndAngle - a.StartAngle) / float64(n)
	for i := range out {
		out[i] = a.At(a.StartAngle + float64(i)*step)
	}
	return out
}
