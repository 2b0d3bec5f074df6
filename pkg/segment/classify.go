package segment

import "fmt"

// Classify turns segments into sketch primitives.
//
// Lines are returned in a fixed order: the connector from the end of each
// segment to the start of the next, then the closure line from the end of
// the last segment to the start of the first, then every two-point segment.
// Segments longer than two points are returned as splines. A single-point
// segment only appears as the shared vertex of its two connector lines.
func Classify(segments []Segment) (lines []Line, splines []Spline) {
	if len(segments) == 0 {
		return nil, nil
	}
	for k := 0; k+1 < len(segments); k++ {
		lines = append(lines, Line{
			Start: segments[k][len(segments[k])-1],
			End:   segments[k+1][0],
		})
	}
	last := segments[len(segments)-1]
	lines = append(lines, Line{Start: last[len(last)-1], End: segments[0][0]})

	for _, s := range segments {
		switch {
		case len(s) == 2:
			lines = append(lines, Line{Start: s[0], End: s[1]})
		case len(s) > 2:
			spline := make(Spline, len(s))
			copy(spline, s)
			splines = append(splines, spline)
		}
	}
	return lines, splines
}

// LinesAndSplines segments coords and classifies the result. It is the single
// entry point used by sketch builders.
func LinesAndSplines(coords []Point, threshold float64, tol Tolerance) ([]Line, []Spline, error) {
	if len(coords) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(coords))
	}
	lines, splines := Classify(Split(coords, threshold, tol))
	tracer().Infof("%d coordinates -> %d lines, %d splines", len(coords), len(lines), len(splines))
	return lines, splines, nil
}
