package segment

// CompareDistance flags every coordinate that lies farther than threshold from
// its predecessor. The comparison is strict; index 0 is always false.
func CompareDistance(coords []Point, threshold float64) []bool {
	bools := make([]bool, len(coords))
	for i := 1; i < len(coords); i++ {
		bools[i] = coords[i-1].Dist(coords[i]) > threshold
	}
	return bools
}

// CompareAlignment flags every coordinate that shares its x or y value with
// its predecessor, within tol. Index 0 is always false.
func CompareAlignment(coords []Point, tol Tolerance) []bool {
	bools := make([]bool, len(coords))
	for i := 1; i < len(coords); i++ {
		cur, prev := coords[i], coords[i-1]
		bools[i] = tol.IsClose(cur.X, prev.X) || tol.IsClose(cur.Y, prev.Y)
	}
	return bools
}

// OrBools combines two flag sequences element-wise. The result has the length
// of the shorter input.
func OrBools(a, b []bool) []bool {
	n := min(len(a), len(b))
	out := make([]bool, n)
	for i := range n {
		out[i] = a[i] || b[i]
	}
	return out
}

// ClassifyBreaks returns one flag per coordinate marking where a new segment
// must start. Index 0 never breaks.
func ClassifyBreaks(coords []Point, threshold float64, tol Tolerance) []bool {
	return OrBools(CompareDistance(coords, threshold), CompareAlignment(coords, tol))
}

// Split cuts coords before every break index. Every returned segment is
// non-empty and the segments concatenate back to coords exactly. The
// segments alias coords and must not be appended to.
func Split(coords []Point, threshold float64, tol Tolerance) []Segment {
	if len(coords) == 0 {
		return nil
	}
	breaks := ClassifyBreaks(coords, threshold, tol)
	var segments []Segment
	start := 0
	for i := 1; i < len(coords); i++ {
		if breaks[i] {
			segments = append(segments, Segment(coords[start:i:i]))
			start = i
		}
	}
	segments = append(segments, Segment(coords[start:len(coords):len(coords)]))
	tracer().Debugf("split %d coordinates into %d segments", len(coords), len(segments))
	return segments
}
