package segment

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(xy ...[2]float64) []Point {
	out := make([]Point, len(xy))
	for i, p := range xy {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}

var washer = pts(
	[2]float64{1, -0.5}, [2]float64{2, -0.5}, [2]float64{2, 0.5}, [2]float64{1, 0.5},
)

var vase = pts(
	[2]float64{5.1, -5}, [2]float64{5, -4.8}, [2]float64{4.5, -4}, [2]float64{4.1, -3},
	[2]float64{4, -2.5}, [2]float64{4, 2.5}, [2]float64{4.1, 3}, [2]float64{4.5, 4},
	[2]float64{5, 4.8}, [2]float64{5.1, 5}, [2]float64{3, 5}, [2]float64{3, -4},
	[2]float64{0, -4}, [2]float64{0, -5},
)

func TestIsClose(t *testing.T) {
	tol := DefaultTolerance()
	assert.True(t, tol.IsClose(1, 1))
	assert.True(t, tol.IsClose(100+100*5e-6, 100))
	assert.False(t, Tolerance{Rtol: 1e-6}.IsClose(100+100*5e-6, 100))
	assert.False(t, tol.IsClose(0, 1e-7))
	assert.True(t, Tolerance{}.IsClose(0, 1e-9), "zero value falls back to defaults")
}

func TestCompareDistance(t *testing.T) {
	coords := pts([2]float64{0, 0}, [2]float64{1, 0})
	tests := []struct {
		name      string
		threshold float64
		want      []bool
	}{
		{"shorter threshold breaks", 0.1, []bool{false, true}},
		{"longer threshold keeps", 10, []bool{false, false}},
		{"equal distance keeps", 1, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareDistance(coords, tt.threshold))
		})
	}
}

func TestCompareAlignment(t *testing.T) {
	tests := []struct {
		name   string
		coords []Point
		tol    Tolerance
		want   []bool
	}{
		{"horizontal", pts([2]float64{0, 0}, [2]float64{1, 0}), DefaultTolerance(), []bool{false, true}},
		{"vertical", pts([2]float64{0, 0}, [2]float64{0, 1}), DefaultTolerance(), []bool{false, true}},
		{"diagonal", pts([2]float64{0, 0}, [2]float64{1, 1}), DefaultTolerance(), []bool{false, false}},
		{"within default rtol", pts([2]float64{100, 0}, [2]float64{100 + 100*5e-6, 1}), DefaultTolerance(), []bool{false, true}},
		{"outside tight rtol", pts([2]float64{100, 0}, [2]float64{100 + 100*5e-6, 1}), Tolerance{Rtol: 1e-6}, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareAlignment(tt.coords, tt.tol))
		})
	}
}

func TestOrBools(t *testing.T) {
	got := OrBools([]bool{false, true, false, false}, []bool{false, false, true, false})
	assert.Equal(t, []bool{false, true, true, false}, got)
}

func TestClassifyBreaksFirstNeverBreaks(t *testing.T) {
	for _, coords := range [][]Point{washer, vase} {
		breaks := ClassifyBreaks(coords, 0, DefaultTolerance())
		require.Len(t, breaks, len(coords))
		assert.False(t, breaks[0])
	}
}

func TestSplitRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, threshold := range []float64{0.1, 1, 4, 100} {
		for _, coords := range [][]Point{washer, vase} {
			segments := Split(coords, threshold, DefaultTolerance())
			var joined []Point
			for _, s := range segments {
				require.NotEmpty(t, s)
				joined = append(joined, s...)
			}
			assert.Equal(t, coords, joined)
		}
	}
}

func TestWasher(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	segments := Split(washer, 4, DefaultTolerance())
	require.Len(t, segments, 4)
	for _, s := range segments {
		assert.Len(t, s, 1)
	}
	lines, splines, err := LinesAndSplines(washer, 4, DefaultTolerance())
	require.NoError(t, err)
	assert.Empty(t, splines)
	want := []Line{
		{washer[0], washer[1]},
		{washer[1], washer[2]},
		{washer[2], washer[3]},
		{washer[3], washer[0]},
	}
	assert.Equal(t, want, lines)
}

func TestVase(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	lines, splines, err := LinesAndSplines(vase, 4, DefaultTolerance())
	require.NoError(t, err)
	require.Len(t, splines, 2)
	assert.Equal(t, Spline(vase[0:5]), splines[0])
	assert.Equal(t, Spline(vase[5:10]), splines[1])
	want := []Line{
		{Point{4, -2.5}, Point{4, 2.5}},
		{Point{5.1, 5}, Point{3, 5}},
		{Point{3, 5}, Point{3, -4}},
		{Point{3, -4}, Point{0, -4}},
		{Point{0, -4}, Point{0, -5}},
		{Point{0, -5}, Point{5.1, -5}},
	}
	assert.Equal(t, want, lines)
}

func TestClassifyCompleteness(t *testing.T) {
	segments := []Segment{
		pts([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 3}),
		pts([2]float64{2, 0}),
		pts([2]float64{3, 0}, [2]float64{4, 1}),
	}
	lines, splines := Classify(segments)
	require.Len(t, splines, 1)
	assert.Equal(t, Spline(segments[0]), splines[0])

	assert.Contains(t, lines, Line{Point{3, 0}, Point{4, 1}}, "two-point segment is a line")
	assert.Contains(t, lines, Line{Point{4, 1}, Point{0, 0}}, "closure line")

	touching := 0
	for _, l := range lines {
		if l.Start == (Point{2, 0}) || l.End == (Point{2, 0}) {
			touching++
		}
	}
	assert.Equal(t, 2, touching, "single point is shared by exactly two connectors")
}

func TestClassifyEmpty(t *testing.T) {
	lines, splines := Classify(nil)
	assert.Nil(t, lines)
	assert.Nil(t, splines)
}

func TestLinesAndSplinesTooFewPoints(t *testing.T) {
	_, _, err := LinesAndSplines(pts([2]float64{1, 1}), 4, DefaultTolerance())
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
