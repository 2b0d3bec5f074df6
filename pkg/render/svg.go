// Package render draws parts and sketch coordinates to image files.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer traces with key 'turtle.render'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.render")
}

// Default image settings.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	margin        = 0.05
)

// ImageOptions sets the view of a part image. Angles are in degrees and
// applied about the global X, then Y, then Z axis. The viewer looks down
// the rotated -Z axis.
type ImageOptions struct {
	XAngle, YAngle, ZAngle float64
	Width, Height          int
}

func (o ImageOptions) resolved() ImageOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// view rotates points into the camera frame.
type view struct {
	rotations []r3.Rotation
}

func newView(o ImageOptions) view {
	var v view
	axes := []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	for i, deg := range []float64{o.XAngle, o.YAngle, o.ZAngle} {
		if deg != 0 {
			v.rotations = append(v.rotations, r3.NewRotation(deg*math.Pi/180, axes[i]))
		}
	}
	return v
}

func (v view) apply(p r3.Vec) r3.Vec {
	for _, r := range v.rotations {
		p = r.Rotate(p)
	}
	return p
}

// facet is a projected triangle ready to draw.
type facet struct {
	corners [3]r3.Vec
	depth   float64
	shade   float64
}

func facets(m *kernel.Mesh, v view) []facet {
	out := make([]facet, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		var f facet
		for j := range 3 {
			p := m.Vertex(int(m.Indices[3*t+j]))
			f.corners[j] = v.apply(r3.Vec{X: p[0], Y: p[1], Z: p[2]})
			f.depth += f.corners[j].Z / 3
		}
		n := r3.Cross(r3.Sub(f.corners[1], f.corners[0]), r3.Sub(f.corners[2], f.corners[0]))
		if l := r3.Norm(n); l > 0 {
			f.shade = math.Abs(n.Z / l)
		}
		out = append(out, f)
	}
	// Painter's order: farthest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].depth < out[j].depth })
	return out
}

// SVG draws the mesh as flat shaded triangles.
func SVG(w io.Writer, m *kernel.Mesh, opts ImageOptions) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("render: mesh is empty")
	}
	opts = opts.resolved()
	fs := facets(m, newView(opts))

	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, f := range fs {
		for _, c := range f.corners {
			lo.X, lo.Y = math.Min(lo.X, c.X), math.Min(lo.Y, c.Y)
			hi.X, hi.Y = math.Max(hi.X, c.X), math.Max(hi.Y, c.Y)
		}
	}
	width, height := float64(opts.Width), float64(opts.Height)
	scale := math.Min(
		width*(1-2*margin)/math.Max(hi.X-lo.X, 1e-12),
		height*(1-2*margin)/math.Max(hi.Y-lo.Y, 1e-12),
	)
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	screen := func(p r3.Vec) (int, int) {
		return int(math.Round(width/2 + (p.X-cx)*scale)),
			int(math.Round(height/2 - (p.Y-cy)*scale))
	}

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	xs, ys := make([]int, 3), make([]int, 3)
	for _, f := range fs {
		for j, c := range f.corners {
			xs[j], ys[j] = screen(c)
		}
		g := int(math.Round(255 * (0.25 + 0.7*f.shade)))
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:rgb(%d,%d,%d);stroke:rgb(40,40,40);stroke-width:0.25", g, g, g))
	}
	canvas.End()
	tracer().Debugf("rendered %d facets at scale %g", len(fs), scale)
	return nil
}

// SaveSVG writes the mesh image to path.
func SaveSVG(path string, m *kernel.Mesh, opts ImageOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("render: %w", cerr)
		}
	}()
	if err := SVG(f, m, opts); err != nil {
		return err
	}
	tracer().Infof("wrote image %s", path)
	return nil
}
