package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotPart is the segmentation of one coordinate file.
type PlotPart struct {
	Name        string
	Coordinates []segment.Point
	Lines       []segment.Line
	Splines     []segment.Spline
}

// PlotOptions controls the xy-plot of sketch primitives.
type PlotOptions struct {
	// NoMarkers draws only the line work.
	NoMarkers bool
	// Annotate labels every coordinate with its row index.
	Annotate bool
	// Scale uses the same scale for both axes.
	Scale bool
	// Width and Height of the saved image; 6 by 4.5 inches when zero.
	Width, Height vg.Length
}

func toXYs(pts []segment.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// addCurve adds a line with optional vertex markers.
func addCurve(p *plot.Plot, xys plotter.XYs, c color.Color, dashed bool, glyph draw.GlyphDrawer) error {
	if glyph == nil {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.LineStyle.Color = c
		if dashed {
			l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		}
		p.Add(l)
		return nil
	}
	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = glyph
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(l, s)
	return nil
}

// NewXYPlot plots lines solid and splines dashed, one color per part.
func NewXYPlot(parts []PlotPart, opts PlotOptions) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	var lineGlyph, splineGlyph draw.GlyphDrawer
	if !opts.NoMarkers {
		lineGlyph, splineGlyph = draw.RingGlyph{}, draw.CrossGlyph{}
	}
	for i, part := range parts {
		var c color.Color = color.Black
		if len(parts) > 1 {
			c = plotutil.Color(i)
		}
		for _, l := range part.Lines {
			if err := addCurve(p, toXYs([]segment.Point{l.Start, l.End}), c, false, lineGlyph); err != nil {
				return nil, fmt.Errorf("render: part %s: %w", part.Name, err)
			}
		}
		for _, s := range part.Splines {
			if err := addCurve(p, toXYs(s), c, true, splineGlyph); err != nil {
				return nil, fmt.Errorf("render: part %s: %w", part.Name, err)
			}
		}
		if opts.Annotate && len(part.Coordinates) > 0 {
			labels := make([]string, len(part.Coordinates))
			for j := range labels {
				labels[j] = strconv.Itoa(j)
			}
			l, err := plotter.NewLabels(plotter.XYLabels{XYs: toXYs(part.Coordinates), Labels: labels})
			if err != nil {
				return nil, fmt.Errorf("render: part %s: %w", part.Name, err)
			}
			for j := range l.TextStyle {
				l.TextStyle[j].Color = c
			}
			p.Add(l)
		}
		if len(parts) > 1 && part.Name != "" {
			p.Legend.Add(part.Name, swatch(c))
		}
	}
	if opts.Scale {
		equalAxes(p)
	}
	return p, nil
}

// swatch is a legend entry for a part color.
func swatch(c color.Color) plot.Thumbnailer {
	l := &plotter.Line{}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	return l
}

// equalAxes widens the shorter axis so both share one scale on a square
// canvas.
func equalAxes(p *plot.Plot) {
	dx, dy := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	span := math.Max(dx, dy)
	cx, cy := (p.X.Min+p.X.Max)/2, (p.Y.Min+p.Y.Max)/2
	p.X.Min, p.X.Max = cx-span/2, cx+span/2
	p.Y.Min, p.Y.Max = cy-span/2, cy+span/2
}

// XYPlot saves the plot of parts to path. The image format follows the
// file extension (png, svg, pdf, ...).
func XYPlot(path string, parts []PlotPart, opts PlotOptions) error {
	if len(parts) == 0 {
		return fmt.Errorf("render: nothing to plot")
	}
	p, err := NewXYPlot(parts, opts)
	if err != nil {
		return err
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 6 * vg.Inch
	}
	if height <= 0 {
		height = 4.5 * vg.Inch
	}
	if opts.Scale {
		height = width
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	tracer().Infof("wrote xy-plot of %d parts to %s", len(parts), path)
	return nil
}
