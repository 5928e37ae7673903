// Package render draws grids as filled contour PNG images.
package render

import (
	"image/color"
	"io"
	"math"

	"github.com/YuminosukeSato/electrospin/core/grid"
	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/YuminosukeSato/electrospin/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// DefaultLevels is the number of filled bands.
	DefaultLevels = 20

	defaultWidth    = 6 * vg.Inch
	defaultHeight   = 5 * vg.Inch
	colorBarWidth   = 1.1 * vg.Inch
	flatRangeMargin = 0.5
)

type options struct {
	width, height vg.Length
	levels        int
	lines         bool
}

// Option configures Contour.
type Option func(*options)

// WithSize sets the image size.
func WithSize(width, height vg.Length) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithLevels sets the number of filled bands.
func WithLevels(n int) Option {
	return func(o *options) {
		o.levels = n
	}
}

// WithContourLines toggles the iso-lines drawn between bands.
func WithContourLines(on bool) Option {
	return func(o *options) {
		o.lines = on
	}
}

// gridXYZ adapts grid.Grid to plotter.GridXYZ.
type gridXYZ struct{ g *grid.Grid }

func (a gridXYZ) Dims() (c, r int)   { return a.g.Dims() }
func (a gridXYZ) Z(c, r int) float64 { return a.g.At(c, r) }
func (a gridXYZ) X(c int) float64    { return a.g.X[c] }
func (a gridXYZ) Y(r int) float64    { return a.g.Y[r] }

// linePalette draws every contour line in one colour.
type linePalette struct{}

var _ palette.Palette = linePalette{}

func (linePalette) Colors() []color.Color {
	return []color.Color{color.Gray{Y: 40}}
}

// valueRange returns the z range, widened when the grid is flat.
func valueRange(g *grid.Grid) (lo, hi float64) {
	lo, hi = g.Min(), g.Max()
	if hi-lo <= 0 {
		lo, hi = lo-flatRangeMargin, hi+flatRangeMargin
	}
	return lo, hi
}

// Contour writes g as a PNG: heat-map bands, iso-lines, axis labels and
// title from the grid, and a vertical colour bar labelled g.ZLabel.
func Contour(w io.Writer, g *grid.Grid, opts ...Option) error {
	o := options{width: defaultWidth, height: defaultHeight, levels: DefaultLevels, lines: true}
	for _, opt := range opts {
		opt(&o)
	}
	if g == nil || g.Z == nil {
		return errors.NewValueError("render.Contour", "grid is empty")
	}
	if o.levels < 2 {
		return errors.NewValueError("render.Contour", "at least 2 levels are required")
	}
	if o.width <= colorBarWidth || o.height <= 0 {
		return errors.NewValueError("render.Contour", "image is too small")
	}
	if err := errors.CheckMatrix("render.Contour", g.Z, len(g.Y), len(g.X)); err != nil {
		return err
	}

	lo, hi := valueRange(g)
	cm := moreland.SmoothBlueRed()
	cm.SetMax(hi)
	cm.SetMin(lo)

	data := gridXYZ{g}
	p := plot.New()
	p.Title.Text = g.Title
	p.X.Label.Text = g.XLabel
	p.Y.Label.Text = g.YLabel

	hm := plotter.NewHeatMap(data, cm.Palette(o.levels))
	hm.Min, hm.Max = lo, hi
	p.Add(hm)

	if o.lines && g.Max() > g.Min() {
		levels := floats.Span(make([]float64, o.levels+1), lo, hi)
		p.Add(plotter.NewContour(data, levels[1:o.levels], linePalette{}))
	}

	bar := plot.New()
	bar.HideX()
	bar.Title.Text = " "
	bar.Y.Label.Text = g.ZLabel
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: o.levels})

	img := vgimg.New(o.width, o.height)
	dc := draw.New(img)
	plotArea := draw.Crop(dc, 0, -colorBarWidth, 0, 0)
	barArea := draw.Crop(dc, o.width-colorBarWidth, 0, 0, 0)
	if err := errors.SafeExecute("render.Contour", func() error {
		p.Draw(plotArea)
		bar.Draw(barArea)
		return nil
	}); err != nil {
		return err
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to encode PNG")
	}

	log.GetLoggerWithName("render").Debug("contour rendered",
		log.OperationKey, log.OperationRender,
		log.ResolutionKey, len(g.X),
	)
	return nil
}

// Levels returns the band boundaries Contour uses for g.
func Levels(g *grid.Grid, n int) []float64 {
	lo, hi := valueRange(g)
	if n < 1 || math.IsNaN(lo) {
		return nil
	}
	return floats.Span(make([]float64, n+1), lo, hi)
}
