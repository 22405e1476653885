package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/posterior"
)

// Series is one named sample for a density overlay.
type Series struct {
	Name   string
	Values []float64
}

// Trace plots the per-chain draws of one parameter against iteration index.
// Well-mixed chains overlap into a single fuzzy band; a chain wandering off
// on its own is the first thing this figure makes visible.
func (s Style) Trace(fit *mcmc.Fit, param string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s trace", param)
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = param
	p.Legend.Top = true

	for c := 0; c < fit.NumChains(); c++ {
		draws, err := fit.ChainColumn(c, param)
		if err != nil {
			return nil, err
		}
		pts := make(plotter.XYs, len(draws))
		for i, v := range draws {
			pts[i] = plotter.XY{X: float64(i), Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "trace line for chain %d", c)
		}
		line.Color = s.color(c)
		line.Width = vg.Points(0.75)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("chain %d", c), line)
	}
	return p, nil
}

// Density plots a kernel density of the pooled draws of one parameter.
func (s Style) Density(fit *mcmc.Fit, param string) (*plot.Plot, error) {
	draws, err := fit.Column(param)
	if err != nil {
		return nil, err
	}
	return s.DensityOverlay(Series{Name: param, Values: draws})
}

// DensityOverlay plots kernel densities of several samples on shared axes,
// one color per series. Handy for prior-versus-posterior pictures and for
// comparing the same parameter across error families.
func (s Style) DensityOverlay(series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no series to plot")
	}
	p := plot.New()
	p.X.Label.Text = "value"
	p.Y.Label.Text = "density"
	p.Legend.Top = true

	for i, ser := range series {
		grid, dens, err := KDE(ser.Values, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "density of %q", ser.Name)
		}
		pts := make(plotter.XYs, len(grid))
		for j := range grid {
			pts[j] = plotter.XY{X: grid[j], Y: dens[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "density line for %q", ser.Name)
		}
		line.Color = s.color(i)
		line.Width = s.LineWidth
		p.Add(line)
		p.Legend.Add(ser.Name, line)
	}
	return p, nil
}

// Intervals plots one row per parameter: the posterior median as a point,
// the central 50% interval as a thick segment and the central 95% interval
// as a thin one.
func (s Style) Intervals(summaries []posterior.ParamSummary) (*plot.Plot, error) {
	if len(summaries) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no summaries to plot")
	}
	p := plot.New()
	p.X.Label.Text = "value"

	names := make([]string, len(summaries))
	for i, sum := range summaries {
		names[i] = sum.Name
		y := float64(i)

		wide, err := s.segment(sum.Lo95, sum.Hi95, y, vg.Points(1))
		if err != nil {
			return nil, errors.Wrapf(err, "interval for %q", sum.Name)
		}
		thick, err := s.segment(sum.Q25, sum.Q75, y, vg.Points(3.5))
		if err != nil {
			return nil, errors.Wrapf(err, "interval for %q", sum.Name)
		}
		point, err := plotter.NewScatter(plotter.XYs{{X: sum.Median, Y: y}})
		if err != nil {
			return nil, errors.Wrapf(err, "median point for %q", sum.Name)
		}
		point.GlyphStyle.Color = s.DataColor
		point.GlyphStyle.Radius = s.PointRadius + vg.Points(0.5)
		point.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(wide, thick, point)
	}
	p.NominalY(names...)
	return p, nil
}

func (s Style) segment(x0, x1, y float64, width vg.Length) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return nil, err
	}
	line.Color = s.color(0)
	line.Width = width
	return line, nil
}
