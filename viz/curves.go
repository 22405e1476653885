package viz

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// ScatterCurve plots observed points under a fitted curve: a shaded 95%
// credible band, the posterior median on top of it and the data on top of
// everything.
func (s Style) ScatterCurve(x, y, grid, median, lo, hi []float64) (*plot.Plot, error) {
	if len(x) == 0 || len(grid) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "scatter-curve figure")
	}
	if len(x) != len(y) {
		return nil, errors.Newf("scatter-curve figure: %d x values but %d y values", len(x), len(y))
	}
	if len(median) != len(grid) || len(lo) != len(grid) || len(hi) != len(grid) {
		return nil, errors.Newf("scatter-curve figure: curve lengths %d/%d/%d do not match grid length %d",
			len(median), len(lo), len(hi), len(grid))
	}

	p := plot.New()
	band, err := s.band(grid, lo, hi)
	if err != nil {
		return nil, err
	}
	curve, err := s.curve(grid, median, s.color(0), s.LineWidth)
	if err != nil {
		return nil, err
	}
	data, err := s.points(x, y)
	if err != nil {
		return nil, err
	}
	p.Add(band, curve, data)
	p.Legend.Add("median", curve)
	p.Legend.Add("observed", data)
	p.Legend.Top = true
	return p, nil
}

// PPCOverlay plots a kernel density of each replicated dataset as a faint
// line under a bold density of the observed data. When the bold line sits
// inside the haze of faint ones, the model reproduces the shape of the data.
func (s Style) PPCOverlay(observed []float64, yrep *mat.Dense) (*plot.Plot, error) {
	reps, n := yrep.Dims()
	if reps == 0 || len(observed) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "posterior-predictive overlay")
	}
	if n != len(observed) {
		return nil, errors.Newf("posterior-predictive overlay: replicates have %d values but observed has %d", n, len(observed))
	}

	p := plot.New()
	p.X.Label.Text = "value"
	p.Y.Label.Text = "density"
	var thumb *plotter.Line
	for r := 0; r < reps; r++ {
		grid, dens, err := KDE(yrep.RawRowView(r), 0)
		if err != nil {
			return nil, errors.Wrapf(err, "replicate %d", r)
		}
		line, err := s.curve(grid, dens, s.FaintColor, vg.Points(0.5))
		if err != nil {
			return nil, errors.Wrapf(err, "replicate %d", r)
		}
		p.Add(line)
		thumb = line
	}
	grid, dens, err := KDE(observed, 0)
	if err != nil {
		return nil, errors.Wrap(err, "observed data")
	}
	obs, err := s.curve(grid, dens, s.DataColor, s.LineWidth+vg.Points(0.5))
	if err != nil {
		return nil, errors.Wrap(err, "observed data")
	}
	p.Add(obs)
	p.Legend.Add("observed", obs)
	p.Legend.Add("replicated", thumb)
	p.Legend.Top = true
	return p, nil
}

// NamedCurve is one labeled curve over a shared grid.
type NamedCurve struct {
	Name   string
	Values []float64
}

// CurveOverlay plots observed points under several named curves over a
// shared grid, one palette color per curve. Used to lay the median fits of
// competing models over the same data.
func (s Style) CurveOverlay(x, y, grid []float64, curves []NamedCurve) (*plot.Plot, error) {
	if len(grid) == 0 || len(curves) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "curve overlay")
	}
	if len(x) != len(y) {
		return nil, errors.Newf("curve overlay: %d x values but %d y values", len(x), len(y))
	}
	p := plot.New()
	p.Legend.Top = true
	if len(x) > 0 {
		data, err := s.points(x, y)
		if err != nil {
			return nil, err
		}
		p.Add(data)
	}
	for i, c := range curves {
		if len(c.Values) != len(grid) {
			return nil, errors.Newf("curve overlay: %q has %d points but grid has %d",
				c.Name, len(c.Values), len(grid))
		}
		line, err := s.curve(grid, c.Values, s.color(i), s.LineWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "curve %q", c.Name)
		}
		p.Add(line)
		p.Legend.Add(c.Name, line)
	}
	return p, nil
}

// Spaghetti plots each row of curves as a faint line over the grid. Useful
// for prior-predictive draws and for a thinned handful of posterior curves.
func (s Style) Spaghetti(grid []float64, curves *mat.Dense) (*plot.Plot, error) {
	rows, cols := curves.Dims()
	if rows == 0 || len(grid) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "spaghetti figure")
	}
	if cols != len(grid) {
		return nil, errors.Newf("spaghetti figure: curves have %d points but grid has %d", cols, len(grid))
	}
	p := plot.New()
	for r := 0; r < rows; r++ {
		line, err := s.curve(grid, curves.RawRowView(r), s.FaintColor, vg.Points(0.5))
		if err != nil {
			return nil, errors.Wrapf(err, "curve %d", r)
		}
		p.Add(line)
	}
	return p, nil
}

// Residuals plots residuals against fitted values with a dashed zero line.
// Curvature or a funnel shape here is the quickest sign of a wrong mean
// structure or error family.
func (s Style) Residuals(fitted, resid []float64) (*plot.Plot, error) {
	if len(fitted) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "residual figure")
	}
	if len(fitted) != len(resid) {
		return nil, errors.Newf("residual figure: %d fitted values but %d residuals", len(fitted), len(resid))
	}
	p := plot.New()
	p.X.Label.Text = "fitted"
	p.Y.Label.Text = "residual"

	lo, hi := fitted[0], fitted[0]
	for _, v := range fitted {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	zero, err := s.curve([]float64{lo, hi}, []float64{0, 0}, s.color(1), vg.Points(1))
	if err != nil {
		return nil, err
	}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	data, err := s.points(fitted, resid)
	if err != nil {
		return nil, err
	}
	p.Add(zero, data)
	return p, nil
}

func (s Style) band(grid, lo, hi []float64) (*plotter.Polygon, error) {
	pts := make(plotter.XYs, 0, 2*len(grid))
	for i := range grid {
		pts = append(pts, plotter.XY{X: grid[i], Y: hi[i]})
	}
	for i := len(grid) - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: grid[i], Y: lo[i]})
	}
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, errors.Wrap(err, "credible band")
	}
	poly.Color = s.BandColor
	poly.LineStyle.Color = color.Transparent
	return poly, nil
}

func (s Style) curve(x, y []float64, c color.Color, width vg.Length) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = width
	return line, nil
}

func (s Style) points(x, y []float64) (*plotter.Scatter, error) {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "data points")
	}
	sc.GlyphStyle.Color = s.DataColor
	sc.GlyphStyle.Radius = s.PointRadius
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	return sc, nil
}
