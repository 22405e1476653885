package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"

	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/posterior"
)

func vizFit(t *testing.T) *mcmc.Fit {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	chains := make([]*mat.Dense, 2)
	for c := range chains {
		draws := mat.NewDense(150, 2, nil)
		for i := 0; i < 150; i++ {
			draws.Set(i, 0, 1.5+0.3*rng.NormFloat64())
			draws.Set(i, 1, -0.5+0.1*rng.NormFloat64())
		}
		chains[c] = draws
	}
	fit, err := mcmc.NewFit("toy", []string{"a", "b"}, chains,
		[]float64{0.25, 0.26}, 0, mcmc.DefaultConfig())
	require.NoError(t, err)
	return fit
}

func savePlot(t *testing.T, p *plot.Plot, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "figures", name)
	require.NoError(t, SavePNG(p, 6, 4, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrace(t *testing.T) {
	s := DefaultStyle()
	p, err := s.Trace(vizFit(t), "a")
	require.NoError(t, err)
	savePlot(t, p, "trace.png")

	_, err = s.Trace(vizFit(t), "nope")
	assert.ErrorIs(t, err, errors.ErrColumnNotFound)
}

func TestDensity(t *testing.T) {
	s := DefaultStyle()
	p, err := s.Density(vizFit(t), "b")
	require.NoError(t, err)
	savePlot(t, p, "density.png")
}

func TestDensityOverlay(t *testing.T) {
	s := DefaultStyle()
	rng := rand.New(rand.NewSource(3))
	prior := make([]float64, 300)
	post := make([]float64, 300)
	for i := range prior {
		prior[i] = 5 * rng.NormFloat64()
		post[i] = 1 + 0.4*rng.NormFloat64()
	}
	p, err := s.DensityOverlay(Series{Name: "prior", Values: prior}, Series{Name: "posterior", Values: post})
	require.NoError(t, err)
	savePlot(t, p, "overlay.png")

	_, err = s.DensityOverlay()
	assert.ErrorIs(t, err, errors.ErrEmptyData)

	_, err = s.DensityOverlay(Series{Name: "flat", Values: []float64{2, 2, 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"flat"`)
}

func TestIntervals(t *testing.T) {
	s := DefaultStyle()
	summaries := posterior.Summarize(vizFit(t))
	p, err := s.Intervals(summaries)
	require.NoError(t, err)
	savePlot(t, p, "intervals.png")

	_, err = s.Intervals(nil)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestScatterCurve(t *testing.T) {
	s := DefaultStyle()
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1.2, 1.9, 3.3, 3.8, 5.1}
	grid := []float64{0, 2.5, 5}
	median := []float64{0, 2.5, 5}
	lo := []float64{-0.5, 2, 4.5}
	hi := []float64{0.5, 3, 5.5}

	p, err := s.ScatterCurve(x, y, grid, median, lo, hi)
	require.NoError(t, err)
	savePlot(t, p, "scatter_curve.png")

	_, err = s.ScatterCurve(x, y[:3], grid, median, lo, hi)
	require.Error(t, err)

	_, err = s.ScatterCurve(x, y, grid, median[:2], lo, hi)
	require.Error(t, err)

	_, err = s.ScatterCurve(nil, nil, grid, median, lo, hi)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestPPCOverlay(t *testing.T) {
	s := DefaultStyle()
	rng := rand.New(rand.NewSource(9))
	observed := make([]float64, 40)
	for i := range observed {
		observed[i] = 10 + 2*rng.NormFloat64()
	}
	yrep := mat.NewDense(20, 40, nil)
	for r := 0; r < 20; r++ {
		for c := 0; c < 40; c++ {
			yrep.Set(r, c, 10+2*rng.NormFloat64())
		}
	}

	p, err := s.PPCOverlay(observed, yrep)
	require.NoError(t, err)
	savePlot(t, p, "ppc.png")

	_, err = s.PPCOverlay(observed[:10], yrep)
	require.Error(t, err)
}

func TestCurveOverlay(t *testing.T) {
	s := DefaultStyle()
	x := []float64{1, 2, 3}
	y := []float64{5, 9, 12}
	grid := []float64{0, 1.5, 3}
	curves := []NamedCurve{
		{Name: "normal", Values: []float64{4, 8, 12}},
		{Name: "student-t", Values: []float64{4.5, 8.2, 11.8}},
	}

	p, err := s.CurveOverlay(x, y, grid, curves)
	require.NoError(t, err)
	savePlot(t, p, "curve_overlay.png")

	_, err = s.CurveOverlay(x, y, grid, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyData)

	_, err = s.CurveOverlay(x, y, grid, []NamedCurve{{Name: "short", Values: []float64{1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"short"`)
}

func TestSpaghetti(t *testing.T) {
	s := DefaultStyle()
	grid := []float64{0, 1, 2, 3}
	curves := mat.NewDense(5, 4, nil)
	for r := 0; r < 5; r++ {
		for c := 0; c < 4; c++ {
			curves.Set(r, c, float64(r)+float64(c)*0.5)
		}
	}

	p, err := s.Spaghetti(grid, curves)
	require.NoError(t, err)
	savePlot(t, p, "spaghetti.png")

	_, err = s.Spaghetti(grid[:2], curves)
	require.Error(t, err)
}

func TestResiduals(t *testing.T) {
	s := DefaultStyle()
	fitted := []float64{1, 2, 3, 4}
	resid := []float64{0.1, -0.2, 0.05, -0.1}

	p, err := s.Residuals(fitted, resid)
	require.NoError(t, err)
	savePlot(t, p, "residuals.png")

	_, err = s.Residuals(fitted, resid[:2])
	require.Error(t, err)
}
