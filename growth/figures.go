package growth

import (
	"fmt"
	"path/filepath"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/posterior"
	"github.com/anhnguyendepocen/bayes-course/viz"
)

// nPriorCurves is how many prior draws the prior-predictive figure shows.
const nPriorCurves = 50

// writeFigures renders every growth figure under OutDir/figures and returns
// their paths relative to OutDir.
func writeFigures(cfg *config.Config, res *Result, sp *Specimens) ([]string, error) {
	style := viz.DefaultStyle()
	w, h := cfg.Output.FigureWidth, cfg.Output.FigureHeight

	var written []string
	save := func(p *plot.Plot, name string) error {
		rel := filepath.Join("figures", name)
		if err := viz.SavePNG(p, w, h, filepath.Join(res.OutDir, rel)); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	}

	overlay := make([]viz.NamedCurve, 0, len(res.Families))
	for i := range res.Families {
		ff := &res.Families[i]
		pred, err := posterior.Predict(ff.Fit, len(res.AgeGrid), func(theta []float64) []float64 {
			return Curve(theta, res.AgeGrid)
		})
		if err != nil {
			return nil, err
		}
		bands := posterior.QuantileCurves(pred, []float64{0.025, 0.5, 0.975})

		p, err := style.ScatterCurve(sp.Age, sp.Length, res.AgeGrid, bands[1], bands[0], bands[2])
		if err != nil {
			return nil, err
		}
		p.Title.Text = fmt.Sprintf("von Bertalanffy fit, %s errors", ff.Family)
		p.X.Label.Text = "age (years)"
		p.Y.Label.Text = "length (cm)"
		if err := save(p, fmt.Sprintf("growth_fit_%s.png", ff.Family)); err != nil {
			return nil, err
		}
		overlay = append(overlay, viz.NamedCurve{Name: ff.Family, Values: bands[1]})

		for _, param := range ff.Fit.ParamNames {
			tp, err := style.Trace(ff.Fit, param)
			if err != nil {
				return nil, err
			}
			if err := save(tp, fmt.Sprintf("trace_%s_%s.png", ff.Family, param)); err != nil {
				return nil, err
			}
		}
	}

	p, err := style.CurveOverlay(sp.Age, sp.Length, res.AgeGrid, overlay)
	if err != nil {
		return nil, err
	}
	p.Title.Text = "median growth curve by error family"
	p.X.Label.Text = "age (years)"
	p.Y.Label.Text = "length (cm)"
	if err := save(p, "growth_families.png"); err != nil {
		return nil, err
	}

	// The three curve parameters are shared by every family, so their
	// posteriors overlay directly.
	for _, param := range []string{"Linf", "k", "t0"} {
		series := make([]viz.Series, 0, len(res.Families))
		for i := range res.Families {
			draws, err := res.Families[i].Fit.Column(param)
			if err != nil {
				return nil, err
			}
			series = append(series, viz.Series{Name: res.Families[i].Family, Values: draws})
		}
		dp, err := style.DensityOverlay(series...)
		if err != nil {
			return nil, err
		}
		dp.Title.Text = param + " posterior by family"
		if err := save(dp, fmt.Sprintf("density_%s.png", param)); err != nil {
			return nil, err
		}
	}

	sg, err := style.Spaghetti(res.AgeGrid, priorCurves(res.AgeGrid, nPriorCurves, cfg.Sampler.Seed))
	if err != nil {
		return nil, err
	}
	sg.Title.Text = "prior predictive growth curves"
	sg.X.Label.Text = "age (years)"
	sg.Y.Label.Text = "length (cm)"
	if err := save(sg, "growth_prior_predictive.png"); err != nil {
		return nil, err
	}

	return written, nil
}

// priorCurves samples growth curves from the priors alone.
func priorCurves(grid []float64, n int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	linf := distuv.Normal{Mu: 60, Sigma: 20, Src: rng}
	k := distuv.Normal{Mu: 0.3, Sigma: 0.3, Src: rng}
	t0 := distuv.Normal{Mu: 0, Sigma: 2, Src: rng}

	out := mat.NewDense(n, len(grid), nil)
	theta := make([]float64, 3)
	for i := 0; i < n; i++ {
		theta[idxLinf] = positiveDraw(linf)
		theta[idxK] = positiveDraw(k)
		theta[idxT0] = t0.Rand()
		out.SetRow(i, Curve(theta, grid))
	}
	return out
}

// positiveDraw rejects until the normal draw lands on the parameter's
// support.
func positiveDraw(d distuv.Normal) float64 {
	for {
		if v := d.Rand(); v > 0 {
			return v
		}
	}
}
