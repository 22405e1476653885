package regression

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/dataset"
	"github.com/anhnguyendepocen/bayes-course/posterior"
	"github.com/anhnguyendepocen/bayes-course/viz"
)

// writeFigures renders every regression figure under OutDir/figures and
// returns their paths relative to OutDir.
func writeFigures(cfg *config.Config, res *Result, tanks *Tanks, modelA, modelB *Model, yrep *mat.Dense) ([]string, error) {
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

	gridFrame, err := dataset.SeqGrid(ColPH, floats.Min(tanks.PH), floats.Max(tanks.PH), phGridN)
	if err != nil {
		return nil, err
	}
	phGrid, err := gridFrame.Floats(ColPH)
	if err != nil {
		return nil, err
	}
	zpGrid := make([]float64, len(phGrid))
	for i, v := range phGrid {
		zpGrid[i] = tanks.PHScale.Apply(v)
	}

	// Fitted biomass over pH at the two nutrient settings, under the
	// interaction model: one crossed grid, one prediction pass.
	levels := []struct {
		label string
		slug  string
	}{
		{"high nutrient", "high"},
		{"low nutrient", "low"},
	}
	zpFrame, err := dataset.New(dataset.FloatCol(ColPHScaled, zpGrid))
	if err != nil {
		return nil, err
	}
	crossed, err := dataset.CrossGrid(zpFrame, ColNutrientScaled, []float64{
		tanks.NutScale.Apply(cfg.Regression.NutrientHigh),
		tanks.NutScale.Apply(cfg.Regression.NutrientLow),
	})
	if err != nil {
		return nil, err
	}
	x, err := modelB.Terms().Matrix(crossed)
	if err != nil {
		return nil, err
	}
	pred, err := posterior.Predict(res.Interaction.Fit, crossed.Len(), func(theta []float64) []float64 {
		return modelB.PredictRows(x, theta)
	})
	if err != nil {
		return nil, err
	}
	bands := posterior.QuantileCurves(pred, []float64{0.025, 0.5, 0.975})

	n := len(phGrid)
	overlay := make([]viz.NamedCurve, 0, len(levels))
	for l, lv := range levels {
		lo, mid, hi := bands[0][l*n:(l+1)*n], bands[1][l*n:(l+1)*n], bands[2][l*n:(l+1)*n]

		p, err := style.ScatterCurve(tanks.PH, tanks.Biomass, phGrid, mid, lo, hi)
		if err != nil {
			return nil, err
		}
		p.Title.Text = fmt.Sprintf("fitted biomass at %s", lv.label)
		p.X.Label.Text = "pH"
		p.Y.Label.Text = "biomass (g)"
		if err := save(p, fmt.Sprintf("regression_response_%s.png", lv.slug)); err != nil {
			return nil, err
		}
		overlay = append(overlay, viz.NamedCurve{Name: lv.label, Values: mid})
	}

	p, err := style.CurveOverlay(tanks.PH, tanks.Biomass, phGrid, overlay)
	if err != nil {
		return nil, err
	}
	p.Title.Text = "median biomass response by nutrient setting"
	p.X.Label.Text = "pH"
	p.Y.Label.Text = "biomass (g)"
	if err := save(p, "regression_response.png"); err != nil {
		return nil, err
	}

	ip, err := style.Intervals(res.Interaction.Summary)
	if err != nil {
		return nil, err
	}
	ip.Title.Text = "interaction model coefficients"
	if err := save(ip, "regression_intervals.png"); err != nil {
		return nil, err
	}

	// Replicate densities under the observed one; a handful is enough for
	// the eye.
	reps, nobs := yrep.Dims()
	if reps > nOverlayReplicates {
		reps = nOverlayReplicates
	}
	pp, err := style.PPCOverlay(tanks.Biomass, yrep.Slice(0, reps, 0, nobs).(*mat.Dense))
	if err != nil {
		return nil, err
	}
	pp.Title.Text = "posterior predictive check"
	if err := save(pp, "regression_ppc.png"); err != nil {
		return nil, err
	}

	// Residuals at the posterior-mean coefficients of the quadratic model.
	thetaBar := make([]float64, len(res.Quadratic.Summary))
	for i, s := range res.Quadratic.Summary {
		thetaBar[i] = s.Mean
	}
	fitted := modelA.Fitted(thetaBar)
	resid := make([]float64, len(fitted))
	for i := range resid {
		resid[i] = tanks.Biomass[i] - fitted[i]
	}
	rp, err := style.Residuals(fitted, resid)
	if err != nil {
		return nil, err
	}
	rp.Title.Text = "quadratic model residuals"
	if err := save(rp, "regression_residuals.png"); err != nil {
		return nil, err
	}

	for _, mf := range []*ModelFit{&res.Quadratic, &res.Interaction} {
		for _, param := range mf.Fit.ParamNames {
			tp, err := style.Trace(mf.Fit, param)
			if err != nil {
				return nil, err
			}
			if err := save(tp, fmt.Sprintf("trace_%s_%s.png", mf.Name, param)); err != nil {
				return nil, err
			}
		}
	}

	return written, nil
}
