package regression

import (
	"fmt"
	"strings"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// Sections renders the pipeline outcome as report sections: data provenance,
// one summary table per model, the predictive check, the derived quantities
// and the LOO comparison.
func (res *Result) Sections() []report.Section {
	sections := []report.Section{
		{Title: "Data", Body: res.dataSection()},
	}
	for _, mf := range []*ModelFit{&res.Quadratic, &res.Interaction} {
		sections = append(sections, report.Section{
			Title: fmt.Sprintf("Posterior summary — %s", mf.Name),
			Body:  fmt.Sprintf("`%s`\n\n%s", mf.Formula, report.SummaryTable(mf.Summary)),
		})
	}
	sections = append(sections,
		report.Section{Title: "Posterior predictive check", Body: res.ppcSection()},
		report.Section{Title: "Derived quantities", Body: res.derivedSection()},
		report.Section{Title: "Model comparison (PSIS-LOO)", Body: res.looSection()},
		report.Section{Title: "Figures", Body: report.FigureLinks(res.Figures)},
	)
	return sections
}

func (res *Result) dataSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d mesocosm tanks (`%s`).\n", res.N, res.DataPath)
	fmt.Fprintf(&b, "\npH standardized with mean %.3f, SD %.3f; nutrient with mean %.3f, SD %.3f.\n",
		res.PHScale.Mean, res.PHScale.SD, res.NutScale.Mean, res.NutScale.SD)
	return b.String()
}

func (res *Result) ppcSection() string {
	rows := [][]string{
		{"mean", fmt.Sprintf("%.2f", res.PPC.ObservedMean), fmt.Sprintf("%.3f", res.PPC.PMean)},
		{"sd", fmt.Sprintf("%.2f", res.PPC.ObservedSD), fmt.Sprintf("%.3f", res.PPC.PSD)},
	}

	var b strings.Builder
	b.WriteString(report.Table([]string{"statistic", "observed", "P(rep > obs)"}, rows))
	b.WriteString("\nTail probabilities near 0 or 1 would flag a statistic the model cannot reproduce.\n")
	return b.String()
}

func (res *Result) derivedSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- P(b2 < 0) = %.3f — evidence the pH response curves downward.\n", res.ProbB2Neg)
	fmt.Fprintf(&b, "- P(b4 > 0) = %.3f — evidence nutrient steepens the pH slope.\n", res.ProbB4Pos)
	fmt.Fprintf(&b, "\nExpected biomass at nutrient %.1f vs %.1f (pH %.2f): ratio %.2f, 95%% interval [%.2f, %.2f].\n",
		res.Ratio.NutrientHigh, res.Ratio.NutrientLow, res.Ratio.PH,
		res.Ratio.Median, res.Ratio.Lo, res.Ratio.Hi)
	return b.String()
}

func (res *Result) looSection() string {
	rows := make([][]string, 0, 2)
	for _, mf := range []*ModelFit{&res.Quadratic, &res.Interaction} {
		rows = append(rows, []string{
			mf.Name,
			fmt.Sprintf("%.1f", mf.Loo.Elpd),
			fmt.Sprintf("%.1f", mf.Loo.P),
			fmt.Sprintf("%.1f", mf.Loo.Looic),
			fmt.Sprintf("%.1f", mf.Loo.SE),
			fmt.Sprintf("%d", mf.Loo.HighK),
			fmt.Sprintf("%.3f", mf.Acceptance.Mean),
		})
	}

	var b strings.Builder
	b.WriteString(report.Table([]string{"model", "elpd", "p_loo", "looic", "se", "high k", "accept"}, rows))
	fmt.Fprintf(&b, "\nelpd(%s) − elpd(%s) = %.1f ± %.1f; favored: **%s**.\n",
		res.Comparison.ModelA, res.Comparison.ModelB,
		res.Comparison.ElpdDiff, res.Comparison.SE, res.Comparison.Favored())
	return b.String()
}

// Manifest describes this run for the output directory.
func (res *Result) Manifest(sc config.SamplerConfig) *report.Manifest {
	man := report.NewManifest("regression", res.RunID, sc, res.Elapsed)
	man.Data = append(man.Data, report.DataFile{Path: res.DataPath, SHA256: res.DataSHA})
	man.AddFigures(res.Figures...)
	return man
}
