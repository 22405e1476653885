package growth

import (
	"fmt"
	"strings"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// Sections renders the pipeline outcome as report sections: the data
// provenance, one summary table per family, the LOOIC ranking and the
// figure gallery.
func (res *Result) Sections() []report.Section {
	sections := []report.Section{
		{Title: "Data", Body: res.dataSection()},
	}
	for i := range res.Families {
		ff := &res.Families[i]
		sections = append(sections, report.Section{
			Title: fmt.Sprintf("Posterior summary — %s errors", ff.Family),
			Body:  report.SummaryTable(ff.Summary),
		})
	}
	sections = append(sections,
		report.Section{Title: "Model comparison (PSIS-LOO)", Body: res.looSection()},
		report.Section{Title: "Figures", Body: report.FigureLinks(res.Figures)},
	)
	return sections
}

func (res *Result) dataSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s specimens from area %s (`%s`).\n", res.N, res.Species, res.Area, res.DataPath)
	if res.Dropped > 0 {
		fmt.Fprintf(&b, "\n%d duplicate specimen records dropped before fitting.\n", res.Dropped)
	}
	return b.String()
}

func (res *Result) looSection() string {
	rows := make([][]string, len(res.Families))
	for i, ff := range res.Families {
		rows[i] = []string{
			ff.Family,
			fmt.Sprintf("%.1f", ff.Loo.Elpd),
			fmt.Sprintf("%.1f", ff.Loo.P),
			fmt.Sprintf("%.1f", ff.Loo.Looic),
			fmt.Sprintf("%.1f", ff.Loo.SE),
			fmt.Sprintf("%d", ff.Loo.HighK),
			fmt.Sprintf("%.3f", ff.Acceptance.Mean),
		}
	}

	var b strings.Builder
	b.WriteString(report.Table([]string{"family", "elpd", "p_loo", "looic", "se", "high k", "accept"}, rows))
	fmt.Fprintf(&b, "\nBest predictive family: **%s**.\n", res.Best)
	for _, cmp := range res.Comparisons {
		fmt.Fprintf(&b, "\n- elpd(%s) − elpd(%s) = %.1f ± %.1f", cmp.ModelA, cmp.ModelB, cmp.ElpdDiff, cmp.SE)
	}
	return b.String()
}

// Manifest describes this run for the output directory.
func (res *Result) Manifest(sc config.SamplerConfig) *report.Manifest {
	man := report.NewManifest("growth", res.RunID, sc, res.Elapsed)
	man.Data = append(man.Data, report.DataFile{Path: res.DataPath, SHA256: res.DataSHA})
	man.AddFigures(res.Figures...)
	return man
}
