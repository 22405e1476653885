// Package report writes pipeline results to disk: a markdown report, the
// figures it links, and a TOML manifest describing the run. Posterior draws
// are never written; the report carries summaries only.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/errors"
	"github.com/anhnguyendepocen/bayes-course/logger"
	"github.com/anhnguyendepocen/bayes-course/posterior"
)

// ReportFileName is the markdown report written into the output directory.
const ReportFileName = "report.md"

// ManifestFileName is the TOML manifest written next to the report.
const ManifestFileName = "manifest.toml"

// Section is one titled markdown block of the report.
type Section struct {
	Title string
	Body  string
}

// Write renders the report and manifest into dir, creating it as needed.
// Figures are expected to exist already under dir; the manifest lists them
// by relative path.
func Write(dir string, man *Manifest, sections ...Section) error {
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "create report directory %s", dir)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Bayesian workflow report — %s\n\n", man.Pipeline)
	fmt.Fprintf(&b, "_run `%s`, generated %s_\n\n", man.RunID, man.Created.Format("2006-01-02 15:04:05 MST"))
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n", s.Title, strings.TrimRight(s.Body, "\n"))
		b.WriteString("\n")
	}

	reportPath := filepath.Join(dir, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(b.String()), config.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "write %s", reportPath)
	}

	raw, err := toml.Marshal(man)
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	manifestPath := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(manifestPath, raw, config.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "write %s", manifestPath)
	}

	logger.Infow("report written",
		logger.FieldPath, reportPath,
		logger.FieldCount, len(sections))
	return nil
}

// Table renders a GitHub-style markdown table.
func Table(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, r := range rows {
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	return b.String()
}

// SummaryTable renders parameter summaries the way both pipelines report
// them: posterior moments, central quantiles and convergence diagnostics.
func SummaryTable(summaries []posterior.ParamSummary) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.Name,
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.SD),
			fmt.Sprintf("%.3f", s.Lo95),
			fmt.Sprintf("%.3f", s.Median),
			fmt.Sprintf("%.3f", s.Hi95),
			fmt.Sprintf("%.3f", s.Rhat),
			fmt.Sprintf("%.0f", s.ESS),
		}
	}
	return Table([]string{"parameter", "mean", "sd", "2.5%", "50%", "97.5%", "R-hat", "ESS"}, rows)
}

// FigureLinks renders figure references as markdown images, one per line.
func FigureLinks(figures []string) string {
	var b strings.Builder
	for _, f := range figures {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		fmt.Fprintf(&b, "![%s](%s)\n\n", name, f)
	}
	return b.String()
}
