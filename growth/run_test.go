package growth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/posterior"
	"github.com/anhnguyendepocen/bayes-course/report"
)

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Sampler: config.SamplerConfig{
			Chains:       2,
			Iterations:   400,
			Warmup:       400,
			Seed:         5,
			TargetAccept: 0.234,
		},
		Growth:  growthConfig(syntheticSpecimens(t, t.TempDir())),
		Output:  config.OutputConfig{Dir: filepath.Join(t.TempDir(), "out"), FigureWidth: 5, FigureHeight: 3.5},
	}
}

func summaryByName(t *testing.T, summaries []posterior.ParamSummary, name string) posterior.ParamSummary {
	t.Helper()
	for _, s := range summaries {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no summary for %q", name)
	return posterior.ParamSummary{}
}

func TestRun_RecoversCurve(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Growth.Families = []string{config.FamilyNormal, config.FamilyLognormal}

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 120, res.N)
	assert.Equal(t, 3, res.Dropped)
	assert.Len(t, res.DataSHA, 64)
	require.Len(t, res.AgeGrid, cfg.Growth.AgeGridN)
	assert.Less(t, res.AgeGrid[0], res.AgeGrid[len(res.AgeGrid)-1])

	require.Len(t, res.Families, 2)
	norm := res.Family(config.FamilyNormal)
	require.NotNil(t, norm)

	// The synthetic data came from Linf 55, k 0.25, t0 -0.5, sigma 2.
	assert.InDelta(t, 55, summaryByName(t, norm.Summary, "Linf").Mean, 5)
	assert.InDelta(t, 0.25, summaryByName(t, norm.Summary, "k").Mean, 0.08)
	assert.InDelta(t, -0.5, summaryByName(t, norm.Summary, "t0").Mean, 1.2)
	assert.InDelta(t, 2, summaryByName(t, norm.Summary, "sigma").Mean, 0.6)

	assert.Greater(t, norm.Acceptance.Mean, 0.05)
	assert.Less(t, norm.Acceptance.Mean, 0.8)
	require.NotNil(t, norm.Loo)
	assert.Greater(t, norm.Loo.Looic, 0.0)

	assert.Contains(t, cfg.Growth.Families, res.Best)
	require.Len(t, res.Comparisons, 1)

	// Every figure the result lists must exist under the output directory.
	require.NotEmpty(t, res.Figures)
	for _, f := range res.Figures {
		info, err := os.Stat(filepath.Join(res.OutDir, f))
		require.NoError(t, err, f)
		assert.Greater(t, info.Size(), int64(0), f)
	}
	assert.Contains(t, res.Figures, filepath.Join("figures", "growth_fit_normal.png"))
	assert.Contains(t, res.Figures, filepath.Join("figures", "growth_families.png"))
	assert.Contains(t, res.Figures, filepath.Join("figures", "density_Linf.png"))
	assert.Contains(t, res.Figures, filepath.Join("figures", "growth_prior_predictive.png"))
	assert.Contains(t, res.Figures, filepath.Join("figures", "trace_normal_Linf.png"))
}

func TestRun_WritesReport(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Sampler.Iterations = 200
	cfg.Sampler.Warmup = 200

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	man := res.Manifest(cfg.Sampler)
	require.NoError(t, report.Write(res.OutDir, man, res.Sections()...))

	raw, err := os.ReadFile(filepath.Join(res.OutDir, report.ReportFileName))
	require.NoError(t, err)
	md := string(raw)
	assert.Contains(t, md, "Bayesian workflow report — growth")
	assert.Contains(t, md, "Posterior summary — normal errors")
	assert.Contains(t, md, "| Linf |")
	assert.Contains(t, md, "Best predictive family")
	assert.Contains(t, md, "duplicate specimen records dropped")

	_, err = os.Stat(filepath.Join(res.OutDir, report.ManifestFileName))
	require.NoError(t, err)
}

func TestRun_ContextCanceled(t *testing.T) {
	cfg := pipelineConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_BadFamily(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Growth.Families = []string{"weibull"}

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
}
