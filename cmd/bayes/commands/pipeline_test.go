package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/mcmc"
	"github.com/anhnguyendepocen/bayes-course/report"
)

// testCommand builds a bare command carrying the persistent flags the
// helpers read.
func testCommand(t *testing.T, cfgPath string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", cfgPath, "")
	cmd.Flags().Bool("json-logs", false, "")
	cmd.Flags().Count("verbose", "")
	return cmd
}

func writtenDefaultConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bayes.toml")
	require.NoError(t, config.WriteDefault(path, false))
	return path
}

func TestGrowthConfig_FlagOverrides(t *testing.T) {
	cmd := testCommand(t, writtenDefaultConfig(t))

	growthFamily = "lognormal"
	growthOut = "elsewhere"
	t.Cleanup(func() { growthFamily, growthOut = "", "" })

	cfg, err := growthConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{config.FamilyLognormal}, cfg.Growth.Families)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestGrowthConfig_RejectsUnknownFamily(t *testing.T) {
	cmd := testCommand(t, writtenDefaultConfig(t))

	growthFamily = "weibull"
	t.Cleanup(func() { growthFamily = "" })

	_, err := growthConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weibull")
}

func TestRegressionConfig_OutOverride(t *testing.T) {
	cmd := testCommand(t, writtenDefaultConfig(t))

	regressionOut = "runs/today"
	t.Cleanup(func() { regressionOut = "" })

	cfg, err := regressionConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "runs/today", cfg.Output.Dir)
}

func TestCheckOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Output: config.OutputConfig{Dir: dir}}

	// An empty directory is fine.
	require.NoError(t, checkOutputDir(cfg))

	// A previous report blocks the run unless overwrite is allowed.
	require.NoError(t, os.WriteFile(filepath.Join(dir, report.ReportFileName), []byte("# old"), 0o644))
	err := checkOutputDir(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)

	cfg.Output.Overwrite = true
	require.NoError(t, checkOutputDir(cfg))
}

func TestWatchPaths(t *testing.T) {
	cfgPath := writtenDefaultConfig(t)
	cmd := testCommand(t, cfgPath)

	paths := watchPaths(cmd, "data/mesocosm.csv")
	assert.Equal(t, []string{"data/mesocosm.csv", cfgPath}, paths)
}

func TestEmitterFor(t *testing.T) {
	cmd := testCommand(t, "")
	assert.IsType(t, &mcmc.CLIEmitter{}, emitterFor(cmd))

	require.NoError(t, cmd.Flags().Set("json-logs", "true"))
	assert.IsType(t, &mcmc.JSONEmitter{}, emitterFor(cmd))
}
