package mcmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4, cfg.Chains)
	assert.Equal(t, 1000, cfg.Iter)
	assert.Equal(t, 1000, cfg.Warmup)
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.InDelta(t, 0.234, cfg.TargetAccept, 1e-12)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero chains", func(c *Config) { c.Chains = 0 }, "chains"},
		{"negative chains", func(c *Config) { c.Chains = -1 }, "chains"},
		{"zero iterations", func(c *Config) { c.Iter = 0 }, "iterations"},
		{"negative warmup", func(c *Config) { c.Warmup = -1 }, "warmup"},
		{"target accept zero", func(c *Config) { c.TargetAccept = 0 }, "target acceptance"},
		{"target accept one", func(c *Config) { c.TargetAccept = 1 }, "target acceptance"},
		{"target accept above one", func(c *Config) { c.TargetAccept = 1.3 }, "target acceptance"},
		{"negative jitter", func(c *Config) { c.Jitter = -0.1 }, "jitter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidate_ZeroWarmupAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Warmup = 0
	assert.NoError(t, cfg.Validate())
}
