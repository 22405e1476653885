package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/system config
	v := viper.New()
	SetDefaults(v)

	// Load config from isolated viper
	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	// Check default values are applied
	if cfg.Sampler.Chains != 4 {
		t.Errorf("expected default chains 4, got %d", cfg.Sampler.Chains)
	}
	if cfg.Sampler.Iterations != 1000 {
		t.Errorf("expected default iterations 1000, got %d", cfg.Sampler.Iterations)
	}
	if cfg.Sampler.TargetAccept != 0.234 {
		t.Errorf("expected default target_accept 0.234, got %g", cfg.Sampler.TargetAccept)
	}
	if cfg.Growth.DataPath != "data/pcod-growth.csv" {
		t.Errorf("expected default growth data path, got %q", cfg.Growth.DataPath)
	}
	if len(cfg.Growth.Families) != 3 {
		t.Errorf("expected 3 default families, got %v", cfg.Growth.Families)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("expected default output dir 'out', got %q", cfg.Output.Dir)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		if err != nil {
			t.Fatalf("LoadWithViper() failed: %v", err)
		}
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero chains is invalid",
			mutate:  func(c *Config) { c.Sampler.Chains = 0 },
			wantErr: true,
		},
		{
			name:    "negative iterations is invalid",
			mutate:  func(c *Config) { c.Sampler.Iterations = -10 },
			wantErr: true,
		},
		{
			name:    "zero warmup is valid (no adaptation)",
			mutate:  func(c *Config) { c.Sampler.Warmup = 0 },
			wantErr: false,
		},
		{
			name:    "negative warmup is invalid",
			mutate:  func(c *Config) { c.Sampler.Warmup = -1 },
			wantErr: true,
		},
		{
			name:    "target accept of 1 is invalid",
			mutate:  func(c *Config) { c.Sampler.TargetAccept = 1.0 },
			wantErr: true,
		},
		{
			name:    "empty growth data path is invalid",
			mutate:  func(c *Config) { c.Growth.DataPath = "" },
			wantErr: true,
		},
		{
			name:    "unknown error family is invalid",
			mutate:  func(c *Config) { c.Growth.Families = []string{"cauchy"} },
			wantErr: true,
		},
		{
			name:    "empty family list is invalid",
			mutate:  func(c *Config) { c.Growth.Families = nil },
			wantErr: true,
		},
		{
			name:    "nutrient high below low is invalid",
			mutate:  func(c *Config) { c.Regression.NutrientHigh = 1; c.Regression.NutrientLow = 5 },
			wantErr: true,
		},
		{
			name:    "zero figure width is invalid",
			mutate:  func(c *Config) { c.Output.FigureWidth = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bayes.toml")

	content := `
[sampler]
chains = 2
iterations = 250

[growth]
species = "Walleye pollock"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	// Explicit values win
	if cfg.Sampler.Chains != 2 {
		t.Errorf("expected chains 2, got %d", cfg.Sampler.Chains)
	}
	if cfg.Growth.Species != "Walleye pollock" {
		t.Errorf("expected overridden species, got %q", cfg.Growth.Species)
	}

	// Defaults fill the rest
	if cfg.Sampler.Warmup != 1000 {
		t.Errorf("expected default warmup 1000, got %d", cfg.Sampler.Warmup)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("expected default output dir, got %q", cfg.Output.Dir)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bayes.toml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() failed: %v", err)
	}

	// The written file must parse as TOML and load cleanly
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	var settings map[string]interface{}
	if err := toml.Unmarshal(data, &settings); err != nil {
		t.Fatalf("written config is not valid TOML: %v", err)
	}
	if _, ok := settings["sampler"]; !ok {
		t.Error("written config missing [sampler] section")
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() on written default failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written default config does not validate: %v", err)
	}
}

func TestWriteDefault_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bayes.toml")

	if err := os.WriteFile(path, []byte("# custom\n"), 0644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	// Without force the existing file is preserved
	if err := WriteDefault(path, false); err == nil {
		t.Fatal("expected error when config exists and force is false")
	}

	// With force the old file rotates into .back1
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("WriteDefault(force) failed: %v", err)
	}
	backup, err := os.ReadFile(path + ".back1")
	if err != nil {
		t.Fatalf("expected .back1 backup: %v", err)
	}
	if string(backup) != "# custom\n" {
		t.Errorf("backup content = %q, want original file", string(backup))
	}
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bayes.toml")

	// Three successive overwrites should leave .back1..back3
	contents := []string{"# v1\n", "# v2\n", "# v3\n", "# v4\n"}
	for _, c := range contents {
		if err := createBackup(path); err != nil {
			t.Fatalf("createBackup() failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(c), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	// Newest backup holds v3, oldest v1
	b1, err := os.ReadFile(path + ".back1")
	if err != nil {
		t.Fatalf("missing .back1: %v", err)
	}
	if string(b1) != "# v3\n" {
		t.Errorf(".back1 = %q, want %q", string(b1), "# v3\n")
	}

	b3, err := os.ReadFile(path + ".back3")
	if err != nil {
		t.Fatalf("missing .back3: %v", err)
	}
	if string(b3) != "# v1\n" {
		t.Errorf(".back3 = %q, want %q", string(b3), "# v1\n")
	}
}
