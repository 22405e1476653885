package report

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/anhnguyendepocen/bayes-course/config"
	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Manifest records what produced a report: the run identity, the sampler
// settings, the input files with their digests, and the figures written.
type Manifest struct {
	RunID    string      `toml:"run_id"`
	Pipeline string      `toml:"pipeline"`
	Created  time.Time   `toml:"created"`
	Elapsed  string      `toml:"elapsed"`
	Sampler  SamplerInfo `toml:"sampler"`
	Data     []DataFile  `toml:"data"`
	Figures  []string    `toml:"figures"`
}

// SamplerInfo mirrors the sampler configuration in TOML-friendly form.
type SamplerInfo struct {
	Chains       int     `toml:"chains"`
	Iterations   int     `toml:"iterations"`
	Warmup       int     `toml:"warmup"`
	Seed         uint64  `toml:"seed"`
	TargetAccept float64 `toml:"target_accept"`
}

// DataFile is one input file together with its content digest, so a report
// can be traced back to the exact data that produced it.
type DataFile struct {
	Path   string `toml:"path"`
	SHA256 string `toml:"sha256"`
}

// NewManifest starts a manifest for one pipeline run.
func NewManifest(pipeline string, runID uuid.UUID, sc config.SamplerConfig, elapsed time.Duration) *Manifest {
	return &Manifest{
		RunID:    runID.String(),
		Pipeline: pipeline,
		Created:  time.Now().UTC(),
		Elapsed:  elapsed.Round(time.Millisecond).String(),
		Sampler: SamplerInfo{
			Chains:       sc.Chains,
			Iterations:   sc.Iterations,
			Warmup:       sc.Warmup,
			Seed:         sc.Seed,
			TargetAccept: sc.TargetAccept,
		},
	}
}

// AddData hashes path and records it as an input of the run.
func (m *Manifest) AddData(path string) error {
	sum, err := SHA256File(path)
	if err != nil {
		return err
	}
	m.Data = append(m.Data, DataFile{Path: path, SHA256: sum})
	return nil
}

// AddFigures records figure paths relative to the report directory.
func (m *Manifest) AddFigures(figures ...string) {
	m.Figures = append(m.Figures, figures...)
}

// SHA256File returns the hex digest of a file's contents.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
