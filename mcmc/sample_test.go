package mcmc

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testModel struct {
	name   string
	params []Param
	loglik func(theta []float64) float64
}

func (m *testModel) Name() string                   { return m.name }
func (m *testModel) Params() []Param                { return m.params }
func (m *testModel) LogLik(theta []float64) float64 { return m.loglik(theta) }

// bivariateModel targets a correlated 2-d normal through the likelihood,
// under priors wide enough not to move it.
func bivariateModel(t *testing.T) *testModel {
	t.Helper()
	mu := []float64{1.5, -0.5}
	sigma := mat.NewSymDense(2, []float64{
		1.0, 0.6,
		0.6, 2.0,
	})
	target, ok := distmv.NewNormal(mu, sigma, nil)
	require.True(t, ok)
	return &testModel{
		name: "bivariate-normal",
		params: []Param{
			{Name: "x", Support: Real(), Prior: distuv.Normal{Mu: 0, Sigma: 10}},
			{Name: "y", Support: Real(), Prior: distuv.Normal{Mu: 0, Sigma: 10}},
		},
		loglik: target.LogProb,
	}
}

func TestSample_RecoversBivariateNormal(t *testing.T) {
	m := bivariateModel(t)
	cfg := Config{Chains: 4, Iter: 1500, Warmup: 1500, Seed: 3, TargetAccept: 0.234, Jitter: 0.5}

	fit, err := Sample(context.Background(), m, cfg)
	require.NoError(t, err)

	assert.Equal(t, "bivariate-normal", fit.Model)
	assert.Equal(t, []string{"x", "y"}, fit.ParamNames)
	assert.Equal(t, 6000, fit.NumDraws())

	xs, err := fit.Column("x")
	require.NoError(t, err)
	ys, err := fit.Column("y")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, stat.Mean(xs, nil), 0.2)
	assert.InDelta(t, -0.5, stat.Mean(ys, nil), 0.25)

	cov := mat.NewSymDense(2, nil)
	stat.CovarianceMatrix(cov, fit.Pooled(), nil)
	assert.InDelta(t, 1.0, cov.At(0, 0), 0.4)
	assert.InDelta(t, 2.0, cov.At(1, 1), 0.7)
	assert.InDelta(t, 0.6, cov.At(0, 1), 0.4)

	// Adaptation should have landed acceptance in a workable band.
	for c, acc := range fit.Acceptance {
		assert.Greater(t, acc, 0.05, "chain %d acceptance collapsed", c)
		assert.Less(t, acc, 0.8, "chain %d acceptance runaway", c)
	}
}

func TestSample_Deterministic(t *testing.T) {
	cfg := Config{Chains: 2, Iter: 300, Warmup: 300, Seed: 11, TargetAccept: 0.234, Jitter: 0.5}

	a, err := Sample(context.Background(), bivariateModel(t), cfg)
	require.NoError(t, err)
	b, err := Sample(context.Background(), bivariateModel(t), cfg)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.Pooled(), b.Pooled()), "same seed must reproduce draws exactly")

	cfg.Seed = 12
	c, err := Sample(context.Background(), bivariateModel(t), cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(a.Pooled(), c.Pooled()), "different seed must change draws")
}

func TestSample_PositiveSupport(t *testing.T) {
	m := &testModel{
		name: "gamma-prior",
		params: []Param{
			{Name: "sigma", Support: Positive(), Prior: distuv.Gamma{Alpha: 2, Beta: 2}},
		},
		loglik: func([]float64) float64 { return 0 },
	}
	cfg := Config{Chains: 2, Iter: 2000, Warmup: 1000, Seed: 5, TargetAccept: 0.234, Jitter: 0.5}

	fit, err := Sample(context.Background(), m, cfg)
	require.NoError(t, err)

	draws, err := fit.Column("sigma")
	require.NoError(t, err)
	for _, v := range draws {
		require.Greater(t, v, 0.0)
	}
	// Flat likelihood: the posterior is the Gamma(2,2) prior, mean 1.
	assert.InDelta(t, 1.0, stat.Mean(draws, nil), 0.25)
}

func TestSample_NonFiniteTarget(t *testing.T) {
	m := &testModel{
		name: "impossible",
		params: []Param{
			{Name: "x", Support: Real(), Prior: distuv.Normal{Mu: 0, Sigma: 1}},
		},
		loglik: func([]float64) float64 { return math.Inf(-1) },
	}
	cfg := Config{Chains: 1, Iter: 10, Warmup: 10, Seed: 1, TargetAccept: 0.234, Jitter: 0.5}

	_, err := Sample(context.Background(), m, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFinite))
}

func TestSample_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Chains: 2, Iter: 500, Warmup: 500, Seed: 1, TargetAccept: 0.234, Jitter: 0.5}
	_, err := Sample(ctx, bivariateModel(t), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSample_BadModel(t *testing.T) {
	cfg := Config{Chains: 1, Iter: 10, Warmup: 0, Seed: 1, TargetAccept: 0.234}

	_, err := Sample(context.Background(), &testModel{name: "empty"}, cfg)
	assert.True(t, errors.Is(err, errors.ErrBadModel), "no parameters")

	dup := &testModel{
		name: "dup",
		params: []Param{
			{Name: "x", Support: Real(), Prior: distuv.Normal{Mu: 0, Sigma: 1}},
			{Name: "x", Support: Real(), Prior: distuv.Normal{Mu: 0, Sigma: 1}},
		},
		loglik: func([]float64) float64 { return 0 },
	}
	_, err = Sample(context.Background(), dup, cfg)
	assert.True(t, errors.Is(err, errors.ErrBadModel), "duplicate name")

	nilPrior := &testModel{
		name:   "nil-prior",
		params: []Param{{Name: "x", Support: Real()}},
		loglik: func([]float64) float64 { return 0 },
	}
	_, err = Sample(context.Background(), nilPrior, cfg)
	assert.True(t, errors.Is(err, errors.ErrBadModel), "nil prior")
}

func TestSample_InvalidConfig(t *testing.T) {
	_, err := Sample(context.Background(), bivariateModel(t), Config{})
	require.Error(t, err)
}

// recordingEmitter captures events for assertions.
type recordingEmitter struct {
	mu        sync.Mutex
	stages    []string
	progress  map[string]int // "chain/phase" -> last completed
	completes int
	total     int
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{progress: make(map[string]int)}
}

func (e *recordingEmitter) SetTotal(total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.total = total
}

func (e *recordingEmitter) EmitStage(stage, _ string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stages = append(e.stages, stage)
}

func (e *recordingEmitter) EmitChainProgress(chain int, phase string, completed, _ int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := fmt.Sprintf("%s/%d", phase, chain)
	if completed < e.progress[key] {
		panic("progress went backwards")
	}
	e.progress[key] = completed
}

func (e *recordingEmitter) EmitComplete(map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completes++
}

func (e *recordingEmitter) EmitWarning(string) {}

func TestSample_EmitsProgress(t *testing.T) {
	emitter := newRecordingEmitter()
	cfg := Config{Chains: 2, Iter: 200, Warmup: 200, Seed: 1, TargetAccept: 0.234, Jitter: 0.5}

	_, err := Sample(context.Background(), bivariateModel(t), cfg, WithEmitter(emitter))
	require.NoError(t, err)

	assert.Equal(t, []string{"init", "sample"}, emitter.stages)
	assert.Equal(t, 2*(200+200), emitter.total)
	assert.Equal(t, 1, emitter.completes)
	for c := 0; c < 2; c++ {
		assert.Equal(t, 200, emitter.progress[fmt.Sprintf("warmup/%d", c)])
		assert.Equal(t, 200, emitter.progress[fmt.Sprintf("sample/%d", c)])
	}
}

func TestSample_NoMAPInit(t *testing.T) {
	cfg := Config{Chains: 2, Iter: 300, Warmup: 300, Seed: 9, TargetAccept: 0.234, Jitter: 0.5}

	fit, err := Sample(context.Background(), bivariateModel(t), cfg, WithMAPInit(false))
	require.NoError(t, err)

	xs, err := fit.Column("x")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, stat.Mean(xs, nil), 0.4)
}
