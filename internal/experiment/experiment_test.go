package experiment

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/logger"
	"github.com/san-kum/twiddle/internal/metrics"
	"github.com/san-kum/twiddle/internal/optim"
)

func newReference(t *testing.T, opts ...Option) *Experiment {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	e, err := New(config.DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func TestRunPrintsSession(t *testing.T) {
	e := newReference(t)
	var out bytes.Buffer

	rep, err := e.Run(context.Background(), &out, true)
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.True(t, strings.HasPrefix(lines[0], "Twiddle # 1 [1 1 0] -> 0.04349708"), lines[0])

	var progress, diag int
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "Twiddle # "):
			progress++
		case strings.HasPrefix(l, "[x="):
			diag++
		}
	}
	assert.Equal(t, rep.Iterations, progress)
	assert.Equal(t, 2*config.DefaultConfig().Scenario.Steps, diag)

	assert.Contains(t, out.String(), "\nFinal parameters: "+rep.Gains.String()+"\n -> ")
	assert.True(t, rep.Converged)
	assert.InDelta(t, 8315.955485215645, rep.Baseline, 1e-6)
	assert.Less(t, rep.Cost, rep.Baseline)
	assert.Less(t, rep.Cost, 1e-3)
	assert.Equal(t, e.Evaluator().Evaluate(rep.Gains), rep.Cost)
	assert.InDelta(t, rep.Cost, rep.Metrics["scored_mse"], 1e-12)
	require.NotNil(t, rep.Trajectory)
	assert.Len(t, rep.Trajectory.Samples, 200)
}

func TestRunQuietSkipsDiagnostics(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Twiddle.MaxIterations = 3
	e, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	var out bytes.Buffer
	rep, err := e.Run(context.Background(), &out, false)
	require.NoError(t, err)

	assert.NotContains(t, out.String(), "[x=")
	assert.Equal(t, 3, rep.Iterations)
	assert.False(t, rep.Converged)
	assert.Equal(t, 3, strings.Count(out.String(), "Twiddle # "))
}

func TestTuneLogs(t *testing.T) {
	var logs bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Twiddle.MaxIterations = 2
	e, err := New(cfg, WithLogger(logger.New("debug", &logs)))
	require.NoError(t, err)

	var seen []int
	res, err := e.Tune(context.Background(), func(r optim.Record) { seen = append(seen, r.Iteration) })
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 2, res.Iterations)
	out := logs.String()
	assert.Contains(t, out, `"msg":"tuning started"`)
	assert.Contains(t, out, `"msg":"twiddle pass"`)
	assert.Contains(t, out, `"msg":"tuning finished"`)
}

func TestTuneCancelled(t *testing.T) {
	e := newReference(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Tune(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, e.Baseline(), res.BestCost)

	_, err = e.Run(ctx, &bytes.Buffer{}, true)
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scenario.Steps = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, dynamo.ErrInvalidScenario)

	cfg = config.DefaultConfig()
	cfg.Twiddle.InitialGains = []float64{1}
	_, err = New(cfg)
	assert.ErrorIs(t, err, dynamo.ErrInvalidGains)
}

func TestWithMetricsReplacesDefaults(t *testing.T) {
	e := newReference(t, WithMetrics(metrics.NewControlEffort()))
	tr := e.FinalPass(dynamo.Gains{0.2, 3.0, 0.004})
	assert.Len(t, tr.Metrics, 1)
	assert.Contains(t, tr.Metrics, "control_effort")
}

func TestDefaultMetrics(t *testing.T) {
	e := newReference(t)
	tr := e.FinalPass(dynamo.Gains{0.2, 3.0, 0.004})
	for _, name := range []string{"scored_mse", "max_cte", "stability", "control_effort"} {
		assert.Contains(t, tr.Metrics, name)
	}
	assert.GreaterOrEqual(t, tr.Metrics["stability"], 0.0)
	assert.LessOrEqual(t, tr.Metrics["stability"], 1.0)
}
