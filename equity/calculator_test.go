package equity

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func sumEquity(res *Result) float64 {
	var total float64
	for _, p := range res.Players {
		total += p.Equity
	}
	return total
}

func TestComputeAcesVersusKings(t *testing.T) {
	if testing.Short() {
		t.Skip("enumerates 1.7M boards")
	}
	t.Parallel()

	res, err := Compute(context.Background(), Request{Players: players("AhAd", "KsKc")})
	require.NoError(t, err)

	assert.Equal(t, Exact, res.Mode)
	assert.Equal(t, uint64(1_712_304), res.Space)
	assert.Equal(t, uint64(1_712_304), res.Players[0].Total)
	assert.InDelta(t, 82, res.Players[0].Equity, 1.5)
	assert.InDelta(t, 18, res.Players[1].Equity, 1.5)
	assert.InDelta(t, 100, sumEquity(res), 1e-9)
}

func TestComputeFullyKnownShowdown(t *testing.T) {
	t.Parallel()

	res, err := Compute(context.Background(), Request{
		Players: players("AsKs", "QhQd"),
		Board:   cards("2s7sQc3s9h"),
	})
	require.NoError(t, err)

	assert.Equal(t, Exact, res.Mode)
	assert.Equal(t, uint64(1), res.Space)
	assert.Equal(t, 100.0, res.Players[0].Equity)
	assert.Equal(t, 0.0, res.Players[1].Equity)
}

func TestComputeSplitsBoardPlays(t *testing.T) {
	t.Parallel()

	res, err := Compute(context.Background(), Request{
		Players: players("2c3d", "4c5d", "6c7d"),
		Board:   cards("AhKhQhJhTh"),
	})
	require.NoError(t, err)

	for _, p := range res.Players {
		assert.InDelta(t, 100.0/3, p.Equity, 1e-9)
		assert.Equal(t, uint64(1), p.Ties)
		assert.Zero(t, p.Wins)
	}
}

func TestComputeEquitySumsToHundred(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "flop",
			req:  Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")},
		},
		{
			name: "turn multiway",
			req:  Request{Players: players("AsKs", "QhQd", "8h9h"), Board: cards("2s7sTc3d")},
		},
		{
			name: "sampled with unknown players",
			req: Request{
				Players:        players("AsKs"),
				UnknownPlayers: 3,
				Seed:           ptr(int64(11)),
				Trials:         20_000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := Compute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.InDelta(t, 100, sumEquity(res), 1e-9)
			for _, p := range res.Players {
				assert.Equal(t, p.Total, p.Wins+p.Ties+p.Losses)
				var types uint64
				for _, n := range p.HandTypes {
					types += n
				}
				assert.Equal(t, p.Total, types)
			}
		})
	}
}

func TestComputeDispatchesOnThreshold(t *testing.T) {
	t.Parallel()

	req := Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")}

	res, err := NewCalculator(WithConfig(Config{
		Threshold: 990,
		Trials:    1000,
		Workers:   2,
		ChunkSize: 256,
	})).Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Exact, res.Mode)

	res, err = NewCalculator(WithConfig(Config{
		Threshold: 989,
		Trials:    1000,
		Workers:   2,
		ChunkSize: 256,
	})).Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Sampled, res.Mode)
	assert.Equal(t, uint64(1000), res.Trials)
	assert.Equal(t, uint64(990), res.Space)

	// A per-request threshold of zero forces sampling.
	req.Threshold = ptr(uint64(0))
	req.Trials = 500
	res, err = Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Sampled, res.Mode)
	assert.Equal(t, uint64(500), res.Trials)
}

func TestComputeExactIgnoresWorkerCount(t *testing.T) {
	t.Parallel()

	req := Request{Players: players("AsKs", "QhQd", "8h9h"), Board: cards("2s7sTc")}

	var results []*Result
	for _, workers := range []int{1, 3, 8} {
		res, err := NewCalculator(WithWorkers(workers)).Compute(context.Background(), req)
		require.NoError(t, err)
		results = append(results, res)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
}

func TestComputeSampledIgnoresWorkerCount(t *testing.T) {
	t.Parallel()

	req := Request{
		Players:        players("AsKs", "QhQd"),
		UnknownPlayers: 1,
		Seed:           ptr(int64(2024)),
		Trials:         10_000,
	}

	var results []*Result
	for _, workers := range []int{1, 2, 7} {
		cfg := DefaultConfig()
		cfg.Workers = workers
		cfg.ChunkSize = 1000
		res, err := NewCalculator(WithConfig(cfg)).Compute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, Sampled, res.Mode)
		assert.Equal(t, int64(2024), res.Seed)
		results = append(results, res)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])

	req.Seed = ptr(int64(2025))
	cfg := DefaultConfig()
	cfg.ChunkSize = 1000
	other, err := NewCalculator(WithConfig(cfg)).Compute(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, results[0].Players, other.Players)
}

func TestComputeReportsFreshSeed(t *testing.T) {
	t.Parallel()

	req := Request{Players: players("AsKs"), UnknownPlayers: 1, Trials: 2000}
	res, err := Compute(context.Background(), req)
	require.NoError(t, err)

	other, err := Compute(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, res.Seed, other.Seed, "unseeded runs draw fresh seeds")

	req.Seed = ptr(res.Seed)
	again, err := Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestComputeSampledApproachesExact(t *testing.T) {
	t.Parallel()

	req := Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")}
	exact, err := Compute(context.Background(), req)
	require.NoError(t, err)

	req.Threshold = ptr(uint64(0))
	req.Seed = ptr(int64(5))
	req.Trials = 50_000
	sampled, err := Compute(context.Background(), req)
	require.NoError(t, err)

	for i := range exact.Players {
		assert.InDelta(t, exact.Players[i].Equity, sampled.Players[i].Equity, 1.5)
		lo, hi := sampled.Players[i].ConfidenceInterval()
		assert.Less(t, lo, sampled.Players[i].Equity)
		assert.Greater(t, hi, sampled.Players[i].Equity)
	}
}

func TestComputeSampledDriftShrinksWithTrials(t *testing.T) {
	if testing.Short() {
		t.Skip("samples over ten million trials")
	}
	t.Parallel()

	req := Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")}
	exact, err := Compute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, Exact, exact.Mode)

	trialCounts := []int{1_000, 10_000, 100_000, 1_000_000}
	seeds := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	drift := make([]float64, len(trialCounts))
	covered := 0
	for i, trials := range trialCounts {
		for _, seed := range seeds {
			req.Threshold = ptr(uint64(0))
			req.Seed = ptr(seed)
			req.Trials = trials
			res, err := Compute(context.Background(), req)
			require.NoError(t, err)
			require.Equal(t, uint64(trials), res.Trials)

			for p := range res.Players {
				drift[i] += math.Abs(res.Players[p].Equity - exact.Players[p].Equity)
			}
			if i == len(trialCounts)-1 {
				lo, hi := res.Players[0].ConfidenceInterval()
				if lo <= exact.Players[0].Equity && exact.Players[0].Equity <= hi {
					covered++
				}
			}
		}
		drift[i] /= float64(len(seeds) * len(exact.Players))
	}

	for i := 1; i < len(drift); i++ {
		assert.LessOrEqual(t, drift[i], drift[i-1],
			"mean drift grew from %d to %d trials: %v", trialCounts[i-1], trialCounts[i], drift)
	}
	// A 95% interval should cover the exact equity for nearly every seed.
	assert.GreaterOrEqual(t, covered, len(seeds)-3, "exact equity outside the interval for too many seeds")
}

func TestComputeStopsOnceConverged(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Trials = 1_000_000
	cfg.ChunkSize = 1000
	cfg.TargetStdErr = 0.005
	cfg.MinTrials = 10_000

	res, err := NewCalculator(WithConfig(cfg)).Compute(context.Background(), Request{
		Players:        players("AsKs"),
		UnknownPlayers: 1,
		Seed:           ptr(int64(3)),
	})
	require.NoError(t, err)

	assert.Equal(t, Sampled, res.Mode)
	assert.GreaterOrEqual(t, res.Trials, uint64(10_000))
	assert.Less(t, res.Trials, uint64(100_000))
	assert.Zero(t, res.Trials%1000, "stops on a chunk boundary")
}

func TestComputeCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, req := range []Request{
		{Players: players("AhAd", "KsKc")},
		{Players: players("AsKs"), UnknownPlayers: 2, Trials: 1_000_000},
	} {
		res, err := Compute(ctx, req)
		require.ErrorIs(t, err, ErrCanceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, res)
	}
}

func TestComputeCanceledMidRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calc := NewCalculator(WithWorkers(2))
	done := make(chan error, 1)
	go func() {
		_, err := calc.Compute(ctx, Request{Players: players("AsKs"), UnknownPlayers: 4, Trials: 50_000_000})
		done <- err
	}()
	cancel()

	err := <-done
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestComputeValidatesBeforeWork(t *testing.T) {
	t.Parallel()

	_, err := Compute(context.Background(), Request{Players: players("AsKs", "AsQd")})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, ErrDuplicateCard)

	_, err = NewCalculator(WithWorkers(0)).Compute(context.Background(), Request{Players: players("AsKs", "QhQd")})
	assert.ErrorContains(t, err, "workers must be positive")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero trials", func(c *Config) { c.Trials = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }},
		{"negative target", func(c *Config) { c.TargetStdErr = -0.1 }},
		{"target of one", func(c *Config) { c.TargetStdErr = 1 }},
		{"negative min trials", func(c *Config) { c.MinTrials = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCalculatorLogsDispatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	calc := NewCalculator(WithLogger(logger))

	_, err := calc.Compute(context.Background(), Request{
		Players: players("AsKs", "QhQd"),
		Board:   cards("2s7sQc"),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Enumerating exactly")
	assert.Contains(t, buf.String(), "equity")
}
