package equity

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerequity/internal/randutil"
)

const (
	// DefaultThreshold is the largest completion space enumerated exactly.
	// Heads-up preflop with both hands known (1,712,304 boards) fits.
	DefaultThreshold = 3_000_000
	// DefaultTrials is the Monte Carlo trial count.
	DefaultTrials = 100_000
	// DefaultChunkSize is the number of trials sampled from one sub-stream.
	DefaultChunkSize = 8192
	// DefaultMinTrials is the floor before a convergence rule may stop a run.
	DefaultMinTrials = 10_000

	// shardsPerWorker splits enumeration finer than the worker count so
	// uneven shards even out.
	shardsPerWorker = 4
	// convergenceBatch is the number of chunks sampled between convergence
	// checks.
	convergenceBatch = 8
)

// Config holds the engine's tunables.
type Config struct {
	// Threshold is the largest exact space that is enumerated; anything
	// larger is sampled.
	Threshold uint64
	// Trials is the default Monte Carlo trial count.
	Trials int
	// Workers bounds the number of concurrent shards.
	Workers int
	// ChunkSize is the number of trials per random sub-stream. Sampled
	// results depend on it, so changing it changes seeded output.
	ChunkSize int
	// TargetStdErr enables early stopping once every player's equity
	// standard error (as a fraction) is at or below it. Zero disables it.
	TargetStdErr float64
	// MinTrials is the least number of trials run before early stopping.
	MinTrials int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Trials:    DefaultTrials,
		Workers:   runtime.GOMAXPROCS(0),
		ChunkSize: DefaultChunkSize,
		MinTrials: DefaultMinTrials,
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.TargetStdErr < 0 || c.TargetStdErr >= 1 {
		return fmt.Errorf("target standard error must be in [0, 1), got %g", c.TargetStdErr)
	}
	if c.MinTrials < 0 {
		return fmt.Errorf("min trials must not be negative, got %d", c.MinTrials)
	}
	return nil
}

// Calculator dispatches requests to exact enumeration or Monte Carlo
// sampling. It holds no per-request state and is safe for concurrent use.
type Calculator struct {
	cfg    Config
	logger *log.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Calculator) {
		c.cfg = cfg
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		c.cfg.Workers = n
	}
}

// WithLogger sets the logger used for dispatch decisions.
func WithLogger(logger *log.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// NewCalculator creates a calculator with DefaultConfig and the given options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	c.logger = c.logger.WithPrefix("equity")
	return c
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute validates req, then enumerates its completions when there are at
// most Threshold of them and samples them otherwise.
func Compute(ctx context.Context, req Request) (*Result, error) {
	return NewCalculator().Compute(ctx, req)
}

// Compute validates req, then enumerates its completions when there are at
// most Threshold of them and samples them otherwise.
func (c *Calculator) Compute(ctx context.Context, req Request) (*Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	sc, err := NewScenario(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	threshold := c.cfg.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	space := sc.Space()

	if space <= threshold {
		c.logger.Debug("Enumerating exactly",
			"players", sc.Players(),
			"missing", sc.Missing(),
			"space", space,
			"threshold", threshold)

		tally, err := c.enumerate(ctx, sc)
		if err != nil {
			return nil, err
		}
		return tally.Result(sc, Exact)
	}

	trials := c.cfg.Trials
	if req.Trials > 0 {
		trials = req.Trials
	}
	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = randutil.FreshSeed()
	}

	c.logger.Debug("Sampling",
		"players", sc.Players(),
		"missing", sc.Missing(),
		"space", space,
		"threshold", threshold,
		"trials", trials,
		"seed", seed)

	tally, err := c.sample(ctx, sc, seed, trials)
	if err != nil {
		return nil, err
	}
	res, err := tally.Result(sc, Sampled)
	if err != nil {
		return nil, err
	}
	res.Seed = seed
	return res, nil
}

// enumerate runs every shard of the exact space and sums the shard tallies.
func (c *Calculator) enumerate(ctx context.Context, sc *Scenario) (*Tally, error) {
	shards := c.cfg.Workers * shardsPerWorker
	tallies := make([]*Tally, shards)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i := range shards {
		g.Go(func() error {
			t := Aggregate(sc.Enumerate(gctx, i, shards), sc.Players())
			if err := gctx.Err(); err != nil {
				return err
			}
			tallies[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, canceled(err)
	}

	total := NewTally(sc.Players())
	for _, t := range tallies {
		total.Merge(t)
	}
	return total, nil
}

// sample runs trials in ChunkSize chunks, chunk i drawing from sub-stream i
// of seed, and sums the chunk tallies. With a convergence target it stops
// after the first batch of chunks that meets it.
func (c *Calculator) sample(ctx context.Context, sc *Scenario, seed int64, trials int) (*Tally, error) {
	chunk := c.cfg.ChunkSize
	chunks := (trials + chunk - 1) / chunk
	batch := chunks
	if c.cfg.TargetStdErr > 0 {
		batch = convergenceBatch
	}

	total := NewTally(sc.Players())
	for start := 0; start < chunks; start += batch {
		end := min(start+batch, chunks)
		tallies := make([]*Tally, end-start)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.cfg.Workers)
		for i := start; i < end; i++ {
			n := min(chunk, trials-i*chunk)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tallies[i-start] = Aggregate(sc.Sample(seed, uint64(i), n), sc.Players())
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, canceled(err)
		}
		for _, t := range tallies {
			total.Merge(t)
		}

		if c.cfg.TargetStdErr > 0 && total.Outcomes >= uint64(c.cfg.MinTrials) {
			if se := total.maxStdErr(); se <= c.cfg.TargetStdErr {
				c.logger.Debug("Converged", "trials", total.Outcomes, "std_err", se)
				break
			}
		}
	}
	return total, nil
}
