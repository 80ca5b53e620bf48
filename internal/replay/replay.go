package replay

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options configures Run.
type Options struct {
	// Seed is the seed of the first run; run i uses Seed+i.
	Seed int64

	Runs    int
	Ops     int
	Regions int

	// MaxLen bounds each region's length (default 8).
	MaxLen int

	// FlushEvery fixes the number of steps per flush. 0 picks 1 to 4 per
	// run.
	FlushEvery int

	// Parallelism limits concurrent runs (default GOMAXPROCS).
	Parallelism int

	Logger *slog.Logger
}

// Report summarizes a successful Run.
type Report struct {
	Runs     int
	Steps    int
	Duration time.Duration
}

// Failure is a divergence found by Run, with what is needed to reproduce
// it.
type Failure struct {
	Seed       int64
	FlushEvery int
	Divergence *Divergence
}

func (f *Failure) Error() string {
	return fmt.Sprintf("seed %d (flush every %d): %v", f.Seed, f.FlushEvery, f.Divergence)
}

func (f *Failure) Unwrap() error { return f.Divergence }

// Run checks opts.Runs independent streams in parallel. Each stream has
// its own document and runtime, so runs share nothing. The first failure
// cancels the remaining runs and is returned as a *Failure.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.MaxLen == 0 {
		opts.MaxLen = 8
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	start := time.Now()
	var steps atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i := 0; i < opts.Runs; i++ {
		seed := opts.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed))
			flushEvery := opts.FlushEvery
			if flushEvery == 0 {
				flushEvery = 1 + rng.Intn(4)
			}
			stream := Generate(rng, opts.Regions, opts.Ops, opts.MaxLen)
			if err := Check(stream, flushEvery); err != nil {
				d, _ := err.(*Divergence)
				return &Failure{Seed: seed, FlushEvery: flushEvery, Divergence: d}
			}
			steps.Add(int64(len(stream.Steps)))
			opts.Logger.Debug("replay run passed", "seed", seed, "steps", len(stream.Steps), "flush_every", flushEvery)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Runs:     opts.Runs,
		Steps:    int(steps.Load()),
		Duration: time.Since(start),
	}, nil
}
