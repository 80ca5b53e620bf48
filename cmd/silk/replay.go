package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/silk/internal/replay"
)

func replayCmd(flags *globalFlags) *cobra.Command {
	var (
		seed        int64
		runs        int
		ops         int
		groups      int
		flushEvery  int
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay random child deltas against a naive model",
		Long: `Replay random streams of child deltas through reconciled child
lists that share one parent, and compare the resulting tree with a naive
model after every flush.

A failure prints the seed that reproduces it.

Examples:
  silk replay
  silk replay --runs=1000 --ops=500
  silk replay --seed=42 --runs=1 --flush-every=1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			opts := replay.Options{
				Seed:        cfg.Replay.Seed,
				Runs:        cfg.Replay.Runs,
				Ops:         cfg.Replay.Ops,
				Regions:     cfg.Replay.Groups,
				FlushEvery:  flushEvery,
				Parallelism: parallelism,
				Logger:      logger,
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if cmd.Flags().Changed("runs") {
				opts.Runs = runs
			}
			if cmd.Flags().Changed("ops") {
				opts.Ops = ops
			}
			if cmd.Flags().Changed("groups") {
				opts.Regions = groups
			}
			if opts.Seed == 0 {
				opts.Seed = time.Now().UnixNano()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runReplay(ctx, opts)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed of the first run (default from silk.json, or the clock)")
	cmd.Flags().IntVarP(&runs, "runs", "n", 0, "Number of streams (default from silk.json)")
	cmd.Flags().IntVar(&ops, "ops", 0, "Deltas per stream (default from silk.json)")
	cmd.Flags().IntVar(&groups, "groups", 0, "Child groups sharing the parent (default from silk.json)")
	cmd.Flags().IntVar(&flushEvery, "flush-every", 0, "Deltas per flush (default: random per run)")
	cmd.Flags().IntVarP(&parallelism, "parallel", "p", 0, "Concurrent runs (default: GOMAXPROCS)")

	return cmd
}

func runReplay(ctx context.Context, opts replay.Options) error {
	info("seed %d, %d runs of %d deltas over %d groups", opts.Seed, opts.Runs, opts.Ops, opts.Regions)

	report, err := replay.Run(ctx, opts)
	var failure *replay.Failure
	if errors.As(err, &failure) {
		errorMsg("Divergence at step %d", failure.Divergence.Step)
		info("%s", failure.Divergence.Reason)
		for _, step := range failure.Divergence.Batch {
			info("  %s", step)
		}
		info("want: %v", failure.Divergence.Want)
		info("got:  %v", failure.Divergence.Got)
		info("reproduce with: silk replay --seed=%d --runs=1 --flush-every=%d", failure.Seed, failure.FlushEvery)
		return fmt.Errorf("replay failed")
	}
	if err != nil {
		return err
	}

	success("%d runs, %d deltas in %s", report.Runs, report.Steps, report.Duration.Round(time.Millisecond))
	return nil
}
