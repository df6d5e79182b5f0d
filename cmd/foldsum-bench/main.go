// Command foldsum-bench measures foldsum digest throughput on the local
// machine, comparing every entry point against reference baselines.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/fastsum/foldsum"
	"github.com/fastsum/foldsum/bench"
)

func main() {
	var (
		messages    = pflag.Int("messages", 256, "synthetic corpus size")
		iterations  = pflag.Int("iterations", 50, "passes per variant")
		workers     = pflag.IntSlice("workers", []int{1, 2, 4, 8}, "worker counts for the parallel variant")
		width       = pflag.Int("width", 256, "digest width in bits (128 or 256)")
		strategy    = pflag.String("strategy", "auto", "fold kernel: auto, scalar, words, unrolled8, interleaved16")
		singleBlock = pflag.Bool("single-block", false, "also measure the 64-byte fold mode")
		baselines   = pflag.Bool("baselines", true, "include sha256/sm3-full/xxhash64 baselines")
		corpusPath  = pflag.String("corpus", "", "corpus file of 4096-byte records (.zst/.lz4 accepted); synthetic if empty")
		seed        = pflag.Int64("seed", 1, "synthetic corpus seed")
		rateLimit   = pflag.Float64("rate", 0, "pace single-message variants to this ops/sec (0 = unpaced)")
		verbose     = pflag.BoolP("verbose", "v", false, "debug logging")
	)
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := foldsum.NewTextLogger(level)

	if err := run(logger, *messages, *iterations, *workers, *width, *strategy,
		*singleBlock, *baselines, *corpusPath, *seed, *rateLimit); err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *foldsum.Logger, messages, iterations int, workers []int, width int,
	strategy string, singleBlock, baselines bool, corpusPath string, seed int64, rateLimit float64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, ok := foldsum.ParseStrategy(strategy)
	if !ok {
		return fmt.Errorf("unknown strategy %q", strategy)
	}

	var corpus [][]byte
	if corpusPath != "" {
		var err error
		corpus, err = bench.LoadCorpus(corpusPath)
		if err != nil {
			return err
		}
		logger.Info("loaded corpus", "path", corpusPath, "messages", len(corpus))
	}

	logger.Info("starting benchmark",
		"kernel", foldsum.ActiveStrategy().String(),
		"width", width,
		"iterations", iterations,
	)

	runner := bench.NewRunner(func(o *bench.Options) {
		o.Messages = messages
		o.Iterations = iterations
		o.Workers = workers
		o.Width = foldsum.Width(width)
		o.Strategy = s
		o.SingleBlock = singleBlock
		o.Baselines = baselines
		o.Corpus = corpus
		o.Seed = seed
		o.Rate = rateLimit
		o.Logger = logger
	})

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(report.String())
	return nil
}
