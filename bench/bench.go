// Package bench measures foldsum throughput against reference baselines.
//
// The runner drives every library entry point (single-message, batch per
// prefetch mode, parallel per worker count) over a corpus of fixed-size
// messages and reports throughput per variant. Baselines put the numbers in
// context: SHA-256 and full (unreduced) SM3 over the same messages bound the
// cryptographic-hash cost, xxhash64 bounds the non-cryptographic ceiling.
package bench

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/fastsum/foldsum"
	"github.com/fastsum/foldsum/internal/sm3"
)

// Options configures a benchmark run.
type Options struct {
	// Messages is the synthetic corpus size when Corpus is nil.
	Messages int

	// Iterations is how many passes each variant makes over the corpus.
	Iterations int

	// Workers are the worker counts to measure ParallelHash with.
	Workers []int

	// Width is the digest width under test.
	Width foldsum.Width

	// Strategy pins a fold kernel; StrategyAuto measures the default.
	Strategy foldsum.Strategy

	// SingleBlock also measures the 64-byte fold mode.
	SingleBlock bool

	// Baselines adds the SHA-256, full-SM3 and xxhash64 reference rows.
	Baselines bool

	// Rate paces single-message measurements to a target ops/sec and
	// reports per-op latency under that load. 0 runs unpaced.
	Rate float64

	// Corpus supplies the messages to hash; nil generates a seeded
	// synthetic corpus.
	Corpus [][]byte

	// Seed for the synthetic corpus.
	Seed int64

	// Logger for progress diagnostics.
	Logger *foldsum.Logger
}

func defaultBenchOptions() Options {
	return Options{
		Messages:   256,
		Iterations: 50,
		Workers:    []int{1, 2, 4},
		Width:      foldsum.Width256,
		Strategy:   foldsum.StrategyAuto,
		Baselines:  true,
		Seed:       1,
		Logger:     foldsum.NoopLogger(),
	}
}

// Result is one measured variant.
type Result struct {
	Name       string
	Messages   int
	Bytes      int64
	Elapsed    time.Duration
	AvgLatency time.Duration
}

// Throughput returns bytes per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Elapsed.Seconds()
}

// MessagesPerSec returns hashed messages per second.
func (r Result) MessagesPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Messages) / r.Elapsed.Seconds()
}

// Report holds all results of one run.
type Report struct {
	Width    foldsum.Width
	Strategy foldsum.Strategy
	Corpus   int
	Results  []Result
}

// String renders the report as a plain-text table.
func (r *Report) String() string {
	var b strings.Builder
	kernel := r.Strategy.String()
	if r.Strategy == foldsum.StrategyAuto {
		kernel = fmt.Sprintf("auto (%s)", foldsum.ActiveStrategy())
	}
	fmt.Fprintf(&b, "foldsum benchmark: %d messages x %s, width %d, kernel %s\n",
		r.Corpus, humanize.IBytes(foldsum.MessageSize), int(r.Width), kernel)
	fmt.Fprintf(&b, "%-28s %14s %14s %12s\n", "variant", "throughput", "msgs/sec", "avg latency")
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-28s %12s/s %14s %12s\n",
			res.Name,
			humanize.IBytes(uint64(res.Throughput())),
			humanize.CommafWithDigits(res.MessagesPerSec(), 0),
			res.AvgLatency,
		)
	}
	return b.String()
}

// Runner executes benchmark passes.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner.
func NewRunner(optFns ...func(*Options)) *Runner {
	opts := defaultBenchOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = foldsum.NoopLogger()
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	return &Runner{opts: opts}
}

// Run measures every configured variant and returns the report. The context
// cancels between passes; a cancelled run returns the error with no partial
// report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	o := r.opts

	corpus := o.Corpus
	if corpus == nil {
		corpus = Synthetic(o.Messages, o.Seed)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("bench: empty corpus")
	}
	for i, msg := range corpus {
		if len(msg) != foldsum.MessageSize {
			return nil, fmt.Errorf("bench: corpus message %d has length %d, want %d", i, len(msg), foldsum.MessageSize)
		}
	}

	report := &Report{Width: o.Width, Strategy: o.Strategy, Corpus: len(corpus)}

	var limiter *rate.Limiter
	if o.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.Rate), 1)
	}

	hashOpts := []foldsum.Option{foldsum.WithStrategy(o.Strategy)}

	// Single-message pipeline.
	res, err := r.measurePerMessage(ctx, "hash", corpus, limiter, func(msg []byte) error {
		_, err := foldsum.Hash(msg, o.Width, hashOpts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	report.Results = append(report.Results, res)

	if o.SingleBlock {
		sbOpts := append([]foldsum.Option{foldsum.WithSingleBlock()}, hashOpts...)
		res, err = r.measurePerMessage(ctx, "hash/single-block", corpus, limiter, func(msg []byte) error {
			_, err := foldsum.Hash(msg, o.Width, sbOpts...)
			return err
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	// Batch pipeline, one row per prefetch mode.
	outs := make([][]byte, len(corpus))
	backing := make([]byte, len(corpus)*o.Width.Bytes())
	for i := range outs {
		outs[i] = backing[i*o.Width.Bytes() : (i+1)*o.Width.Bytes()]
	}
	for _, mode := range []foldsum.PrefetchMode{foldsum.PrefetchNone, foldsum.PrefetchDistance, foldsum.PrefetchPipelined} {
		batchOpts := append([]foldsum.Option{foldsum.WithPrefetchMode(mode)}, hashOpts...)
		res, err = r.measurePass(ctx, "batch/prefetch-"+mode.String(), len(corpus), func() error {
			return foldsum.BatchHash(corpus, outs, o.Width, batchOpts...)
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	// Parallel pipeline, one row per worker count.
	for _, workers := range o.Workers {
		w := workers
		res, err = r.measurePass(ctx, fmt.Sprintf("parallel/workers-%d", w), len(corpus), func() error {
			_, err := foldsum.ParallelHash(corpus, w, o.Width, hashOpts...)
			return err
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	if o.Baselines {
		res, err = r.measurePerMessage(ctx, "baseline/sha256", corpus, nil, func(msg []byte) error {
			sha256.Sum256(msg)
			return nil
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)

		res, err = r.measurePerMessage(ctx, "baseline/sm3-full", corpus, nil, func(msg []byte) error {
			sm3Full(msg)
			return nil
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)

		res, err = r.measurePerMessage(ctx, "baseline/xxhash64", corpus, nil, func(msg []byte) error {
			xxhash.Sum64(msg)
			return nil
		})
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	return report, nil
}

// measurePerMessage times fn per message across Iterations passes,
// optionally pacing each call. Pacing waits are excluded from the measured
// time so the reported latency is the operation cost under the target load.
func (r *Runner) measurePerMessage(ctx context.Context, name string, corpus [][]byte, limiter *rate.Limiter, fn func([]byte) error) (Result, error) {
	r.opts.Logger.Debug("measuring", "variant", name)

	var elapsed time.Duration
	ops := 0
	for pass := 0; pass < r.opts.Iterations; pass++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for _, msg := range corpus {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return Result{}, err
				}
			}
			start := time.Now()
			if err := fn(msg); err != nil {
				return Result{}, fmt.Errorf("bench: %s: %w", name, err)
			}
			elapsed += time.Since(start)
			ops++
		}
	}

	return Result{
		Name:       name,
		Messages:   ops,
		Bytes:      int64(ops) * foldsum.MessageSize,
		Elapsed:    elapsed,
		AvgLatency: elapsed / time.Duration(ops),
	}, nil
}

// measurePass times fn (one whole-corpus operation) across Iterations
// passes.
func (r *Runner) measurePass(ctx context.Context, name string, corpusLen int, fn func() error) (Result, error) {
	r.opts.Logger.Debug("measuring", "variant", name)

	var elapsed time.Duration
	for pass := 0; pass < r.opts.Iterations; pass++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return Result{}, fmt.Errorf("bench: %s: %w", name, err)
		}
		elapsed += time.Since(start)
	}

	ops := r.opts.Iterations * corpusLen
	return Result{
		Name:       name,
		Messages:   ops,
		Bytes:      int64(ops) * foldsum.MessageSize,
		Elapsed:    elapsed,
		AvgLatency: elapsed / time.Duration(ops),
	}, nil
}

// sm3Full computes standard padded SM3 over one 4096-byte message. It is
// the "what if we skipped the fold" baseline: 65 compression calls instead
// of two.
func sm3Full(msg []byte) [sm3.Size]byte {
	state := sm3.IV()
	for off := 0; off < foldsum.MessageSize; off += sm3.BlockSize {
		sm3.CompressBytes(&state, msg[off:off+sm3.BlockSize])
	}
	sm3.CompressBytes(&state, sm3Padding[:])

	var out [sm3.Size]byte
	sm3.PutState(out[:], &state)
	return out
}

// sm3Padding is the fixed final block for a 4096-byte message: leading 0x80,
// then the bit length.
var sm3Padding = func() [sm3.BlockSize]byte {
	var b [sm3.BlockSize]byte
	b[0] = 0x80
	binary.BigEndian.PutUint64(b[sm3.BlockSize-8:], foldsum.MessageSize*8)
	return b
}()
