package foldsum

import "github.com/fastsum/foldsum/internal/fold"

// Strategy selects a fold kernel. All strategies produce bit-identical
// digests; they differ only in how loads are batched for throughput.
type Strategy uint8

const (
	// StrategyAuto resolves to the capability-selected default kernel.
	StrategyAuto Strategy = iota
	// StrategyScalar is the byte-at-a-time reference kernel.
	StrategyScalar
	// StrategyWords processes one 64-bit word at a time.
	StrategyWords
	// StrategyUnrolled8 keeps eight independent row accumulators.
	StrategyUnrolled8
	// StrategyInterleaved16 streams through sixteen interleaved accumulators.
	StrategyInterleaved16
)

// String returns the string representation of a Strategy.
func (s Strategy) String() string { return s.fold().String() }

// ParseStrategy parses a string into a Strategy value.
func ParseStrategy(str string) (Strategy, bool) {
	fs, ok := fold.ParseStrategy(str)
	return Strategy(fs), ok
}

// ActiveStrategy returns the kernel StrategyAuto resolves to on this
// machine, after CPU capability detection and the FOLDSUM_STRATEGY
// environment override.
func ActiveStrategy() Strategy {
	return Strategy(fold.ActiveStrategy())
}

func (s Strategy) fold() fold.Strategy { return fold.Strategy(s) }

// PrefetchMode selects how the batch processor schedules advisory prefetch
// of upcoming messages. Prefetching affects throughput only, never digests.
type PrefetchMode uint8

const (
	// PrefetchDistance touches each message a fixed distance ahead of use.
	PrefetchDistance PrefetchMode = iota
	// PrefetchNone disables advisory prefetching.
	PrefetchNone
	// PrefetchPipelined splits the batch in two phases with staggered
	// prefetch distances.
	PrefetchPipelined
)

// String returns the string representation of a PrefetchMode.
func (m PrefetchMode) String() string {
	switch m {
	case PrefetchDistance:
		return "distance"
	case PrefetchNone:
		return "none"
	case PrefetchPipelined:
		return "pipelined"
	default:
		return "unknown"
	}
}

// DefaultPrefetchDistance is how many messages ahead the batch processor
// touches by default.
const DefaultPrefetchDistance = 3

type options struct {
	strategy         Strategy
	singleBlock      bool
	prefetchMode     PrefetchMode
	prefetchDistance int
	pinWorkers       bool
	logger           *Logger
}

func defaultOptions() options {
	return options{
		strategy:         StrategyAuto,
		prefetchMode:     PrefetchDistance,
		prefetchDistance: DefaultPrefetchDistance,
		logger:           NoopLogger(),
	}
}

// Option configures Hash, BatchHash and ParallelHash behavior.
//
// Options exist to avoid exploding the API surface with per-variant entry
// points; every combination produces the documented digest values.
type Option func(*options)

// WithStrategy pins a specific fold kernel instead of the
// capability-selected default.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithSingleBlock folds the message to 64 bytes instead of 128, so the
// digest needs a single compression call. Digests in single-block mode
// differ from (and are incomparable with) default-mode digests for the same
// message; the truncation relation between widths holds within each mode.
func WithSingleBlock() Option {
	return func(o *options) {
		o.singleBlock = true
	}
}

// WithPrefetchMode selects the batch processor's prefetch scheduling.
func WithPrefetchMode(m PrefetchMode) Option {
	return func(o *options) {
		o.prefetchMode = m
	}
}

// WithPrefetchDistance sets how many messages ahead the batch processor
// touches. Values < 1 disable prefetching.
func WithPrefetchDistance(d int) Option {
	return func(o *options) {
		if d < 1 {
			o.prefetchMode = PrefetchNone
			return
		}
		o.prefetchDistance = d
	}
}

// WithPinnedWorkers asks ParallelHash to pin each worker to a CPU. This is
// a throughput hint: pinning failures are ignored and digests never depend
// on it. No-op on platforms without affinity support.
func WithPinnedWorkers() Option {
	return func(o *options) {
		o.pinWorkers = true
	}
}

// WithLogger sets the logger for diagnostic output. If nil is passed,
// logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
