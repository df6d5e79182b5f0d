package foldsum

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/fastsum/foldsum/internal/sm3"
)

// ParallelHash computes digests for msgs across worker goroutines and
// returns one w.Bytes()-long digest per message. Digests are bit-identical
// to element-wise sequential Hash for any worker count.
//
// workers is clamped to GOMAXPROCS and to len(msgs); values < 1 select
// GOMAXPROCS. Messages are split into contiguous, non-overlapping
// partitions, the last absorbing any remainder. Workers are created fresh
// per call and share no mutable memory except their disjoint output ranges;
// the call returns only after every worker has finished. There is no
// partial success: inputs are validated up front and either every message
// gets a digest or the call returns an error having written nothing.
func ParallelHash(msgs [][]byte, workers int, w Width, optFns ...Option) ([][]byte, error) {
	if !w.valid() {
		return nil, &ErrInvalidWidth{Width: w}
	}
	if len(msgs) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, m := range msgs {
		if len(m) != MessageSize {
			return nil, &ErrMessageSize{Index: i, Length: len(m)}
		}
	}

	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	m := len(msgs)
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if procs := runtime.GOMAXPROCS(0); workers > procs {
		workers = procs
	}
	if workers > m {
		workers = m
	}

	o.logger.WithWidth(w).WithWorkers(workers).Debug("parallel dispatch",
		"messages", m,
		"pinned", o.pinWorkers,
	)

	// One backing array for all digests; workers write disjoint ranges.
	digestLen := w.Bytes()
	backing := make([]byte, m*digestLen)
	outs := make([][]byte, m)
	for i := range outs {
		outs[i] = backing[i*digestLen : (i+1)*digestLen]
	}

	per := m / workers

	var g errgroup.Group
	for t := 0; t < workers; t++ {
		start := t * per
		end := start + per
		if t == workers-1 {
			end = m
		}
		cpu := t

		g.Go(func() error {
			if o.pinWorkers {
				// Throughput hint only; pinning failure is not an error.
				if err := pinWorker(cpu); err != nil {
					o.logger.Debug("worker pinning failed", "cpu", cpu, "error", err)
				}
			}
			var out [sm3.Size]byte
			for i := start; i < end; i++ {
				state := digestState(msgs[i], &o)
				sm3.PutState(out[:], &state)
				copy(outs[i], out[:digestLen])
			}
			return nil
		})
	}

	// Barrier: no partition is visible to the caller before all complete.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}
