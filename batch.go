package foldsum

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/fastsum/foldsum/internal/fold"
	"github.com/fastsum/foldsum/internal/sm3"
)

// prefetchSink absorbs advisory touch loads so the compiler cannot prove
// them dead. Written once per batch call.
var prefetchSink atomic.Uint32

// touchMessage reads one byte per kilobyte of an upcoming message to pull
// its cache lines toward the core. Go has no portable prefetch intrinsic;
// this is a hint only and never affects digests.
func touchMessage(m []byte) byte {
	return m[0] ^ m[1024] ^ m[2048] ^ m[3072]
}

// BatchHash computes digests for msgs into outs. Each outs[i] must be
// w.Bytes() long and is entirely overwritten. Digests are bit-identical to
// calling Hash on each message with the same options; batching changes
// throughput only.
//
// State is kept in a transposed (structure-of-arrays) layout: eight word
// lanes of length len(msgs), so initialization and extraction sweep one
// contiguous lane per state word instead of striding across per-message
// records.
func BatchHash(msgs [][]byte, outs [][]byte, w Width, optFns ...Option) error {
	if !w.valid() {
		return &ErrInvalidWidth{Width: w}
	}
	if len(msgs) == 0 {
		return ErrEmptyBatch
	}
	if len(msgs) != len(outs) {
		return &ErrBatchMismatch{Messages: len(msgs), Outputs: len(outs)}
	}
	for i, m := range msgs {
		if len(m) != MessageSize {
			return &ErrMessageSize{Index: i, Length: len(m)}
		}
	}
	for i, out := range outs {
		if len(out) != w.Bytes() {
			return &ErrOutputSize{Index: i, Length: len(out), Want: w.Bytes()}
		}
	}

	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	n := len(msgs)
	foldLen := fold.Len128
	if o.singleBlock {
		foldLen = fold.Len64
	}

	o.logger.WithWidth(w).WithBatchSize(n).Debug("batch dispatch",
		"prefetch", o.prefetchMode.String(),
		"fold_len", foldLen,
	)

	// One pool for all folded intermediates, freed as a unit at return.
	reduced := make([]byte, n*foldLen)

	// Transposed state: lanes[j][i] is word j of message i's state.
	backing := make([]uint32, sm3.StateWords*n)
	var lanes [sm3.StateWords][]uint32
	iv := sm3.IV()
	for j := 0; j < sm3.StateWords; j++ {
		lanes[j] = backing[j*n : (j+1)*n]
		lane := lanes[j]
		for i := range lane {
			lane[i] = iv[j]
		}
	}

	var sink byte
	strategy := o.strategy.fold()

	// Stage 1: fold every message, touching upcoming inputs per the
	// configured prefetch schedule.
	switch o.prefetchMode {
	case PrefetchNone:
		for i := 0; i < n; i++ {
			fold.Fold(reduced[i*foldLen:(i+1)*foldLen], msgs[i], strategy)
		}
	case PrefetchPipelined:
		// Two staggered phases over the batch halves; the second phase
		// runs one message further ahead since its inputs are colder.
		half := n / 2
		sink ^= foldPhase(reduced, msgs, 0, half, foldLen, o.prefetchDistance, strategy)
		sink ^= foldPhase(reduced, msgs, half, n, foldLen, o.prefetchDistance+1, strategy)
	default:
		sink ^= foldPhase(reduced, msgs, 0, n, foldLen, o.prefetchDistance, strategy)
	}

	// Stage 2: compress each reduced buffer through the transposed state.
	var state [sm3.StateWords]uint32
	for i := 0; i < n; i++ {
		if o.prefetchMode != PrefetchNone && i+1 < n {
			sink ^= reduced[(i+1)*foldLen]
		}

		for j := 0; j < sm3.StateWords; j++ {
			state[j] = lanes[j][i]
		}

		buf := reduced[i*foldLen : (i+1)*foldLen]
		sm3.CompressBytes(&state, buf[:sm3.BlockSize])
		if foldLen == fold.Len128 {
			sm3.CompressBytes(&state, buf[sm3.BlockSize:])
		}

		for j := 0; j < sm3.StateWords; j++ {
			lanes[j][i] = state[j]
		}
	}

	// Stage 3: extract digests lane by lane, big-endian.
	outWords := w.Bytes() / 4
	for j := 0; j < outWords; j++ {
		lane := lanes[j]
		for i := 0; i < n; i++ {
			binary.BigEndian.PutUint32(outs[i][j*4:], lane[i])
		}
	}

	prefetchSink.Add(uint32(sink))
	return nil
}

// foldPhase folds messages in [start, end), touching the message `distance`
// positions ahead before each fold. Returns the accumulated touch byte.
func foldPhase(reduced []byte, msgs [][]byte, start, end, foldLen, distance int, strategy fold.Strategy) byte {
	var sink byte
	for i := start; i < start+distance && i < end; i++ {
		sink ^= touchMessage(msgs[i])
	}
	for i := start; i < end; i++ {
		if i+distance < end {
			sink ^= touchMessage(msgs[i+distance])
		}
		fold.Fold(reduced[i*foldLen:(i+1)*foldLen], msgs[i], strategy)
	}
	return sink
}
