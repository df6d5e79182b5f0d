package foldsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastsum/foldsum/testutil"
)

func makeOutputs(n int, w Width) [][]byte {
	outs := make([][]byte, n)
	for i := range outs {
		outs[i] = make([]byte, w.Bytes())
	}
	return outs
}

// TestBatchHashEquivalence checks the central batch guarantee: batching
// must never change digest values, only throughput.
func TestBatchHashEquivalence(t *testing.T) {
	rng := testutil.NewRNG(10)

	tests := []struct {
		name string
		n    int
		w    Width
		opts []Option
	}{
		{"one message", 1, Width256, nil},
		{"small batch", 7, Width256, nil},
		{"larger batch", 64, Width256, nil},
		{"width 128", 16, Width128, nil},
		{"single block", 16, Width256, []Option{WithSingleBlock()}},
		{"no prefetch", 16, Width256, []Option{WithPrefetchMode(PrefetchNone)}},
		{"pipelined prefetch", 33, Width256, []Option{WithPrefetchMode(PrefetchPipelined)}},
		{"long prefetch distance", 5, Width256, []Option{WithPrefetchDistance(16)}},
		{"scalar kernel", 9, Width256, []Option{WithStrategy(StrategyScalar)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msgs := rng.Messages(tc.n)
			outs := makeOutputs(tc.n, tc.w)

			require.NoError(t, BatchHash(msgs, outs, tc.w, tc.opts...))

			for i, msg := range msgs {
				want, err := Hash(msg, tc.w, tc.opts...)
				require.NoError(t, err)
				assert.Equal(t, want, outs[i], "message %d", i)
			}
		})
	}
}

// TestBatchHashPrefetchModesAgree checks that prefetch scheduling is purely
// advisory: every mode yields identical digests.
func TestBatchHashPrefetchModesAgree(t *testing.T) {
	rng := testutil.NewRNG(11)
	msgs := rng.Messages(21)

	base := makeOutputs(len(msgs), Width256)
	require.NoError(t, BatchHash(msgs, base, Width256, WithPrefetchMode(PrefetchNone)))

	for _, mode := range []PrefetchMode{PrefetchDistance, PrefetchPipelined} {
		outs := makeOutputs(len(msgs), Width256)
		require.NoError(t, BatchHash(msgs, outs, Width256, WithPrefetchMode(mode)))
		assert.Equal(t, base, outs, "mode %s", mode)
	}
}

func TestBatchHashOverwritesOutputs(t *testing.T) {
	rng := testutil.NewRNG(12)
	msgs := rng.Messages(3)

	outs := makeOutputs(3, Width256)
	for _, out := range outs {
		for i := range out {
			out[i] = 0xEE
		}
	}

	require.NoError(t, BatchHash(msgs, outs, Width256))
	for i, msg := range msgs {
		want, err := Hash(msg, Width256)
		require.NoError(t, err)
		assert.Equal(t, want, outs[i])
	}
}

func TestBatchHashContractViolations(t *testing.T) {
	rng := testutil.NewRNG(13)
	msgs := rng.Messages(4)

	err := BatchHash(nil, nil, Width256)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	err = BatchHash(msgs, makeOutputs(3, Width256), Width256)
	var mismatch *ErrBatchMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 4, mismatch.Messages)
	assert.Equal(t, 3, mismatch.Outputs)

	bad := rng.Messages(4)
	bad[2] = bad[2][:100]
	err = BatchHash(bad, makeOutputs(4, Width256), Width256)
	var sizeErr *ErrMessageSize
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 2, sizeErr.Index)

	outs := makeOutputs(4, Width256)
	outs[1] = outs[1][:16]
	err = BatchHash(msgs, outs, Width256)
	var outErr *ErrOutputSize
	require.ErrorAs(t, err, &outErr)
	assert.Equal(t, 1, outErr.Index)

	err = BatchHash(msgs, makeOutputs(4, Width256), Width(64))
	var widthErr *ErrInvalidWidth
	assert.ErrorAs(t, err, &widthErr)
}

func BenchmarkBatchHash(b *testing.B) {
	rng := testutil.NewRNG(14)
	const n = 256
	msgs := rng.Messages(n)
	outs := makeOutputs(n, Width256)

	for _, mode := range []PrefetchMode{PrefetchNone, PrefetchDistance, PrefetchPipelined} {
		b.Run(mode.String(), func(b *testing.B) {
			b.SetBytes(int64(n * MessageSize))
			for i := 0; i < b.N; i++ {
				_ = BatchHash(msgs, outs, Width256, WithPrefetchMode(mode))
			}
		})
	}
}
