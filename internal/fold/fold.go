// Package fold implements the XOR-fold reduction stage: a strided parity
// reduction of a fixed 4096-byte message into a 64- or 128-byte buffer.
//
// For every output position i, the result is the XOR of all message bytes
// whose offset is congruent to i modulo the output length. XOR is linear and
// commutative, so every kernel below is free to choose its own load batching
// and tree shape; all of them produce bit-identical output. The kernels exist
// purely to trade instruction-level parallelism against code size, following
// the same dispatch structure as runtime-selected SIMD kernels: a default is
// chosen once at init from CPU capabilities, and callers may pin a specific
// kernel per call.
//
// This stage deliberately discards entropy for throughput. All nonlinear
// mixing is deferred to the SM3 compression stage downstream.
package fold

import (
	"encoding/binary"
	"fmt"
)

// MessageSize is the only supported input length.
const MessageSize = 4096

// Output lengths supported by Fold.
const (
	Len64  = 64
	Len128 = 128
)

// Strategy selects a fold kernel.
type Strategy uint8

const (
	// Auto resolves to the capability-selected default kernel.
	Auto Strategy = iota
	// Scalar is the byte-at-a-time reference kernel.
	Scalar
	// Words processes one 64-bit word at a time.
	Words
	// Unrolled8 keeps eight independent row accumulators per word column.
	Unrolled8
	// Interleaved16 streams the message through sixteen interleaved
	// 64-bit accumulators.
	Interleaved16
)

// String returns the string representation of a Strategy.
func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Scalar:
		return "scalar"
	case Words:
		return "words"
	case Unrolled8:
		return "unrolled8"
	case Interleaved16:
		return "interleaved16"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a string into a Strategy value.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "auto":
		return Auto, true
	case "scalar":
		return Scalar, true
	case "words":
		return Words, true
	case "unrolled8":
		return Unrolled8, true
	case "interleaved16":
		return Interleaved16, true
	default:
		return Auto, false
	}
}

// Fold reduces msg into dst by strided XOR parity. dst is entirely
// overwritten. len(dst) must be Len64 or Len128 and len(msg) must be
// MessageSize; both are caller contract violations, rejected immediately.
func Fold(dst, msg []byte, strategy Strategy) {
	if len(msg) != MessageSize {
		panic(fmt.Sprintf("fold: message length %d, want %d", len(msg), MessageSize))
	}
	if len(dst) != Len64 && len(dst) != Len128 {
		panic(fmt.Sprintf("fold: output length %d, want %d or %d", len(dst), Len64, Len128))
	}
	if strategy == Auto {
		strategy = activeStrategy
	}
	switch strategy {
	case Scalar:
		foldScalar(dst, msg)
	case Words:
		foldWords(dst, msg)
	case Unrolled8:
		foldUnrolled8(dst, msg)
	case Interleaved16:
		foldInterleaved16(dst, msg)
	default:
		panic(fmt.Sprintf("fold: unknown strategy %d", strategy))
	}
}

// foldScalar is the reference kernel. Output lengths are powers of two, so
// the stride reduces to a mask.
func foldScalar(dst, msg []byte) {
	mask := len(dst) - 1
	for i := range dst {
		dst[i] = 0
	}
	for o, b := range msg {
		dst[o&mask] ^= b
	}
}

// foldWords walks the message row by row, XORing 64-bit words into one
// accumulator per word column.
func foldWords(dst, msg []byte) {
	words := len(dst) / 8
	var acc [16]uint64
	for base := 0; base < MessageSize; base += len(dst) {
		row := msg[base : base+len(dst)]
		for w := 0; w < words; w++ {
			acc[w] ^= binary.LittleEndian.Uint64(row[w*8:])
		}
	}
	for w := 0; w < words; w++ {
		binary.LittleEndian.PutUint64(dst[w*8:], acc[w])
	}
}

// foldUnrolled8 processes eight rows per iteration with independent
// accumulators so the loads and XORs of different rows can issue in
// parallel.
func foldUnrolled8(dst, msg []byte) {
	stride := len(dst)
	words := stride / 8
	rows := MessageSize / stride // 64 or 32, both divisible by 8

	for w := 0; w < words; w++ {
		off := w * 8
		var a0, a1, a2, a3, a4, a5, a6, a7 uint64
		for r := 0; r < rows; r += 8 {
			base := r*stride + off
			a0 ^= binary.LittleEndian.Uint64(msg[base:])
			a1 ^= binary.LittleEndian.Uint64(msg[base+stride:])
			a2 ^= binary.LittleEndian.Uint64(msg[base+2*stride:])
			a3 ^= binary.LittleEndian.Uint64(msg[base+3*stride:])
			a4 ^= binary.LittleEndian.Uint64(msg[base+4*stride:])
			a5 ^= binary.LittleEndian.Uint64(msg[base+5*stride:])
			a6 ^= binary.LittleEndian.Uint64(msg[base+6*stride:])
			a7 ^= binary.LittleEndian.Uint64(msg[base+7*stride:])
		}
		binary.LittleEndian.PutUint64(dst[off:], a0^a1^a2^a3^a4^a5^a6^a7)
	}
}

// foldInterleaved16 streams the message sequentially in 128-byte chunks
// through sixteen accumulators, maximizing cache-line reuse: every load is
// contiguous with the previous one. For 64-byte output the sixteen lanes
// collapse pairwise at the end.
func foldInterleaved16(dst, msg []byte) {
	var a0, a1, a2, a3, a4, a5, a6, a7 uint64
	var a8, a9, a10, a11, a12, a13, a14, a15 uint64

	for base := 0; base < MessageSize; base += 128 {
		chunk := msg[base : base+128]
		a0 ^= binary.LittleEndian.Uint64(chunk[0:])
		a1 ^= binary.LittleEndian.Uint64(chunk[8:])
		a2 ^= binary.LittleEndian.Uint64(chunk[16:])
		a3 ^= binary.LittleEndian.Uint64(chunk[24:])
		a4 ^= binary.LittleEndian.Uint64(chunk[32:])
		a5 ^= binary.LittleEndian.Uint64(chunk[40:])
		a6 ^= binary.LittleEndian.Uint64(chunk[48:])
		a7 ^= binary.LittleEndian.Uint64(chunk[56:])
		a8 ^= binary.LittleEndian.Uint64(chunk[64:])
		a9 ^= binary.LittleEndian.Uint64(chunk[72:])
		a10 ^= binary.LittleEndian.Uint64(chunk[80:])
		a11 ^= binary.LittleEndian.Uint64(chunk[88:])
		a12 ^= binary.LittleEndian.Uint64(chunk[96:])
		a13 ^= binary.LittleEndian.Uint64(chunk[104:])
		a14 ^= binary.LittleEndian.Uint64(chunk[112:])
		a15 ^= binary.LittleEndian.Uint64(chunk[120:])
	}

	if len(dst) == Len128 {
		binary.LittleEndian.PutUint64(dst[0:], a0)
		binary.LittleEndian.PutUint64(dst[8:], a1)
		binary.LittleEndian.PutUint64(dst[16:], a2)
		binary.LittleEndian.PutUint64(dst[24:], a3)
		binary.LittleEndian.PutUint64(dst[32:], a4)
		binary.LittleEndian.PutUint64(dst[40:], a5)
		binary.LittleEndian.PutUint64(dst[48:], a6)
		binary.LittleEndian.PutUint64(dst[56:], a7)
		binary.LittleEndian.PutUint64(dst[64:], a8)
		binary.LittleEndian.PutUint64(dst[72:], a9)
		binary.LittleEndian.PutUint64(dst[80:], a10)
		binary.LittleEndian.PutUint64(dst[88:], a11)
		binary.LittleEndian.PutUint64(dst[96:], a12)
		binary.LittleEndian.PutUint64(dst[104:], a13)
		binary.LittleEndian.PutUint64(dst[112:], a14)
		binary.LittleEndian.PutUint64(dst[120:], a15)
		return
	}

	// 64-byte output: lane i and lane i+8 land on the same column.
	binary.LittleEndian.PutUint64(dst[0:], a0^a8)
	binary.LittleEndian.PutUint64(dst[8:], a1^a9)
	binary.LittleEndian.PutUint64(dst[16:], a2^a10)
	binary.LittleEndian.PutUint64(dst[24:], a3^a11)
	binary.LittleEndian.PutUint64(dst[32:], a4^a12)
	binary.LittleEndian.PutUint64(dst[40:], a5^a13)
	binary.LittleEndian.PutUint64(dst[48:], a6^a14)
	binary.LittleEndian.PutUint64(dst[56:], a7^a15)
}
