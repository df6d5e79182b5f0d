// Package sm3 implements the SM3 compression function as defined in
// GB/T 32905-2016 (ISO/IEC 10118-3:2018).
//
// Only the single-block compression primitive is provided. The fold stage
// upstream reduces every message to one or two 64-byte segments, so there is
// no padding or streaming machinery here; callers feed exact 64-byte
// big-endian blocks and serialize the final state themselves.
package sm3

import (
	"encoding/binary"
	"math/bits"
)

const (
	// Size is the byte length of a full digest (the serialized state).
	Size = 32

	// BlockSize is the byte length of one compression block.
	BlockSize = 64

	// StateWords is the number of 32-bit words in the hash state.
	StateWords = 8
)

const (
	init0 = 0x7380166f
	init1 = 0x4914b2b9
	init2 = 0x172442d7
	init3 = 0xda8a0600
	init4 = 0xa96f30bc
	init5 = 0x163138aa
	init6 = 0xe38dee4d
	init7 = 0xb0fb0e4e
)

// IV returns the fixed initialization vector.
func IV() [StateWords]uint32 {
	return [StateWords]uint32{init0, init1, init2, init3, init4, init5, init6, init7}
}

// Compress applies the compression function to state with one 16-word block.
// The block words are already in host order (big-endian interpretation of
// the underlying bytes happens in CompressBytes or at the caller).
func Compress(state *[StateWords]uint32, block *[16]uint32) {
	var w [68]uint32
	copy(w[:16], block[:])
	for i := 16; i < 68; i++ {
		t := w[i-16] ^ w[i-9] ^ bits.RotateLeft32(w[i-3], 15)
		w[i] = t ^ bits.RotateLeft32(t, 15) ^ bits.RotateLeft32(t, 23) ^ bits.RotateLeft32(w[i-13], 7) ^ w[i-6]
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]

	for i := 0; i < 16; i++ {
		x := bits.RotateLeft32(a, 12)
		ss1 := bits.RotateLeft32(x+e+rotT[i], 7)
		tt1 := (a ^ b ^ c) + d + (ss1 ^ x) + (w[i] ^ w[i+4])
		tt2 := (e ^ f ^ g) + h + ss1 + w[i]

		d, c, b, a = c, bits.RotateLeft32(b, 9), a, tt1
		h, g, f, e = g, bits.RotateLeft32(f, 19), e, tt2^bits.RotateLeft32(tt2, 9)^bits.RotateLeft32(tt2, 17)
	}

	for i := 16; i < 64; i++ {
		x := bits.RotateLeft32(a, 12)
		ss1 := bits.RotateLeft32(x+e+rotT[i], 7)
		tt1 := ((a & b) | (b & c) | (a & c)) + d + (ss1 ^ x) + (w[i] ^ w[i+4])
		tt2 := ((e & f) | (^e & g)) + h + ss1 + w[i]

		d, c, b, a = c, bits.RotateLeft32(b, 9), a, tt1
		h, g, f, e = g, bits.RotateLeft32(f, 19), e, tt2^bits.RotateLeft32(tt2, 9)^bits.RotateLeft32(tt2, 17)
	}

	// Davies-Meyer feed-forward.
	state[0] ^= a
	state[1] ^= b
	state[2] ^= c
	state[3] ^= d
	state[4] ^= e
	state[5] ^= f
	state[6] ^= g
	state[7] ^= h
}

// CompressBytes interprets seg as a 64-byte big-endian block and compresses
// it into state.
//
// SAFETY: Assumes len(seg) >= BlockSize. The exported API validates lengths.
func CompressBytes(state *[StateWords]uint32, seg []byte) {
	var block [16]uint32
	for i := 0; i < 16; i++ {
		block[i] = binary.BigEndian.Uint32(seg[i*4:])
	}
	Compress(state, &block)
}

// PutState serializes state big-endian into dst.
//
// SAFETY: Assumes len(dst) >= Size.
func PutState(dst []byte, state *[StateWords]uint32) {
	for i, s := range state {
		binary.BigEndian.PutUint32(dst[i*4:], s)
	}
}

// rotate of Tj: rotT[i] = Tj << (i mod 32)
var rotT = [64]uint32{
	0x79cc4519,
	0xf3988a32,
	0xe7311465,
	0xce6228cb,
	0x9cc45197,
	0x3988a32f,
	0x7311465e,
	0xe6228cbc,
	0xcc451979,
	0x988a32f3,
	0x311465e7,
	0x6228cbce,
	0xc451979c,
	0x88a32f39,
	0x11465e73,
	0x228cbce6,
	0x9d8a7a87,
	0x3b14f50f,
	0x7629ea1e,
	0xec53d43c,
	0xd8a7a879,
	0xb14f50f3,
	0x629ea1e7,
	0xc53d43ce,
	0x8a7a879d,
	0x14f50f3b,
	0x29ea1e76,
	0x53d43cec,
	0xa7a879d8,
	0x4f50f3b1,
	0x9ea1e762,
	0x3d43cec5,
	0x7a879d8a,
	0xf50f3b14,
	0xea1e7629,
	0xd43cec53,
	0xa879d8a7,
	0x50f3b14f,
	0xa1e7629e,
	0x43cec53d,
	0x879d8a7a,
	0x0f3b14f5,
	0x1e7629ea,
	0x3cec53d4,
	0x79d8a7a8,
	0xf3b14f50,
	0xe7629ea1,
	0xcec53d43,
	0x9d8a7a87,
	0x3b14f50f,
	0x7629ea1e,
	0xec53d43c,
	0xd8a7a879,
	0xb14f50f3,
	0x629ea1e7,
	0xc53d43ce,
	0x8a7a879d,
	0x14f50f3b,
	0x29ea1e76,
	0x53d43cec,
	0xa7a879d8,
	0x4f50f3b1,
	0x9ea1e762,
	0x3d43cec5,
}
