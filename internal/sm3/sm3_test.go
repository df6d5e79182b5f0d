package sm3

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sum computes a full padded SM3 digest using only Compress. The padding
// logic lives here rather than in the package because the library never
// hashes arbitrary-length input; the tests need it to check the compression
// function against the published GB/T 32905-2016 vectors.
func sum(data []byte) [Size]byte {
	state := IV()

	msgBits := uint64(len(data)) << 3
	for len(data) >= BlockSize {
		CompressBytes(&state, data[:BlockSize])
		data = data[BlockSize:]
	}

	var buf [2 * BlockSize]byte
	n := copy(buf[:], data)
	buf[n] = 0x80
	padded := BlockSize
	if n+1 > BlockSize-8 {
		padded = 2 * BlockSize
	}
	binary.BigEndian.PutUint64(buf[padded-8:], msgBits)
	for off := 0; off < padded; off += BlockSize {
		CompressBytes(&state, buf[off:off+BlockSize])
	}

	var out [Size]byte
	PutState(out[:], &state)
	return out
}

func TestKnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0"},
		{"abcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd", "debe9ff92275b8a138604889c18e5a4d6fdb70e5387e5765293dcba39c0c5732"},
	}
	for _, tc := range tests {
		dig := sum([]byte(tc.in))
		assert.Equal(t, tc.want, hex.EncodeToString(dig[:]), "SM3(%q)", tc.in)
	}
}

// TestCompressKnownBlock pins the compression function itself: one fixed
// 64-byte block (the padded "abc" message) applied to the IV must reproduce
// the published digest words.
func TestCompressKnownBlock(t *testing.T) {
	var seg [BlockSize]byte
	copy(seg[:], "abc")
	seg[3] = 0x80
	binary.BigEndian.PutUint64(seg[BlockSize-8:], 24)

	state := IV()
	CompressBytes(&state, seg[:])

	want, err := hex.DecodeString("66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0")
	require.NoError(t, err)

	var got [Size]byte
	PutState(got[:], &state)
	assert.Equal(t, want, got[:])
}

func TestCompressDeterministic(t *testing.T) {
	var seg [BlockSize]byte
	for i := range seg {
		seg[i] = byte(i * 7)
	}

	s1, s2 := IV(), IV()
	CompressBytes(&s1, seg[:])
	CompressBytes(&s2, seg[:])
	assert.Equal(t, s1, s2)

	// The feed-forward must move the state away from the IV.
	assert.NotEqual(t, IV(), s1)
}

func TestCompressDoesNotAliasBlock(t *testing.T) {
	var block [16]uint32
	for i := range block {
		block[i] = uint32(i)
	}
	before := block

	state := IV()
	Compress(&state, &block)
	assert.Equal(t, before, block, "Compress must not mutate the input block")
}

func BenchmarkCompress(b *testing.B) {
	var seg [BlockSize]byte
	for i := range seg {
		seg[i] = byte(i)
	}
	state := IV()
	b.SetBytes(BlockSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CompressBytes(&state, seg[:])
	}
}
