// Package testutil provides deterministic message generators for tests and
// benchmarks.
package testutil

import "math/rand"

// MessageSize mirrors the library's fixed input length. Duplicated here so
// the package has no dependency back into the library it tests.
const MessageSize = 4096

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int { return r.rand.Intn(n) }

// Message generates one random fixed-size message.
func (r *RNG) Message() []byte {
	msg := make([]byte, MessageSize)
	r.rand.Read(msg)
	return msg
}

// Messages generates num random fixed-size messages backed by one
// contiguous allocation.
func (r *RNG) Messages(num int) [][]byte {
	backing := make([]byte, num*MessageSize)
	r.rand.Read(backing)

	msgs := make([][]byte, num)
	for i := range msgs {
		msgs[i] = backing[i*MessageSize : (i+1)*MessageSize]
	}
	return msgs
}

// SequentialMessage returns the fixed byte pattern 0,1,2,...,4095 mod 256.
func SequentialMessage() []byte {
	msg := make([]byte, MessageSize)
	for i := range msg {
		msg[i] = byte(i)
	}
	return msg
}

// FilledMessage returns a message with every byte set to b.
func FilledMessage(b byte) []byte {
	msg := make([]byte, MessageSize)
	for i := range msg {
		msg[i] = b
	}
	return msg
}
