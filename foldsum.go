package foldsum

import (
	"github.com/fastsum/foldsum/internal/fold"
	"github.com/fastsum/foldsum/internal/sm3"
)

// MessageSize is the only supported input length, in bytes.
const MessageSize = fold.MessageSize

// Width is the digest width in bits.
type Width int

const (
	// Width128 yields a 16-byte digest: the first 16 bytes of the
	// Width256 digest for the same message and fold mode.
	Width128 Width = 128
	// Width256 yields the full 32-byte digest.
	Width256 Width = 256
)

// Bytes returns the digest length in bytes.
func (w Width) Bytes() int { return int(w) / 8 }

func (w Width) valid() bool { return w == Width128 || w == Width256 }

// Hash computes the integrity digest of one 4096-byte message. The returned
// slice is freshly allocated and w.Bytes() long.
func Hash(msg []byte, w Width, optFns ...Option) ([]byte, error) {
	if !w.valid() {
		return nil, &ErrInvalidWidth{Width: w}
	}
	if len(msg) != MessageSize {
		return nil, &ErrMessageSize{Index: -1, Length: len(msg)}
	}

	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	state := digestState(msg, &o)
	out := make([]byte, sm3.Size)
	sm3.PutState(out, &state)
	return out[:w.Bytes()], nil
}

// Sum256 computes the 32-byte digest of one 4096-byte message with default
// options.
func Sum256(msg []byte) ([32]byte, error) {
	var out [32]byte
	d, err := Hash(msg, Width256)
	if err != nil {
		return out, err
	}
	copy(out[:], d)
	return out, nil
}

// Sum128 computes the 16-byte digest of one 4096-byte message with default
// options. It is always the first 16 bytes of Sum256 for the same message.
func Sum128(msg []byte) ([16]byte, error) {
	var out [16]byte
	d, err := Hash(msg, Width128)
	if err != nil {
		return out, err
	}
	copy(out[:], d)
	return out, nil
}

// digestState runs the fold + compression pipeline for one message and
// returns the final state words. Inputs are pre-validated by the callers.
func digestState(msg []byte, o *options) [sm3.StateWords]uint32 {
	state := sm3.IV()
	if o.singleBlock {
		var buf [fold.Len64]byte
		fold.Fold(buf[:], msg, o.strategy.fold())
		sm3.CompressBytes(&state, buf[:])
		return state
	}

	var buf [fold.Len128]byte
	fold.Fold(buf[:], msg, o.strategy.fold())
	sm3.CompressBytes(&state, buf[:sm3.BlockSize])
	sm3.CompressBytes(&state, buf[sm3.BlockSize:])
	return state
}
