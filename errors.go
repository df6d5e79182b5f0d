package foldsum

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when a batch call receives no messages.
	ErrEmptyBatch = errors.New("batch is empty")
)

// ErrMessageSize indicates an input message whose length is not MessageSize.
type ErrMessageSize struct {
	Index  int // position within the batch, -1 for single-message calls
	Length int
}

func (e *ErrMessageSize) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("message length %d, want %d", e.Length, MessageSize)
	}
	return fmt.Sprintf("message %d: length %d, want %d", e.Index, e.Length, MessageSize)
}

// ErrInvalidWidth indicates an unsupported digest width.
type ErrInvalidWidth struct {
	Width Width
}

func (e *ErrInvalidWidth) Error() string {
	return fmt.Sprintf("invalid digest width: %d (want %d or %d)", e.Width, Width128, Width256)
}

// ErrOutputSize indicates a digest destination of the wrong length.
type ErrOutputSize struct {
	Index  int
	Length int
	Want   int
}

func (e *ErrOutputSize) Error() string {
	return fmt.Sprintf("output %d: length %d, want %d", e.Index, e.Length, e.Want)
}

// ErrBatchMismatch indicates message and output slices of different lengths.
type ErrBatchMismatch struct {
	Messages int
	Outputs  int
}

func (e *ErrBatchMismatch) Error() string {
	return fmt.Sprintf("batch mismatch: %d messages, %d outputs", e.Messages, e.Outputs)
}
