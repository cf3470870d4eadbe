package muto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes surfaced by the codec and driver.
var (
	// Frame corruption detected at decode.
	ErrInvalidHeader    = errors.New("invalid frame header")
	ErrInvalidTail      = errors.New("invalid frame tail")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrLengthMismatch   = errors.New("frame length mismatch")

	// ErrPayloadTooLarge means the payload cannot be framed. This is a
	// programming error; the fixed command set never triggers it.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTimeout means no or insufficient bytes arrived within the read
	// deadline. The link stays open; the caller may retry.
	ErrTimeout = errors.New("communication timeout")

	// ErrInvalidParameter means an identifier was outside its valid
	// domain. Identifiers are never clamped: a wrong id addresses a
	// different physical actuator.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotConnected means an operation was attempted before Open.
	ErrNotConnected = errors.New("transport not connected")
)

// CommError wraps a failure with the driver operation that produced it.
type CommError struct {
	Op  string // Operation that failed (e.g., "servo_move", "read_angle")
	Err error  // Underlying error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error is a communication timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
