// Package transports provides the physical-link backends for the Muto
// driver: a buffered stream transport for USB-serial adapters, a half-duplex
// UART transport with optional direction control for RS-485-style wiring, a
// TinyGo variant, and a mock for testing.
package transports

import "time"

// Transport is the capability set shared by all link backends. The driver
// owns exactly one Transport and is its sole reader and writer.
type Transport interface {
	// Open establishes the physical link. Opening can have hardware side
	// effects (DTR toggling resets some boards), so it is never implicit.
	Open() error

	// Close releases the link. Safe to call multiple times.
	Close() error

	// Write transmits the given bytes and returns the count written.
	Write(p []byte) (int, error)

	// Read blocks up to the configured read timeout and returns whatever
	// bytes arrived. A return of (0, nil) signals "no data yet", not an
	// error.
	Read(p []byte) (int, error)

	// SetReadTimeout bounds subsequent Read calls.
	SetReadTimeout(timeout time.Duration) error
}
