package transports

import "errors"

// Sentinel errors for transport open and state failures.
var (
	// ErrPortUnavailable means the device path does not exist or is
	// already claimed by another process.
	ErrPortUnavailable = errors.New("serial port unavailable")

	// ErrPermissionDenied means the caller lacks OS-level access rights
	// to the device.
	ErrPermissionDenied = errors.New("serial port permission denied")

	// ErrNotOpen means the transport was used before Open or after Close.
	ErrNotOpen = errors.New("transport not open")
)
