//go:build !baremetal

package transports

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// UART implements Transport over a hardware UART (e.g. the Raspberry Pi's
// /dev/serial0) with an optional GPIO direction-control line for half-duplex
// RS-485-style transceivers. Without a direction line it behaves exactly
// like the stream transport it wraps.
type UART struct {
	stream Transport
	cfg    UARTConfig
	logger *zap.Logger
	pin    gpio.PinOut
	opened bool
}

// UARTConfig holds configuration for a half-duplex UART transport.
type UARTConfig struct {
	// Port is the UART device path. Default is "/dev/serial0".
	Port string

	// BaudRate is the communication speed. Default is 115200.
	BaudRate int

	// ReadTimeout bounds Read calls until changed via SetReadTimeout.
	ReadTimeout time.Duration

	// DirectionPin names the GPIO line driving the transceiver's DE/RE
	// input, e.g. "GPIO17". High enables transmit, low enables receive.
	// Empty means full-duplex wiring and no direction control.
	DirectionPin string

	// Pin overrides DirectionPin with a pre-resolved output line. Used
	// for testing; when set, DirectionPin is ignored.
	Pin gpio.PinOut

	// Stream overrides the underlying stream transport. Used for testing;
	// when nil a Serial transport is built from Port/BaudRate/ReadTimeout.
	Stream Transport

	// Logger receives transport-level debug output. Nil disables logging.
	Logger *zap.Logger
}

// NewUART creates a half-duplex UART transport. Nothing is opened and no
// GPIO is claimed until Open.
func NewUART(cfg UARTConfig) *UART {
	if cfg.Port == "" {
		cfg.Port = "/dev/serial0"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stream := cfg.Stream
	if stream == nil {
		stream = NewSerial(SerialConfig{
			Port:        cfg.Port,
			BaudRate:    cfg.BaudRate,
			ReadTimeout: cfg.ReadTimeout,
			Logger:      cfg.Logger,
		})
	}

	return &UART{stream: stream, cfg: cfg, logger: logger}
}

// Open opens the UART and, if configured, claims the direction line and
// drives it low so the transceiver starts in receive mode.
func (t *UART) Open() error {
	if t.opened {
		return nil
	}

	if err := t.stream.Open(); err != nil {
		return err
	}

	pin := t.cfg.Pin
	if pin == nil && t.cfg.DirectionPin != "" {
		if _, err := host.Init(); err != nil {
			t.stream.Close()
			return fmt.Errorf("gpio host init: %w", err)
		}
		p := gpioreg.ByName(t.cfg.DirectionPin)
		if p == nil {
			t.stream.Close()
			return fmt.Errorf("direction pin %q not found", t.cfg.DirectionPin)
		}
		pin = p
	}

	if pin != nil {
		if err := pin.Out(gpio.Low); err != nil {
			t.stream.Close()
			return fmt.Errorf("direction pin receive mode: %w", err)
		}
		t.logger.Debug("direction line set to receive",
			zap.String("pin", t.cfg.DirectionPin))
	}

	t.pin = pin
	t.opened = true
	return nil
}

// Close returns the direction line to receive mode and closes the UART.
// Safe to call multiple times.
func (t *UART) Close() error {
	if !t.opened {
		return nil
	}
	t.opened = false

	if t.pin != nil {
		if err := t.pin.Out(gpio.Low); err != nil {
			t.logger.Warn("error releasing direction line", zap.Error(err))
		}
		t.pin = nil
	}
	return t.stream.Close()
}

// Write asserts the direction line, transmits, waits for the bytes to
// physically leave the wire, then de-asserts. De-asserting before the
// stream has drained would truncate the last bytes on real hardware, which
// is why the underlying stream's Write only returns after draining. The
// line is returned to receive mode on every path, including write errors.
func (t *UART) Write(p []byte) (int, error) {
	if !t.opened {
		return 0, ErrNotOpen
	}

	if t.pin != nil {
		if err := t.pin.Out(gpio.High); err != nil {
			return 0, fmt.Errorf("direction pin transmit mode: %w", err)
		}
		defer func() {
			if err := t.pin.Out(gpio.Low); err != nil {
				t.logger.Warn("error returning direction line to receive", zap.Error(err))
			}
		}()
	}

	return t.stream.Write(p)
}

// Read forces the direction line into receive mode, then reads from the
// UART. A read is never issued while the line is transmit-asserted.
func (t *UART) Read(p []byte) (int, error) {
	if !t.opened {
		return 0, ErrNotOpen
	}

	if t.pin != nil {
		if err := t.pin.Out(gpio.Low); err != nil {
			return 0, fmt.Errorf("direction pin receive mode: %w", err)
		}
	}

	return t.stream.Read(p)
}

// SetReadTimeout bounds subsequent Read calls.
func (t *UART) SetReadTimeout(timeout time.Duration) error {
	if !t.opened {
		return ErrNotOpen
	}
	return t.stream.SetReadTimeout(timeout)
}
