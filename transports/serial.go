//go:build !baremetal

package transports

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Serial implements Transport over a buffered byte stream such as a
// USB-serial adapter.
type Serial struct {
	cfg    SerialConfig
	logger *zap.Logger
	port   serial.Port
}

// SerialConfig holds configuration for a stream transport.
type SerialConfig struct {
	// Port is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	Port string

	// BaudRate is the communication speed. Default is 115200.
	BaudRate int

	// ReadTimeout bounds Read calls until changed via SetReadTimeout.
	// Default is 50ms.
	ReadTimeout time.Duration

	// Logger receives transport-level debug output. Nil disables logging.
	Logger *zap.Logger
}

func (cfg *SerialConfig) applyDefaults() {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 50 * time.Millisecond
	}
}

// NewSerial creates a stream transport. The port is not touched until Open.
func NewSerial(cfg SerialConfig) *Serial {
	cfg.applyDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Serial{cfg: cfg, logger: logger}
}

// Open opens the serial device and discards any stale buffered data.
// Already-open transports are left as is.
func (t *Serial) Open() error {
	if t.port != nil {
		return nil
	}
	if t.cfg.Port == "" {
		return errors.New("serial port path is required")
	}

	mode := &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	t.logger.Info("opening serial port",
		zap.String("port", t.cfg.Port), zap.Int("baud", t.cfg.BaudRate))

	port, err := serial.Open(t.cfg.Port, mode)
	if err != nil {
		return mapOpenError(t.cfg.Port, err)
	}

	if err := port.SetReadTimeout(t.cfg.ReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	// Clear any stale data left over from a previous session.
	port.ResetInputBuffer()
	port.ResetOutputBuffer()

	t.port = port
	return nil
}

// Close closes the serial device. Calling Close on a closed transport is a
// no-op.
func (t *Serial) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		t.logger.Warn("error closing serial port", zap.Error(err))
		return err
	}
	return nil
}

// Write transmits the given bytes and waits for the OS to drain them to the
// wire, so a completed Write means the frame has physically left the port.
func (t *Serial) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrNotOpen
	}

	n, err := t.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("serial write: %w", err)
	}
	if err := t.port.Drain(); err != nil {
		return n, fmt.Errorf("serial drain: %w", err)
	}
	t.logger.Debug("wrote bytes", zap.Int("count", n))
	return n, nil
}

// Read returns whatever bytes arrive within the read timeout; (0, nil)
// signals a timeout with no data.
func (t *Serial) Read(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrNotOpen
	}
	return t.port.Read(p)
}

// SetReadTimeout bounds subsequent Read calls.
func (t *Serial) SetReadTimeout(timeout time.Duration) error {
	if t.port == nil {
		return ErrNotOpen
	}
	return t.port.SetReadTimeout(timeout)
}

// PortName returns the configured device path.
func (t *Serial) PortName() string {
	return t.cfg.Port
}

func mapOpenError(portName string, err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortBusy:
			return fmt.Errorf("%w: %s: %v", ErrPortUnavailable, portName, err)
		case serial.PermissionDenied:
			return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, portName, err)
		}
	}
	return fmt.Errorf("failed to open %s: %w", portName, err)
}
