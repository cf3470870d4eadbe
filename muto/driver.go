package muto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BillFaton/muto-link/transports"
)

// Driver maps high-level servo operations onto protocol frames over one
// Transport. It caches no servo state: every read re-queries the hardware.
//
// The protocol carries no transaction identifiers, so a Driver and its
// Transport must be used by exactly one caller at a time. That discipline is
// a precondition of this type, not a guarantee it provides.
type Driver struct {
	transport transports.Transport
	timeout   time.Duration
	logger    *zap.Logger
	opened    bool
}

// Config holds configuration for creating a Driver.
type Config struct {
	// Transport is the underlying physical link. Required.
	Transport transports.Transport

	// Timeout bounds each response read. Default is 1 second.
	Timeout time.Duration

	// Logger receives driver-level output. Nil disables logging; there is
	// no ambient global logger.
	Logger *zap.Logger
}

// New creates a Driver. The transport is not opened; call Open or Session.
func New(cfg Config) (*Driver, error) {
	if cfg.Transport == nil {
		return nil, errors.New("transport is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		transport: cfg.Transport,
		timeout:   cfg.Timeout,
		logger:    logger,
	}, nil
}

// Open opens the underlying transport. Opening an already-open driver is a
// no-op.
func (d *Driver) Open() error {
	if d.opened {
		return nil
	}
	if err := d.transport.Open(); err != nil {
		return err
	}
	d.opened = true
	d.logger.Info("transport opened")
	return nil
}

// Close closes the underlying transport. Safe to call multiple times.
func (d *Driver) Close() error {
	if !d.opened {
		return nil
	}
	d.opened = false
	if err := d.transport.Close(); err != nil {
		d.logger.Warn("error closing transport", zap.Error(err))
		return err
	}
	d.logger.Info("transport closed")
	return nil
}

// Session opens the driver, runs fn, and closes the driver on every exit
// path, including when fn fails.
func (d *Driver) Session(fn func(d *Driver) error) error {
	if err := d.Open(); err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

// TorqueOn enables torque on all servos, allowing command control.
func (d *Driver) TorqueOn(ctx context.Context) error {
	d.logger.Info("enabling servo torque")
	if err := d.Write(ctx, RegTorqueOn, []byte{0x00}); err != nil {
		return &CommError{Op: "torque_on", Err: err}
	}
	return nil
}

// TorqueOff disables torque on all servos, allowing manual positioning.
func (d *Driver) TorqueOff(ctx context.Context) error {
	d.logger.Info("disabling servo torque")
	if err := d.Write(ctx, RegTorqueOff, []byte{0x00}); err != nil {
		return &CommError{Op: "torque_off", Err: err}
	}
	return nil
}

// ServoMove commands a servo to the given angle at the given speed. The id
// must be 1-255; angle is clamped to 0-180 and speed to 0-65535. Angle and
// speed clamp silently because they are continuous control values; the id
// never clamps because a substituted id would address a different physical
// actuator.
func (d *Driver) ServoMove(ctx context.Context, id, angle, speed int) error {
	if err := validateID(id); err != nil {
		return err
	}
	angle = clamp(angle, 0, MaxAngle)
	speed = clamp(speed, 0, MaxSpeed)

	d.logger.Info("moving servo",
		zap.Int("id", id), zap.Int("angle", angle), zap.Int("speed", speed))

	sp := EncodeUint16(uint16(speed))
	data := []byte{byte(id), byte(angle), sp[0], sp[1]}
	if err := d.Write(ctx, RegServoMove, data); err != nil {
		return &CommError{Op: "servo_move", Err: err}
	}
	return nil
}

// ReadServoAngle reads the current angle of a servo. The response payload is
// returned verbatim; its numeric layout varies by firmware revision, so
// interpretation is left to the caller.
func (d *Driver) ReadServoAngle(ctx context.Context, id int) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := d.Read(ctx, RegServoAngle, []byte{byte(id)})
	if err != nil {
		return nil, &CommError{Op: "read_angle", Err: err}
	}
	return data, nil
}

// CalibrateServo writes a position deviation for a servo. The deviation is
// transmitted as two's-complement big-endian 16 bits.
func (d *Driver) CalibrateServo(ctx context.Context, id int, deviation int16) error {
	if err := validateID(id); err != nil {
		return err
	}

	d.logger.Info("calibrating servo",
		zap.Int("id", id), zap.Int16("deviation", deviation))

	dev := EncodeUint16(uint16(deviation))
	data := []byte{byte(id), dev[0], dev[1]}
	if err := d.Write(ctx, RegCalibrate, data); err != nil {
		return &CommError{Op: "calibrate", Err: err}
	}
	return nil
}

// ReadBatteryLevel reads the baseboard battery level. The response payload
// is returned verbatim.
func (d *Driver) ReadBatteryLevel(ctx context.Context) ([]byte, error) {
	data, err := d.Read(ctx, RegBatteryLevel, nil)
	if err != nil {
		return nil, &CommError{Op: "read_battery", Err: err}
	}
	return data, nil
}

// Write sends a WRITE frame for the given register. No response is expected.
func (d *Driver) Write(ctx context.Context, addr byte, data []byte) error {
	if !d.opened {
		return ErrNotConnected
	}

	frame, err := EncodeFrame(InstWrite, addr, data)
	if err != nil {
		return err
	}

	d.logger.Debug("write command",
		zap.Uint8("addr", addr), zap.Int("data_len", len(data)))

	return d.send(frame)
}

// Read sends a READ frame for the given register and returns the payload of
// the response frame verbatim.
func (d *Driver) Read(ctx context.Context, addr byte, data []byte) ([]byte, error) {
	if !d.opened {
		return nil, ErrNotConnected
	}

	frame, err := EncodeFrame(InstRead, addr, data)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("read command",
		zap.Uint8("addr", addr), zap.Int("data_len", len(data)))

	if err := d.send(frame); err != nil {
		return nil, err
	}

	resp, err := d.readFrame(ctx)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("response received",
		zap.Uint8("instruction", resp.Instruction),
		zap.Uint8("addr", resp.Address),
		zap.Int("payload_len", len(resp.Payload)))

	return resp.Payload, nil
}

func (d *Driver) send(frame []byte) error {
	n, err := d.transport.Write(frame)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("incomplete write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// readFrame assembles one response frame: a 3-byte prefix carrying the LEN
// field, then the remaining LEN+2 bytes, then a full codec decode. The LEN
// field is the only boundary signal on the wire, so framing must happen
// here rather than in the transport.
func (d *Driver) readFrame(ctx context.Context) (Frame, error) {
	deadline := time.Now().Add(d.timeout)

	prefix, err := d.readFull(ctx, 3, deadline)
	if err != nil {
		return Frame{}, err
	}
	if prefix[0] != headerByte1 || prefix[1] != headerByte2 {
		return Frame{}, fmt.Errorf("%w: % X", ErrInvalidHeader, prefix[:2])
	}

	length := int(prefix[2])
	if length < 3 {
		return Frame{}, fmt.Errorf("%w: declared length %d", ErrLengthMismatch, length)
	}

	rest, err := d.readFull(ctx, length+2, deadline)
	if err != nil {
		return Frame{}, err
	}

	return DecodeFrame(append(prefix, rest...))
}

// readFull reads exactly n bytes or fails with ErrTimeout at the deadline.
// A timed-out transport read returns zero bytes and is not itself an error.
func (d *Driver) readFull(ctx context.Context, n int, deadline time.Time) ([]byte, error) {
	buf := make([]byte, n)
	total := 0

	for total < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: read %d of %d expected bytes", ErrTimeout, total, n)
		}

		d.transport.SetReadTimeout(remaining)

		k, err := d.transport.Read(buf[total:])
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		if k == 0 {
			// No data yet; let the deadline decide.
			time.Sleep(time.Millisecond)
			continue
		}
		total += k
	}

	return buf, nil
}

func validateID(id int) error {
	if id < MinServoID || id > MaxServoID {
		return fmt.Errorf("%w: servo id %d (valid range: %d-%d)",
			ErrInvalidParameter, id, MinServoID, MaxServoID)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
