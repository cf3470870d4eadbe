//go:build baremetal

package transports

import (
	"fmt"
	"machine"
	"time"
)

// MCU implements Transport over a TinyGo machine.UART, with an optional
// direction-control pin for half-duplex transceivers.
type MCU struct {
	uart   *machine.UART
	cfg    MCUConfig
	opened bool
}

// MCUConfig holds configuration for a microcontroller UART transport.
type MCUConfig struct {
	// Port selects the UART: "0" or "1".
	Port string

	// BaudRate is the communication speed. Default is 115200.
	BaudRate int

	// DirectionPin drives a half-duplex transceiver's DE/RE input.
	// Only used when HasDirectionPin is true.
	DirectionPin    machine.Pin
	HasDirectionPin bool
}

var currentMCU MCU

// NewMCU creates a UART transport for the given configuration.
func NewMCU(cfg MCUConfig) *MCU {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	currentMCU = MCU{cfg: cfg}
	return &currentMCU
}

func (t *MCU) Open() error {
	if t.opened {
		return nil
	}

	switch t.cfg.Port {
	case "0":
		t.uart = machine.UART0
	case "1":
		t.uart = machine.UART1
	default:
		return fmt.Errorf("unknown UART %q", t.cfg.Port)
	}

	t.uart.SetBaudRate(uint32(t.cfg.BaudRate))

	if t.cfg.HasDirectionPin {
		t.cfg.DirectionPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		t.cfg.DirectionPin.Low()
	}

	t.opened = true
	return nil
}

func (t *MCU) Close() error {
	if t.opened && t.cfg.HasDirectionPin {
		t.cfg.DirectionPin.Low()
	}
	t.opened = false
	return nil
}

// Write transmits the given bytes. machine.UART has no TX-complete signal,
// so with a direction pin the transmit window is held for the wire time of
// the buffer (10 bits per byte at the configured baud rate) before
// switching back to receive.
func (t *MCU) Write(p []byte) (int, error) {
	if !t.opened {
		return 0, ErrNotOpen
	}

	if t.cfg.HasDirectionPin {
		t.cfg.DirectionPin.High()
		defer t.cfg.DirectionPin.Low()
	}

	n, err := t.uart.Write(p)
	if err != nil {
		return n, err
	}

	if t.cfg.HasDirectionPin {
		wireTime := time.Duration(len(p)) * 10 * time.Second / time.Duration(t.cfg.BaudRate)
		time.Sleep(wireTime)
	}

	return n, nil
}

func (t *MCU) Read(p []byte) (int, error) {
	if !t.opened {
		return 0, ErrNotOpen
	}
	if t.cfg.HasDirectionPin {
		t.cfg.DirectionPin.Low()
	}
	if t.uart.Buffered() == 0 {
		return 0, nil
	}
	return t.uart.Read(p)
}

func (t *MCU) SetReadTimeout(timeout time.Duration) error {
	if !t.opened {
		return ErrNotOpen
	}
	return nil
}
