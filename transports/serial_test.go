//go:build !baremetal

package transports

import (
	"errors"
	"testing"
	"time"
)

func TestSerial_NotOpen(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyUSB0"})

	if _, err := s.Write([]byte{0x01}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write: expected ErrNotOpen, got %v", err)
	}
	if _, err := s.Read(make([]byte, 1)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Read: expected ErrNotOpen, got %v", err)
	}
	if err := s.SetReadTimeout(time.Second); !errors.Is(err, ErrNotOpen) {
		t.Errorf("SetReadTimeout: expected ErrNotOpen, got %v", err)
	}
}

func TestSerial_CloseBeforeOpen(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyUSB0"})

	if err := s.Close(); err != nil {
		t.Errorf("Close on never-opened transport failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestSerial_OpenRequiresPort(t *testing.T) {
	s := NewSerial(SerialConfig{})

	if err := s.Open(); err == nil {
		t.Error("expected error opening transport with no port configured")
	}
}

func TestSerial_Defaults(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyUSB0"})

	if s.cfg.BaudRate != 115200 {
		t.Errorf("default baud rate: got %d, want 115200", s.cfg.BaudRate)
	}
	if s.cfg.ReadTimeout != 50*time.Millisecond {
		t.Errorf("default read timeout: got %v, want 50ms", s.cfg.ReadTimeout)
	}
	if s.PortName() != "/dev/ttyUSB0" {
		t.Errorf("port name: got %q", s.PortName())
	}
}
