package muto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrame_TorqueOn(t *testing.T) {
	// Torque ON: WRITE to 0x26 with payload 0x00.
	// LEN = 3 + 1 = 4, CHK = 255 - (04 + 01 + 26 + 00) = D4
	frame, err := EncodeFrame(InstWrite, 0x26, []byte{0x00})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	expected := []byte{0x55, 0x00, 0x04, 0x01, 0x26, 0x00, 0xD4, 0x00, 0xAA}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame: got % X, want % X", frame, expected)
	}
}

func TestEncodeFrame_EmptyPayload(t *testing.T) {
	// READ battery level: no payload.
	// LEN = 3, CHK = 255 - (03 + 02 + 01) = F9
	frame, err := EncodeFrame(InstRead, 0x01, nil)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	expected := []byte{0x55, 0x00, 0x03, 0x02, 0x01, 0xF9, 0x00, 0xAA}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame: got % X, want % X", frame, expected)
	}
}

func TestEncodeFrame_PayloadTooLarge(t *testing.T) {
	_, err := EncodeFrame(InstWrite, 0x40, make([]byte, MaxPayloadLen+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}

	// Exactly at the limit must still frame.
	if _, err := EncodeFrame(InstWrite, 0x40, make([]byte, MaxPayloadLen)); err != nil {
		t.Errorf("EncodeFrame at max payload failed: %v", err)
	}
}

func TestDecodeFrame_TorqueOn(t *testing.T) {
	frame := []byte{0x55, 0x00, 0x04, 0x01, 0x26, 0x00, 0xD4, 0x00, 0xAA}

	f, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}

	if f.Instruction != InstWrite {
		t.Errorf("instruction: got %02X, want %02X", f.Instruction, InstWrite)
	}
	if f.Address != 0x26 {
		t.Errorf("address: got %02X, want 26", f.Address)
	}
	if !bytes.Equal(f.Payload, []byte{0x00}) {
		t.Errorf("payload: got % X, want [00]", f.Payload)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		ins     byte
		addr    byte
		payload []byte
	}{
		{"torque on", InstWrite, 0x26, []byte{0x00}},
		{"servo move", InstWrite, 0x40, []byte{1, 90, 0x03, 0xE8}},
		{"read angle", InstRead, 0x50, []byte{5}},
		{"response", InstResponse, 0x50, []byte{5, 120}},
		{"no payload", InstRead, 0x01, nil},
		{"max payload", InstWrite, 0xFF, bytes.Repeat([]byte{0xAB}, MaxPayloadLen)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := EncodeFrame(tc.ins, tc.addr, tc.payload)
			if err != nil {
				t.Fatalf("EncodeFrame failed: %v", err)
			}

			f, err := DecodeFrame(frame)
			if err != nil {
				t.Fatalf("DecodeFrame failed: %v", err)
			}

			if f.Instruction != tc.ins {
				t.Errorf("instruction: got %02X, want %02X", f.Instruction, tc.ins)
			}
			if f.Address != tc.addr {
				t.Errorf("address: got %02X, want %02X", f.Address, tc.addr)
			}
			if !bytes.Equal(f.Payload, tc.payload) {
				t.Errorf("payload: got % X, want % X", f.Payload, tc.payload)
			}
		})
	}
}

func TestDecodeFrame_CorruptedBytes(t *testing.T) {
	base := []byte{0x55, 0x00, 0x04, 0x01, 0x26, 0x00, 0xD4, 0x00, 0xAA}

	// Flipping the instruction, address or payload byte must fail the
	// checksum. Flipping LEN fails length consistency instead, since the
	// declared length is validated before the checksum can be located.
	for _, pos := range []int{3, 4, 5} {
		frame := append([]byte(nil), base...)
		frame[pos] ^= 0x01

		_, err := DecodeFrame(frame)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("flip byte %d: expected ErrChecksumMismatch, got %v", pos, err)
		}
	}

	frame := append([]byte(nil), base...)
	frame[2] ^= 0x01
	if _, err := DecodeFrame(frame); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("flip LEN: expected ErrLengthMismatch, got %v", err)
	}
}

func TestDecodeFrame_Truncated(t *testing.T) {
	base := []byte{0x55, 0x00, 0x04, 0x01, 0x26, 0x00, 0xD4, 0x00, 0xAA}

	if _, err := DecodeFrame(base[1:]); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("front truncation: expected ErrLengthMismatch, got %v", err)
	}

	if _, err := DecodeFrame(base[:len(base)-1]); !errors.Is(err, ErrInvalidTail) {
		t.Errorf("back truncation: expected ErrInvalidTail, got %v", err)
	}
}

func TestDecodeFrame_BadEnvelope(t *testing.T) {
	bad := []byte{0xFF, 0xFF, 0x04, 0x01, 0x26, 0x00, 0xD4, 0x00, 0xAA}
	if _, err := DecodeFrame(bad); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}

	bad = []byte{0x55, 0x00, 0x04, 0x01, 0x26, 0x00, 0xD4, 0xAA, 0x00}
	if _, err := DecodeFrame(bad); !errors.Is(err, ErrInvalidTail) {
		t.Errorf("expected ErrInvalidTail, got %v", err)
	}

	if _, err := DecodeFrame([]byte{0x55, 0x00}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short buffer: expected ErrLengthMismatch, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	// 255 - (04 + 01 + 26 + 00) = 0xD4
	if chk := Checksum(0x04, 0x01, 0x26, []byte{0x00}); chk != 0xD4 {
		t.Errorf("checksum: got %02X, want D4", chk)
	}

	// Wraps mod 256.
	if chk := Checksum(0xFF, 0xFF, 0xFF, []byte{0xFF}); chk != 0x03 {
		t.Errorf("checksum: got %02X, want 03", chk)
	}
}

func TestUint16Helpers(t *testing.T) {
	data := EncodeUint16(1000)
	if !bytes.Equal(data, []byte{0x03, 0xE8}) {
		t.Errorf("EncodeUint16: got % X, want [03 E8]", data)
	}

	if v := DecodeUint16([]byte{0x03, 0xE8}); v != 1000 {
		t.Errorf("DecodeUint16: got %d, want 1000", v)
	}

	// Two's-complement big-endian for negative deviations.
	neg := int16(-50)
	data = EncodeUint16(uint16(neg))
	if !bytes.Equal(data, []byte{0xFF, 0xCE}) {
		t.Errorf("EncodeUint16(-50): got % X, want [FF CE]", data)
	}

	if v := DecodeUint16([]byte{0x12}); v != 0 {
		t.Errorf("DecodeUint16 short input: got %d, want 0", v)
	}
}
