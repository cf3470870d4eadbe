// Package muto provides a Go library for communicating with the Muto
// baseboard and its attached servo motors.
package muto

// Instruction codes understood by the baseboard.
const (
	InstWrite    byte = 0x01
	InstRead     byte = 0x02
	InstResponse byte = 0x12
)

// Frame envelope bytes.
const (
	headerByte1 = 0x55
	headerByte2 = 0x00
	tailByte1   = 0x00
	tailByte2   = 0xAA
)

// MaxPayloadLen is the largest payload that fits the single-byte LEN field.
// LEN counts INS + ADR + PAYLOAD + CHK, so 255 - 3 bytes remain for data.
const MaxPayloadLen = 252

// frameOverhead is the number of non-payload bytes in an encoded frame:
// header(2) + LEN(1) + INS(1) + ADR(1) + CHK(1) + tail(2).
const frameOverhead = 8

// Frame represents one Muto protocol frame.
type Frame struct {
	Instruction byte
	Address     byte
	Payload     []byte
}

// Checksum computes the frame checksum over the LEN, INS and ADR bytes and
// the payload: 255 - ((LEN + INS + ADR + sum(PAYLOAD)) mod 256).
func Checksum(length, ins, addr byte, payload []byte) byte {
	sum := length + ins + addr
	for _, b := range payload {
		sum += b
	}
	return 255 - sum
}

// EncodeFrame builds the wire form of a frame:
// header(0x55,0x00) LEN INS ADR PAYLOAD CHK tail(0x00,0xAA).
func EncodeFrame(ins, addr byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}

	length := byte(3 + len(payload))

	buf := make([]byte, 0, frameOverhead+len(payload))
	buf = append(buf, headerByte1, headerByte2)
	buf = append(buf, length, ins, addr)
	buf = append(buf, payload...)
	buf = append(buf, Checksum(length, ins, addr, payload))
	buf = append(buf, tailByte1, tailByte2)

	return buf, nil
}

// DecodeFrame parses a complete wire frame. The buffer must hold exactly one
// frame; boundary detection is the caller's concern. Validation walks the
// envelope from the outside in: size, tail, declared length, header,
// checksum, each failing with its own sentinel error.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < frameOverhead {
		return Frame{}, ErrLengthMismatch
	}
	if buf[len(buf)-2] != tailByte1 || buf[len(buf)-1] != tailByte2 {
		return Frame{}, ErrInvalidTail
	}

	length := buf[2]
	if len(buf) != int(length)+5 {
		return Frame{}, ErrLengthMismatch
	}
	if buf[0] != headerByte1 || buf[1] != headerByte2 {
		return Frame{}, ErrInvalidHeader
	}

	ins := buf[3]
	addr := buf[4]
	payload := buf[5 : len(buf)-3]

	if Checksum(length, ins, addr, payload) != buf[len(buf)-3] {
		return Frame{}, ErrChecksumMismatch
	}

	f := Frame{Instruction: ins, Address: addr}
	if len(payload) > 0 {
		f.Payload = make([]byte, len(payload))
		copy(f.Payload, payload)
	}
	return f, nil
}

// EncodeUint16 converts a 16-bit value to big-endian bytes.
func EncodeUint16(value uint16) []byte {
	return []byte{byte(value >> 8), byte(value)}
}

// DecodeUint16 converts big-endian bytes to a 16-bit value.
func DecodeUint16(data []byte) uint16 {
	if len(data) < 2 {
		return 0
	}
	return uint16(data[0])<<8 | uint16(data[1])
}
