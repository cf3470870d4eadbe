package muto

// Baseboard register addresses. The Muto control table is fixed across
// firmware revisions; servos are addressed inside the payload, not by a
// per-frame id.
const (
	RegBatteryLevel byte = 0x01
	RegTorqueOn     byte = 0x26
	RegTorqueOff    byte = 0x27
	RegCalibrate    byte = 0x28
	RegServoMove    byte = 0x40
	RegServoAngle   byte = 0x50
	RegIMUAngle     byte = 0x60
	RegIMURaw       byte = 0x61
)

// Servo id bounds. Id 0 is reserved by the firmware and always rejected.
const (
	MinServoID = 1
	MaxServoID = 255
)

// Continuous-parameter bounds for ServoMove. Out-of-range values are
// clamped, not rejected.
const (
	MaxAngle = 180
	MaxSpeed = 0xFFFF
)
