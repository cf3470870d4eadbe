package muto

import (
	"context"
	"fmt"
)

// IMUAngle holds the baseboard's fused orientation estimate. Values are raw
// firmware units.
type IMUAngle struct {
	Roll        uint16
	Pitch       uint16
	Yaw         uint16
	Temperature byte
}

// RawIMU holds the unfused 9-axis sensor readings. Values are raw firmware
// units.
type RawIMU struct {
	AccelX, AccelY, AccelZ uint16
	GyroX, GyroY, GyroZ    uint16
	MagX, MagY, MagZ       uint16
}

// Command bytes selecting the IMU report to read.
const (
	imuAngleRequest byte = 0x07
	imuRawRequest   byte = 0x12
)

// ReadIMUAngleRaw reads the fused IMU angles as raw response bytes.
func (d *Driver) ReadIMUAngleRaw(ctx context.Context) ([]byte, error) {
	data, err := d.Read(ctx, RegIMUAngle, []byte{imuAngleRequest})
	if err != nil {
		return nil, &CommError{Op: "read_imu_angle", Err: err}
	}
	return data, nil
}

// ReadIMUAngle reads and parses the fused IMU angles: roll, pitch and yaw as
// big-endian 16-bit words followed by a temperature byte.
func (d *Driver) ReadIMUAngle(ctx context.Context) (IMUAngle, error) {
	data, err := d.ReadIMUAngleRaw(ctx)
	if err != nil {
		return IMUAngle{}, err
	}
	if len(data) != 7 {
		return IMUAngle{}, fmt.Errorf("unexpected IMU angle payload: got %d bytes, want 7", len(data))
	}

	return IMUAngle{
		Roll:        DecodeUint16(data[0:2]),
		Pitch:       DecodeUint16(data[2:4]),
		Yaw:         DecodeUint16(data[4:6]),
		Temperature: data[6],
	}, nil
}

// ReadRawIMURaw reads the 9-axis sensor block as raw response bytes.
func (d *Driver) ReadRawIMURaw(ctx context.Context) ([]byte, error) {
	data, err := d.Read(ctx, RegIMURaw, []byte{imuRawRequest})
	if err != nil {
		return nil, &CommError{Op: "read_imu_raw", Err: err}
	}
	return data, nil
}

// ReadRawIMU reads and parses the 9-axis sensor block: accelerometer,
// gyroscope and magnetometer, each as three big-endian 16-bit words.
func (d *Driver) ReadRawIMU(ctx context.Context) (RawIMU, error) {
	data, err := d.ReadRawIMURaw(ctx)
	if err != nil {
		return RawIMU{}, err
	}
	if len(data) != 18 {
		return RawIMU{}, fmt.Errorf("unexpected raw IMU payload: got %d bytes, want 18", len(data))
	}

	return RawIMU{
		AccelX: DecodeUint16(data[0:2]),
		AccelY: DecodeUint16(data[2:4]),
		AccelZ: DecodeUint16(data[4:6]),
		GyroX:  DecodeUint16(data[6:8]),
		GyroY:  DecodeUint16(data[8:10]),
		GyroZ:  DecodeUint16(data[10:12]),
		MagX:   DecodeUint16(data[12:14]),
		MagY:   DecodeUint16(data[14:16]),
		MagZ:   DecodeUint16(data[16:18]),
	}, nil
}
