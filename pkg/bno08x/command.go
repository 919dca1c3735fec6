package bno08x

import (
	"encoding/binary"
	"time"
)

const (
	commandRequestSize = 12
	maxCommandParams   = 9
	setFeatureSize     = 17

	// EnabledActivities selects all classes of the activity classifier.
	EnabledActivities uint32 = 0x1ff
)

// FeatureConfig is the configuration sent with a set feature command.
type FeatureConfig struct {
	Interval          time.Duration
	BatchInterval     time.Duration
	ChangeSensitivity uint16
	Flags             uint8
	SensorConfig      uint32
}

func commandRequest(seq uint8, command byte, params []byte) ([]byte, error) {
	if len(params) > maxCommandParams {
		return nil, ErrTooManyParams
	}
	b := make([]byte, commandRequestSize)
	b[0], b[1], b[2] = byte(ReportCommandRequest), seq, command
	copy(b[3:], params)
	return b, nil
}

func setFeatureCommand(id ReportID, fc FeatureConfig) []byte {
	b := make([]byte, setFeatureSize)
	b[0], b[1], b[2] = byte(ReportSetFeatureCommand), byte(id), fc.Flags
	binary.LittleEndian.PutUint16(b[3:], fc.ChangeSensitivity)
	binary.LittleEndian.PutUint32(b[5:], micros(fc.Interval))
	binary.LittleEndian.PutUint32(b[9:], micros(fc.BatchInterval))
	binary.LittleEndian.PutUint32(b[13:], fc.SensorConfig)
	return b
}

func micros(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / time.Microsecond)
}

// MECalibration tells which motion engine calibration routines are active.
type MECalibration struct {
	Accel, Gyro, Mag, Planar, OnTable bool
}

func decodeMECalibration(r CommandResponse) MECalibration {
	return MECalibration{
		Accel:   r.Values[1] != 0,
		Gyro:    r.Values[2] != 0,
		Mag:     r.Values[3] != 0,
		Planar:  r.Values[4] != 0,
		OnTable: r.Values[5] != 0,
	}
}
