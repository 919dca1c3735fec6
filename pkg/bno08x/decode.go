package bno08x

import (
	"encoding/binary"
	"fmt"

	"github.com/robotalks/imu.go/pkg/shtp"
)

const sensorDataOffset = 4

// UnsupportedReportError is returned when decoding a report without a decoder.
type UnsupportedReportError struct {
	ID ReportID
}

// Error implements error.
func (e *UnsupportedReportError) Error() string {
	return fmt.Sprintf("unsupported report %s", ReportName(e.ID))
}

// Decode decodes a sensor report.
// Missing trailing bytes read as zero.
func Decode(s shtp.ReportSlice) (Reading, error) {
	b := s.Data
	switch s.ID {
	case ReportStepCounter:
		return StepCount(u16(b, 8)), nil
	case ReportShakeDetector:
		return Shake(u16(b, 4)&0x111 != 0), nil
	case ReportStabilityClassifier:
		return Stability(u8(b, 4)), nil
	case ReportActivityClassifier:
		return decodeActivity(b), nil
	case ReportRawAccelerometer, ReportRawGyroscope, ReportRawMagnetometer:
		return RawVector{
			X: u16(b, sensorDataOffset),
			Y: u16(b, sensorDataOffset+2),
			Z: u16(b, sensorDataOffset+4),
		}, nil
	}
	info, ok := sensorReports[s.ID]
	if !ok || s.ID.IsControl() {
		return nil, &UnsupportedReportError{ID: s.ID}
	}
	var v [4]float64
	for n := 0; n < info.count; n++ {
		v[n] = float64(int16(u16(b, sensorDataOffset+n*2))) * info.scalar
	}
	acc := Accuracy(u8(b, 2) & 0x03)
	if info.count == 4 {
		return Quaternion{I: v[0], J: v[1], K: v[2], Real: v[3], Accuracy: acc}, nil
	}
	return Vector3{X: v[0], Y: v[1], Z: v[2], Accuracy: acc}, nil
}

func decodeActivity(b []byte) Activity {
	page := int(u8(b, 4) & 0x7f)
	a := Activity{MostLikely: ActivityKind(u8(b, 5))}
	if int(a.MostLikely) >= NumActivities {
		a.MostLikely = ActivityUnknown
	}
	for n := range a.Confidence {
		a.Confidence[n] = page*10 + int(u8(b, 6+n))
	}
	return a
}

// ProductID identifies the firmware running on the hub.
type ProductID struct {
	Major, Minor uint8
	Patch        uint16
	PartNumber   uint32
	BuildNumber  uint32
}

func (p ProductID) String() string {
	return fmt.Sprintf("part %d version %d.%d.%d build %d",
		p.PartNumber, p.Major, p.Minor, p.Patch, p.BuildNumber)
}

// DecodeProductID decodes a product ID response.
func DecodeProductID(b []byte) ProductID {
	return ProductID{
		Major:       u8(b, 2),
		Minor:       u8(b, 3),
		PartNumber:  u32(b, 4),
		BuildNumber: u32(b, 8),
		Patch:       u16(b, 12),
	}
}

// FeatureResponse is the hub's report of a feature configuration.
type FeatureResponse struct {
	FeatureID         ReportID
	Flags             uint8
	ChangeSensitivity uint16
	ReportInterval    uint32
	BatchInterval     uint32
	SensorConfig      uint32
}

// DecodeFeatureResponse decodes a get feature response.
func DecodeFeatureResponse(b []byte) FeatureResponse {
	return FeatureResponse{
		FeatureID:         ReportID(u8(b, 1)),
		Flags:             u8(b, 2),
		ChangeSensitivity: u16(b, 3),
		ReportInterval:    u32(b, 5),
		BatchInterval:     u32(b, 9),
		SensorConfig:      u32(b, 13),
	}
}

// CommandResponse is a decoded command response report.
type CommandResponse struct {
	Seq         uint8
	Command     byte
	CommandSeq  uint8
	ResponseSeq uint8
	Values      [11]byte
}

// Status is the first response value, zero on success.
func (r CommandResponse) Status() byte {
	return r.Values[0]
}

// DecodeCommandResponse decodes a command response.
func DecodeCommandResponse(b []byte) (r CommandResponse) {
	r.Seq, r.Command = u8(b, 1), u8(b, 2)
	r.CommandSeq, r.ResponseSeq = u8(b, 3), u8(b, 4)
	for n := range r.Values {
		r.Values[n] = u8(b, 5+n)
	}
	return
}

// Timestamp is a base timestamp or timestamp rebase report, in 100µs ticks.
type Timestamp struct {
	Rebase bool
	Ticks  int32
}

// DecodeTimestamp decodes a base timestamp or rebase report.
func DecodeTimestamp(b []byte) Timestamp {
	return Timestamp{
		Rebase: ReportID(u8(b, 0)) == ReportTimestampRebase,
		Ticks:  int32(u32(b, 1)),
	}
}

func u8(b []byte, off int) uint8 {
	if off < len(b) {
		return b[off]
	}
	return 0
}

func u16(b []byte, off int) uint16 {
	var buf [2]byte
	if off < len(b) {
		copy(buf[:], b[off:])
	}
	return binary.LittleEndian.Uint16(buf[:])
}

func u32(b []byte, off int) uint32 {
	var buf [4]byte
	if off < len(b) {
		copy(buf[:], b[off:])
	}
	return binary.LittleEndian.Uint32(buf[:])
}
