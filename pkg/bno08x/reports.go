package bno08x

import (
	"strings"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// ReportID is re-exported for convenience.
type ReportID = shtp.ReportID

// Sensor reports.
const (
	ReportAccelerometer             ReportID = 0x01
	ReportGyroscope                 ReportID = 0x02
	ReportMagnetometer              ReportID = 0x03
	ReportLinearAcceleration        ReportID = 0x04
	ReportRotationVector            ReportID = 0x05
	ReportGameRotationVector        ReportID = 0x08
	ReportGeomagneticRotationVector ReportID = 0x09
	ReportStepCounter               ReportID = 0x11
	ReportStabilityClassifier       ReportID = 0x13
	ReportRawAccelerometer          ReportID = 0x14
	ReportRawGyroscope              ReportID = 0x15
	ReportRawMagnetometer           ReportID = 0x16
	ReportShakeDetector             ReportID = 0x19
	ReportActivityClassifier        ReportID = 0x1e
	ReportGyroIntegratedRotation    ReportID = 0x2a
)

// Control reports.
const (
	ReportCommandResponse   ReportID = 0xf1
	ReportCommandRequest    ReportID = 0xf2
	ReportFRSReadResponse   ReportID = 0xf3
	ReportFRSReadRequest    ReportID = 0xf4
	ReportFRSWriteResponse  ReportID = 0xf5
	ReportFRSWriteDataReq   ReportID = 0xf6
	ReportFRSWriteRequest   ReportID = 0xf7
	ReportProductIDResponse ReportID = 0xf8
	ReportProductIDRequest  ReportID = 0xf9
	ReportTimestampRebase   ReportID = 0xfa
	ReportBaseTimestamp     ReportID = 0xfb
	ReportGetFeatureResp    ReportID = 0xfc
	ReportSetFeatureCommand ReportID = 0xfd
	ReportGetFeatureRequest ReportID = 0xfe
)

// Commands carried by command request reports.
const (
	CommandSaveDCD     byte = 0x06
	CommandMECalibrate byte = 0x07
)

// ME calibration sub-commands.
const (
	meCalConfig byte = 0x00
	meGetCal    byte = 0x01
)

type sensorInfo struct {
	name   string
	scalar float64
	count  int
	length int
}

// Q-point scalars.
const (
	q4  = 1.0 / (1 << 4)
	q8  = 1.0 / (1 << 8)
	q9  = 1.0 / (1 << 9)
	q12 = 1.0 / (1 << 12)
	q14 = 1.0 / (1 << 14)
)

var sensorReports = map[ReportID]sensorInfo{
	ReportAccelerometer:             {"accelerometer", q8, 3, 10},
	ReportGyroscope:                 {"gyroscope", q9, 3, 10},
	ReportMagnetometer:              {"magnetometer", q4, 3, 10},
	ReportLinearAcceleration:        {"linear_acceleration", q8, 3, 10},
	ReportRotationVector:            {"rotation_vector", q14, 4, 14},
	ReportGeomagneticRotationVector: {"geomagnetic_rotation_vector", q12, 4, 14},
	ReportGameRotationVector:        {"game_rotation_vector", q14, 4, 12},
	ReportStepCounter:               {"step_counter", 1, 1, 12},
	ReportShakeDetector:             {"shake_detector", 1, 1, 6},
	ReportStabilityClassifier:       {"stability_classifier", 1, 1, 6},
	ReportActivityClassifier:        {"activity_classifier", 1, 1, 16},
	ReportRawAccelerometer:          {"raw_accelerometer", 1, 3, 16},
	ReportRawGyroscope:              {"raw_gyroscope", 1, 3, 16},
	ReportRawMagnetometer:           {"raw_magnetometer", 1, 3, 16},
}

var controlReportLengths = map[ReportID]int{
	ReportProductIDResponse: 16,
	ReportGetFeatureResp:    17,
	ReportCommandResponse:   16,
	ReportBaseTimestamp:     5,
	ReportTimestampRebase:   5,
}

var controlReportNames = map[ReportID]string{
	ReportCommandResponse:   "command_response",
	ReportCommandRequest:    "command_request",
	ReportFRSReadResponse:   "frs_read_response",
	ReportFRSReadRequest:    "frs_read_request",
	ReportFRSWriteResponse:  "frs_write_response",
	ReportFRSWriteDataReq:   "frs_write_data_request",
	ReportFRSWriteRequest:   "frs_write_request",
	ReportProductIDResponse: "product_id_response",
	ReportProductIDRequest:  "product_id_request",
	ReportTimestampRebase:   "timestamp_rebase",
	ReportBaseTimestamp:     "base_timestamp",
	ReportGetFeatureResp:    "get_feature_response",
	ReportSetFeatureCommand: "set_feature_command",
	ReportGetFeatureRequest: "get_feature_request",
}

// Raw sensor reports depend on the matching calibrated report.
var rawDependencies = map[ReportID]ReportID{
	ReportRawAccelerometer: ReportAccelerometer,
	ReportRawGyroscope:     ReportGyroscope,
	ReportRawMagnetometer:  ReportMagnetometer,
}

type catalog struct{}

// Catalog is the report length table of the hub.
var Catalog shtp.Catalog = catalog{}

// ReportLength implements shtp.Catalog.
func (catalog) ReportLength(id ReportID) (int, bool) {
	if id.IsControl() {
		n, ok := controlReportLengths[id]
		return n, ok
	}
	info, ok := sensorReports[id]
	return info.length, ok
}

// ReportName returns the name of a report, or the hex ID if unknown.
func ReportName(id ReportID) string {
	if info, ok := sensorReports[id]; ok {
		return info.name
	}
	if name, ok := controlReportNames[id]; ok {
		return name
	}
	return id.String()
}

// ReportByName finds a sensor report by its name.
// Dashes and case are ignored.
func ReportByName(name string) (ReportID, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for id, info := range sensorReports {
		if info.name == name {
			return id, true
		}
	}
	return 0, false
}

// SensorReports lists the IDs of all known sensor reports in ascending order.
func SensorReports() []ReportID {
	ids := make([]ReportID, 0, len(sensorReports))
	for id := ReportID(1); id < 0xf0; id++ {
		if _, ok := sensorReports[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Dependency returns the report that must be enabled before id.
func Dependency(id ReportID) (ReportID, bool) {
	dep, ok := rawDependencies[id]
	return dep, ok
}
