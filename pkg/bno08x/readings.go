package bno08x

import "fmt"

// Reading is a decoded sensor value.
type Reading interface {
	isReading()
}

// Accuracy is the status reported with each sensor sample.
type Accuracy uint8

// Accuracy levels.
const (
	AccuracyUnreliable Accuracy = iota
	AccuracyLow
	AccuracyMedium
	AccuracyHigh
)

var accuracyNames = [...]string{"Unreliable", "Low", "Medium", "High"}

func (a Accuracy) String() string {
	if int(a) < len(accuracyNames) {
		return accuracyNames[a]
	}
	return fmt.Sprintf("Accuracy(%d)", uint8(a))
}

// Vector3 is a scaled three-axis sample.
type Vector3 struct {
	X, Y, Z  float64
	Accuracy Accuracy
}

// Quaternion is a scaled rotation vector sample.
type Quaternion struct {
	I, J, K, Real float64
	Accuracy      Accuracy
}

// WXYZ reorders the components with the real part first.
func (q Quaternion) WXYZ() [4]float64 {
	return [4]float64{q.Real, q.I, q.J, q.K}
}

// RawVector is an unscaled three-axis sample read from the sensor registers.
type RawVector struct {
	X, Y, Z uint16
}

// StepCount is the number of steps counted by the hub.
type StepCount uint16

// Shake reports whether a shake was detected.
type Shake bool

// Stability is the stability classification.
type Stability uint8

// Stability classes.
const (
	StabilityUnknown Stability = iota
	StabilityOnTable
	StabilityStationary
	StabilityStable
	StabilityInMotion
)

var stabilityNames = [...]string{"Unknown", "On Table", "Stationary", "Stable", "In motion"}

func (s Stability) String() string {
	if int(s) < len(stabilityNames) {
		return stabilityNames[s]
	}
	return stabilityNames[StabilityUnknown]
}

// ActivityKind is a class of the activity classifier.
type ActivityKind uint8

// Activity classes.
const (
	ActivityUnknown ActivityKind = iota
	ActivityInVehicle
	ActivityOnBicycle
	ActivityOnFoot
	ActivityStill
	ActivityTilting
	ActivityWalking
	ActivityRunning
	ActivityOnStairs

	NumActivities = int(ActivityOnStairs) + 1
)

var activityNames = [NumActivities]string{
	"Unknown",
	"In-Vehicle",
	"On-Bicycle",
	"On-Foot",
	"Still",
	"Tilting",
	"Walking",
	"Running",
	"OnStairs",
}

func (k ActivityKind) String() string {
	if int(k) < NumActivities {
		return activityNames[k]
	}
	return activityNames[ActivityUnknown]
}

// Activity is the activity classification with confidence per class.
type Activity struct {
	MostLikely ActivityKind
	Confidence [NumActivities]int
}

// Map returns the confidences keyed by class name, plus "most_likely".
func (a Activity) Map() map[string]interface{} {
	m := make(map[string]interface{}, NumActivities+1)
	m["most_likely"] = a.MostLikely.String()
	for n, c := range a.Confidence {
		m[activityNames[n]] = c
	}
	return m
}

func (Vector3) isReading()    {}
func (Quaternion) isReading() {}
func (RawVector) isReading()  {}
func (StepCount) isReading()  {}
func (Shake) isReading()      {}
func (Stability) isReading()  {}
func (Activity) isReading()   {}
