package bno08x

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("timeout")
	// ErrNotEnabled matches every *NotEnabledError.
	ErrNotEnabled = errors.New("report not enabled")
	// ErrNoData matches a *NotEnabledError of a report enabled
	// on the hub but not received yet.
	ErrNoData = errors.New("no report received yet")
	// ErrInitializationFailed indicates all initialization attempts failed.
	ErrInitializationFailed = errors.New("sensor initialization failed")
	// ErrTooManyParams indicates a command request with more than 9 parameters.
	ErrTooManyParams = errors.New("command request accepts at most 9 parameters")
	// ErrNotReady indicates the client is not initialized.
	ErrNotReady = errors.New("sensor not initialized")
)

// TimeoutError is returned when the hub doesn't respond in time.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timeout after %v", e.Op, e.Timeout)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NotEnabledError is returned when reading a report which has not been
// enabled or has not been received yet.
// Enabled is set when the hub confirmed the feature.
type NotEnabledError struct {
	ID      ReportID
	Enabled bool
}

// Error implements error.
func (e *NotEnabledError) Error() string {
	if e.Enabled {
		return fmt.Sprintf("no %s report received yet", ReportName(e.ID))
	}
	return fmt.Sprintf("no %s report found, is it enabled?", ReportName(e.ID))
}

// Is matches ErrNotEnabled, and ErrNoData when Enabled.
func (e *NotEnabledError) Is(target error) bool {
	return target == ErrNotEnabled || (e.Enabled && target == ErrNoData)
}

// SaveFailedError is returned when the hub fails to save calibration data.
// Err is set when no response was received.
type SaveFailedError struct {
	Status byte
	Err    error
}

// Error implements error.
func (e *SaveFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("save calibration data: %v", e.Err)
	}
	return fmt.Sprintf("save calibration data: status %d", e.Status)
}

// Unwrap returns the underlying error.
func (e *SaveFailedError) Unwrap() error {
	return e.Err
}
