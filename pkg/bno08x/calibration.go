package bno08x

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/shtp"
)

func (c *Client) sendCommand(command byte, params ...byte) error {
	data, err := commandRequest(c.seq.ReportSeq(ReportCommandRequest), command, params)
	if err != nil {
		return err
	}
	if err := c.send(shtp.ChannelControl, data); err != nil {
		return err
	}
	c.seq.AdvanceReportSeq(ReportCommandRequest)
	return nil
}

// SendCommand sends a raw command request with up to 9 parameters.
func (c *Client) SendCommand(command byte, params ...byte) error {
	return c.sendCommand(command, params...)
}

func (c *Client) sendMECommand(accel, gyro, mag bool, sub byte) error {
	return c.sendCommand(CommandMECalibrate, boolByte(accel), boolByte(gyro), boolByte(mag), sub, 0, 0, 0, 0, 0)
}

// waitFor polls until done returns true or the command timeout elapses.
func (c *Client) waitFor(done func() bool) bool {
	start := c.Clock.Now()
	for c.Clock.Now().Sub(start) < c.Config.CommandTimeout {
		c.processAvailable(0)
		if done() {
			return true
		}
		c.Clock.Sleep(c.Config.PollInterval)
	}
	return false
}

// BeginCalibration starts the motion engine calibration of
// accelerometer, gyroscope and magnetometer.
func (c *Client) BeginCalibration() error {
	acks := c.calAcks
	if err := c.sendMECommand(true, true, true, meCalConfig); err != nil {
		return err
	}
	if c.waitFor(func() bool { return c.calAcks > acks }) {
		return nil
	}
	return c.timeout(&TimeoutError{Op: "begin calibration", Timeout: c.Config.CommandTimeout})
}

// CalibrationStatus requests the calibration state and returns the last
// magnetometer accuracy. The accuracy is updated by magnetometer reports,
// so the value may lag behind the request.
func (c *Client) CalibrationStatus() (Accuracy, error) {
	acks := c.calAcks
	if err := c.sendMECommand(false, false, false, meGetCal); err != nil {
		return c.magAccuracy, err
	}
	if !c.waitFor(func() bool { return c.calAcks > acks }) {
		glog.V(1).Infof("no response to calibration status request")
	}
	return c.magAccuracy, nil
}

// MagnetometerAccuracy returns the accuracy of the last magnetometer report.
func (c *Client) MagnetometerAccuracy() Accuracy {
	return c.magAccuracy
}

// CalibrationStartedAt returns when the hub last acknowledged a calibration command.
func (c *Client) CalibrationStartedAt() time.Time {
	return c.calStartedAt
}

// CalibrationRoutines returns the routines reported by the last calibration response.
func (c *Client) CalibrationRoutines() MECalibration {
	return c.meCal
}

// SaveCalibrationData asks the hub to persist its dynamic calibration data.
func (c *Client) SaveCalibrationData() error {
	saved, failed := c.dcdSaved, c.dcdFailed
	if err := c.sendCommand(CommandSaveDCD); err != nil {
		return err
	}
	if c.waitFor(func() bool { return c.dcdSaved > saved || c.dcdFailed > failed }) {
		if c.dcdSaved > saved {
			return nil
		}
		return &SaveFailedError{Status: c.dcdLastStatus}
	}
	return c.timeout(&SaveFailedError{Err: &TimeoutError{Op: "save calibration data", Timeout: c.Config.CommandTimeout}})
}

// CalibrationSavedAt returns when the hub last confirmed saving calibration data.
func (c *Client) CalibrationSavedAt() time.Time {
	return c.dcdSavedAt
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
