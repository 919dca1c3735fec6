// Package imu runs a BNO08x as an orientation service.
//
// The service owns the driver on its own goroutine, polls the rotation
// vector periodically and always has an orientation to offer: when the
// hub fails, it is held in reset, re-initialized on the next poll, and
// the last known orientation is returned meanwhile.
package imu

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/bno08x"
	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/shtp"
	"github.com/robotalks/imu.go/pkg/telemetry/msgs"
)

// Sensor is the part of bno08x.Client used by the service.
type Sensor interface {
	Initialize() error
	State() bno08x.State
	ProductID() (bno08x.ProductID, bool)
	EnableFeature(bno08x.ReportID) error
	EnableFeatureWith(bno08x.ReportID, bno08x.FeatureConfig) error
	Quaternion() (bno08x.Quaternion, error)
	Reading(bno08x.ReportID) (bno08x.Reading, error)
	BeginCalibration() error
	CalibrationStatus() (bno08x.Accuracy, error)
	CalibrationRoutines() bno08x.MECalibration
	SaveCalibrationData() error
	CalibrationSavedAt() time.Time
}

var _ Sensor = (*bno08x.Client)(nil)

// Feature is a report enabled when the service (re)starts.
// Zero Interval uses the driver default.
type Feature struct {
	ID       bno08x.ReportID
	Interval time.Duration
}

// ErrResetRequested is recorded when a reset is asked for by a command.
var ErrResetRequested = errors.New("reset requested")

// Service polls orientation from a Sensor.
type Service struct {
	Sensor Sensor
	// Reset is held low after a failure, optional.
	Reset    shtp.ResetLine
	Features []Feature
	Filter   Filter
	// Period is the polling period.
	Period time.Duration
	// TelemetryPeriod is the period of orientation messages into the loop.
	TelemetryPeriod time.Duration
	// ResetHold is the time the reset line is kept in each state.
	ResetHold time.Duration

	lock      sync.RWMutex
	last      Orientation
	accuracy  bno08x.Accuracy
	updatedAt time.Time
	resetting bool
	resets    int
	lastErr   error

	cmdCh chan *msgs.Command
}

// New creates a Service polling the rotation vector.
func New(sensor Sensor) *Service {
	return &Service{
		Sensor:          sensor,
		Features:        []Feature{{ID: bno08x.ReportRotationVector}},
		Filter:          DefaultFilter(),
		Period:          10 * time.Millisecond,
		TelemetryPeriod: 100 * time.Millisecond,
		ResetHold:       50 * time.Millisecond,
		last:            Identity,
		cmdCh:           make(chan *msgs.Command, 4),
	}
}

// Orientation returns the last known orientation.
func (s *Service) Orientation() Orientation {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.last
}

// Healthy indicates the sensor is not being reset.
func (s *Service) Healthy() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return !s.resetting
}

// Err returns the error which caused the last reset.
func (s *Service) Err() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.lastErr
}

// Start initializes the sensor and enables the features.
// On failure the sensor is reset on the next Step.
func (s *Service) Start() error {
	if err := s.begin(); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

func (s *Service) begin() error {
	if err := s.Sensor.Initialize(); err != nil {
		return err
	}
	if id, ok := s.Sensor.ProductID(); ok {
		glog.Infof("IMU ready: %s", id)
	}
	for _, f := range s.Features {
		var err error
		if f.Interval > 0 {
			err = s.Sensor.EnableFeatureWith(f.ID, bno08x.FeatureConfig{Interval: f.Interval})
		} else {
			err = s.Sensor.EnableFeature(f.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) fail(err error) {
	glog.Warningf("IMU failed, resetting: %v", err)
	if s.Reset != nil {
		if e := s.Reset.SetReset(false); e != nil {
			glog.Errorf("hold reset: %v", e)
		}
	}
	s.lock.Lock()
	s.resetting, s.lastErr = true, err
	s.resets++
	s.lock.Unlock()
	time.Sleep(s.ResetHold)
}

// Step polls the sensor once and returns the latest orientation,
// the last known one if the sensor failed or is being recovered.
func (s *Service) Step() Orientation {
	if !s.Healthy() {
		if s.Reset != nil {
			if err := s.Reset.SetReset(true); err != nil {
				glog.Errorf("release reset: %v", err)
			}
			time.Sleep(s.ResetHold)
		}
		if err := s.begin(); err != nil {
			s.fail(err)
			return s.Orientation()
		}
		s.lock.Lock()
		s.resetting = false
		s.lock.Unlock()
		glog.Info("IMU recovered")
		return s.Orientation()
	}
	q, err := s.Sensor.Quaternion()
	if errors.Is(err, bno08x.ErrNoData) {
		return s.Orientation()
	}
	if err != nil {
		s.fail(err)
		return s.Orientation()
	}
	next := Orientation(q.WXYZ())
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Filter != nil {
		next = s.Filter.Filter(next, s.last)
	}
	s.last, s.accuracy, s.updatedAt = next, q.Accuracy, time.Now()
	return next
}

// AddToLoop implements LoopAdder.
func (s *Service) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("imu", s))
	loop.AddController(fx.PrLvControl, s)
}

// Run implements Runnable.
func (s *Service) Run(ctx context.Context) error {
	loopCtl, _ := fx.LookupLoopCtl(ctx)
	post := func(msg fx.Message) {
		if loopCtl != nil {
			loopCtl.PostMessage(msg)
		}
	}
	if err := s.Start(); err != nil {
		glog.Errorf("IMU start: %v", err)
	}
	post(s.status())

	poll := time.NewTicker(s.Period)
	defer poll.Stop()
	telemetry := time.NewTicker(s.TelemetryPeriod)
	defer telemetry.Stop()
	healthy := s.Healthy()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			s.Step()
			if h := s.Healthy(); h != healthy {
				healthy = h
				post(s.status())
			}
		case <-telemetry.C:
			for _, msg := range s.telemetry() {
				post(msg)
			}
		case cmd := <-s.cmdCh:
			for _, msg := range s.execute(cmd) {
				post(msg)
			}
			if loopCtl != nil {
				loopCtl.TriggerNext()
			}
		}
	}
}

// Control implements Controller.
// Commands are handed over to the polling goroutine which owns the sensor.
func (s *Service) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		cmd, ok := mc.CurrentMessage().(*msgs.Command)
		if !ok {
			return
		}
		mc.MessageTaken()
		select {
		case s.cmdCh <- cmd:
		default:
			cc.PostMessage(msgs.NewReply(cmd, errors.New("busy")))
		}
	}))
	return nil
}

func (s *Service) execute(cmd *msgs.Command) []fx.Message {
	glog.Infof("IMU command %q", cmd.Action)
	if !s.Healthy() && cmd.Action != msgs.ActionStatus {
		return []fx.Message{msgs.NewReply(cmd, bno08x.ErrNotReady)}
	}
	var err error
	var out []fx.Message
	switch cmd.Action {
	case msgs.ActionCalibrate:
		err = s.Sensor.BeginCalibration()
	case msgs.ActionSave:
		err = s.Sensor.SaveCalibrationData()
	case msgs.ActionStatus:
		out = append(out, s.status())
		if s.Healthy() {
			var cal *msgs.Calibration
			if cal, err = s.calibration(); err == nil {
				out = append(out, cal)
			}
		}
	case msgs.ActionReset:
		s.fail(ErrResetRequested)
	default:
		err = errors.New("unknown action " + cmd.Action)
	}
	return append(out, msgs.NewReply(cmd, err))
}

func (s *Service) calibration() (*msgs.Calibration, error) {
	acc, err := s.Sensor.CalibrationStatus()
	if err != nil {
		return nil, err
	}
	routines := s.Sensor.CalibrationRoutines()
	cal := &msgs.Calibration{
		MagAccuracy: uint32(acc),
		Accel:       routines.Accel,
		Gyro:        routines.Gyro,
		Mag:         routines.Mag,
	}
	if at := s.Sensor.CalibrationSavedAt(); !at.IsZero() {
		cal.SavedAt = at.UnixNano()
	}
	return cal, nil
}

func (s *Service) status() *msgs.Status {
	s.lock.RLock()
	st := &msgs.Status{State: s.Sensor.State().String(), Resets: uint32(s.resets)}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	s.lock.RUnlock()
	if id, ok := s.Sensor.ProductID(); ok {
		st.ProductID = id.String()
	}
	return st
}

func (s *Service) telemetry() []fx.Message {
	s.lock.RLock()
	o := &msgs.Orientation{
		W: s.last[0], X: s.last[1], Y: s.last[2], Z: s.last[3],
		Accuracy: uint32(s.accuracy),
		Stale:    s.resetting,
	}
	if !s.updatedAt.IsZero() {
		o.Timestamp = s.updatedAt.UnixNano()
	}
	healthy := !s.resetting
	s.lock.RUnlock()
	out := []fx.Message{o}
	if !healthy {
		return out
	}
	for _, f := range s.Features {
		r, err := s.Sensor.Reading(f.ID)
		if err != nil {
			continue
		}
		if v, ok := r.(bno08x.Vector3); ok {
			out = append(out, &msgs.Vector{
				Report:   bno08x.ReportName(f.ID),
				X:        v.X,
				Y:        v.Y,
				Z:        v.Z,
				Accuracy: uint32(v.Accuracy),
			})
		}
	}
	return out
}
