package imu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/bno08x"
	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/shtp/shtptest"
	"github.com/robotalks/imu.go/pkg/telemetry/msgs"
)

type quatResult struct {
	q   bno08x.Quaternion
	err error
}

type fakeSensor struct {
	initErrs []error
	quats    []quatResult
	enabled  []bno08x.ReportID
	inits    int
	saves    int
	state    bno08x.State
}

func (f *fakeSensor) Initialize() error {
	f.inits++
	if len(f.initErrs) > 0 {
		err := f.initErrs[0]
		f.initErrs = f.initErrs[1:]
		if err != nil {
			f.state = bno08x.StateFailed
			return err
		}
	}
	f.state = bno08x.StateReady
	return nil
}

func (f *fakeSensor) State() bno08x.State { return f.state }

func (f *fakeSensor) ProductID() (bno08x.ProductID, bool) {
	return bno08x.ProductID{PartNumber: 10004563}, f.state == bno08x.StateReady
}

func (f *fakeSensor) EnableFeature(id bno08x.ReportID) error {
	f.enabled = append(f.enabled, id)
	return nil
}

func (f *fakeSensor) EnableFeatureWith(id bno08x.ReportID, _ bno08x.FeatureConfig) error {
	return f.EnableFeature(id)
}

func (f *fakeSensor) Quaternion() (bno08x.Quaternion, error) {
	if len(f.quats) == 0 {
		return bno08x.Quaternion{Real: 1}, nil
	}
	r := f.quats[0]
	f.quats = f.quats[1:]
	return r.q, r.err
}

func (f *fakeSensor) Reading(id bno08x.ReportID) (bno08x.Reading, error) {
	if id == bno08x.ReportAccelerometer {
		return bno08x.Vector3{Z: 9.8, Accuracy: bno08x.AccuracyHigh}, nil
	}
	return nil, &bno08x.NotEnabledError{ID: id}
}

func (f *fakeSensor) BeginCalibration() error { return nil }

func (f *fakeSensor) CalibrationStatus() (bno08x.Accuracy, error) {
	return bno08x.AccuracyMedium, nil
}

func (f *fakeSensor) CalibrationRoutines() bno08x.MECalibration {
	return bno08x.MECalibration{Accel: true, Mag: true}
}

func (f *fakeSensor) SaveCalibrationData() error {
	f.saves++
	return nil
}

func (f *fakeSensor) CalibrationSavedAt() time.Time { return time.Time{} }

func newTestService(sensor *fakeSensor) *Service {
	s := New(sensor)
	s.Filter = nil
	s.ResetHold = 0
	return s
}

func TestStepReordersQuaternion(t *testing.T) {
	sensor := &fakeSensor{quats: []quatResult{{q: bno08x.Quaternion{I: 0.1, J: 0.2, K: 0.3, Real: 0.9}}}}
	s := newTestService(sensor)
	require.NoError(t, s.Start())
	assert.Equal(t, []bno08x.ReportID{bno08x.ReportRotationVector}, sensor.enabled)
	assert.Equal(t, Orientation{0.9, 0.1, 0.2, 0.3}, s.Step())
	assert.Equal(t, Orientation{0.9, 0.1, 0.2, 0.3}, s.Orientation())
}

func TestStepRecoversAfterFailure(t *testing.T) {
	sensor := &fakeSensor{
		initErrs: []error{nil, errors.New("no id"), nil},
		quats: []quatResult{
			{q: bno08x.Quaternion{Real: 0.5, I: 0.5}},
			{err: errors.New("framing")},
			{q: bno08x.Quaternion{Real: 0.7, K: 0.7}},
		},
	}
	reset := &shtptest.ResetLine{}
	s := newTestService(sensor)
	s.Reset = reset
	require.NoError(t, s.Start())

	last := s.Step()
	assert.Equal(t, Orientation{0.5, 0.5, 0, 0}, last)
	// read error: hold in reset, keep the last value
	assert.Equal(t, last, s.Step())
	assert.False(t, s.Healthy())
	assert.EqualError(t, s.Err(), "framing")
	// first recovery attempt fails to initialize
	assert.Equal(t, last, s.Step())
	assert.False(t, s.Healthy())
	// second recovery succeeds, value still the last known
	assert.Equal(t, last, s.Step())
	assert.True(t, s.Healthy())
	assert.Equal(t, Orientation{0.7, 0, 0, 0.7}, s.Step())

	assert.Equal(t, 3, sensor.inits)
	assert.Equal(t, []bool{false, true, false, true}, reset.Levels)
	assert.Equal(t, uint32(2), s.status().Resets)
}

func TestStepWaitsForFirstSample(t *testing.T) {
	noData := &bno08x.NotEnabledError{ID: bno08x.ReportRotationVector, Enabled: true}
	sensor := &fakeSensor{quats: []quatResult{{err: noData}, {err: noData}}}
	s := newTestService(sensor)
	s.Filter = DefaultFilter()
	require.NoError(t, s.Start())

	assert.Equal(t, Identity, s.Step())
	assert.Equal(t, Identity, s.Step())
	assert.True(t, s.Healthy())
	assert.NoError(t, s.Err())
	assert.Equal(t, 1, sensor.inits)
	// the first sample passes the filters from the identity
	o := s.Step()
	assert.InDelta(t, 1.0, o[0], 1e-9)
	assert.Equal(t, 0.0, o[1])
}

func TestStartFailureResetsOnStep(t *testing.T) {
	sensor := &fakeSensor{initErrs: []error{bno08x.ErrInitializationFailed}}
	s := newTestService(sensor)
	assert.ErrorIs(t, s.Start(), bno08x.ErrInitializationFailed)
	assert.Equal(t, Identity, s.Step())
	assert.True(t, s.Healthy())
}

func TestFilters(t *testing.T) {
	last := Orientation{1, 0, 0, 0}
	assert.Equal(t, Orientation{1, 0.5, 0, 0}, JumpFilter{Threshold: 1}.Filter(Orientation{1, 0.5, 0, 0}, last))
	assert.Equal(t, Orientation{1, 0, 0, 0}, JumpFilter{Threshold: 1}.Filter(Orientation{-1, 0, 0, 0}, last))
	lp := LowPassFilter{Alpha: 0.5}.Filter(Orientation{0, 1, 0, 0}, last)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0, 0}, lp[:], 1e-9)
	chained := DefaultFilter().Filter(Orientation{-1, 1, 0, 0}, last)
	assert.InDeltaSlice(t, []float64{1, 0.2, 0, 0}, chained[:], 1e-9)
}

func TestExecuteCommands(t *testing.T) {
	sensor := &fakeSensor{}
	s := newTestService(sensor)
	require.NoError(t, s.Start())

	out := s.execute(&msgs.Command{ID: "1", Action: msgs.ActionSave})
	assert.Equal(t, []fx.Message{&msgs.Reply{ID: "1"}}, out)
	assert.Equal(t, 1, sensor.saves)

	out = s.execute(&msgs.Command{ID: "2", Action: msgs.ActionStatus})
	require.Len(t, out, 3)
	assert.Equal(t, "Ready", out[0].(*msgs.Status).State)
	assert.Equal(t, &msgs.Calibration{MagAccuracy: 2, Accel: true, Mag: true}, out[1])

	out = s.execute(&msgs.Command{ID: "3", Action: "dance"})
	assert.Equal(t, "unknown action dance", out[0].(*msgs.Reply).Error)

	out = s.execute(&msgs.Command{ID: "4", Action: msgs.ActionReset})
	assert.Equal(t, []fx.Message{&msgs.Reply{ID: "4"}}, out)
	assert.ErrorIs(t, s.Err(), ErrResetRequested)

	out = s.execute(&msgs.Command{ID: "5", Action: msgs.ActionCalibrate})
	assert.Equal(t, bno08x.ErrNotReady.Error(), out[0].(*msgs.Reply).Error)
}

func TestTelemetry(t *testing.T) {
	sensor := &fakeSensor{}
	s := newTestService(sensor)
	s.Features = append(s.Features, Feature{ID: bno08x.ReportAccelerometer, Interval: 20 * time.Millisecond})
	require.NoError(t, s.Start())
	s.Step()
	out := s.telemetry()
	require.Len(t, out, 2)
	o := out[0].(*msgs.Orientation)
	assert.Equal(t, 1.0, o.W)
	assert.NotZero(t, o.Timestamp)
	assert.False(t, o.Stale)
	v := out[1].(*msgs.Vector)
	assert.Equal(t, "accelerometer", v.Report)
	assert.Equal(t, 9.8, v.Z)
}

func TestRunInLoop(t *testing.T) {
	sensor := &fakeSensor{}
	s := newTestService(sensor)
	s.Period = time.Millisecond
	s.TelemetryPeriod = time.Millisecond
	got := make(chan fx.Message, 64)
	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(s)
	loop.AddController(fx.PrLvPublish, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			mc.MessageTaken()
			select {
			case got <- mc.CurrentMessage():
			default:
			}
		}))
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	loop.PostMessage(&msgs.Command{ID: "x", Action: msgs.ActionSave})

	var sawReply, sawOrientation bool
	deadline := time.After(5 * time.Second)
	for !sawReply || !sawOrientation {
		select {
		case msg := <-got:
			switch m := msg.(type) {
			case *msgs.Reply:
				sawReply = m.ID == "x" && m.Error == ""
			case *msgs.Orientation:
				sawOrientation = true
			}
		case <-deadline:
			t.Fatal("messages not received")
		}
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
