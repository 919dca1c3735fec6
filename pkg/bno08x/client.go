package bno08x

import (
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// Transport is the byte transport to the hub.
type Transport = shtp.Transport

// State is the handshake state of a Client.
type State int

// States.
const (
	StateUninitialized State = iota
	StateResetting
	StateAwaitingID
	StateReady
	StateFailed
)

var stateNames = [...]string{"Uninitialized", "Resetting", "AwaitingID", "Ready", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

const maxConsecutiveReadErrors = 8

// Client drives a BNO08x sensor hub.
// It is not safe for concurrent use.
type Client struct {
	Transport Transport
	// Reset is optional, hardware reset is skipped without it.
	Reset  shtp.ResetLine
	Clock  Clock
	Tracer shtp.Tracer
	Config Config

	state     State
	seq       shtp.SequenceTracker
	readings  map[ReportID]Reading
	features  map[ReportID]FeatureResponse
	shaken    bool
	productID *ProductID
	timestamp Timestamp

	magAccuracy   Accuracy
	calStartedAt  time.Time
	calAcks       int
	meCal         MECalibration
	dcdSavedAt    time.Time
	dcdSaved      int
	dcdFailed     int
	dcdLastStatus byte
}

// New creates a Client with default config.
func New(t Transport) *Client {
	c := &Client{
		Transport: t,
		Clock:     RealClock{},
		Config:    defaultConfig,
	}
	c.resetState()
	return c
}

// State returns the handshake state.
func (c *Client) State() State {
	return c.state
}

// ProductID returns the product ID read during initialization.
func (c *Client) ProductID() (ProductID, bool) {
	if c.productID == nil {
		return ProductID{}, false
	}
	return *c.productID, true
}

// LastTimestamp returns the last base timestamp or rebase report.
func (c *Client) LastTimestamp() Timestamp {
	return c.timestamp
}

func (c *Client) resetState() {
	c.seq.Reset()
	c.readings = make(map[ReportID]Reading)
	c.features = make(map[ReportID]FeatureResponse)
	c.productID = nil
	c.shaken = false
	c.timestamp = Timestamp{}
	c.magAccuracy = AccuracyUnreliable
	c.calStartedAt, c.dcdSavedAt = time.Time{}, time.Time{}
	c.calAcks, c.dcdSaved, c.dcdFailed, c.dcdLastStatus = 0, 0, 0, 0
	c.meCal = MECalibration{}
}

// Initialize resets the hub and reads its product ID.
// All previous state is discarded.
func (c *Client) Initialize() error {
	c.resetState()
	for attempt := 1; attempt <= c.Config.InitAttempts; attempt++ {
		c.state = StateResetting
		if err := c.HardReset(); err != nil {
			glog.Warningf("hard reset: %v", err)
		}
		if err := c.SoftReset(); err != nil {
			glog.Warningf("soft reset attempt %d: %v", attempt, err)
			c.Clock.Sleep(c.Config.ResetDelay)
			continue
		}
		c.state = StateAwaitingID
		id, err := c.checkID()
		if err == nil {
			c.state = StateReady
			glog.Infof("BNO08x ready: %s", id)
			return nil
		}
		glog.Warningf("read product ID attempt %d: %v", attempt, err)
		c.Clock.Sleep(c.Config.ResetDelay)
	}
	c.state = StateFailed
	return ErrInitializationFailed
}

// HardReset pulses the reset line high, low, high.
func (c *Client) HardReset() error {
	if c.Reset == nil {
		return nil
	}
	for _, level := range []bool{true, false, true} {
		if err := c.Reset.SetReset(level); err != nil {
			return err
		}
		c.Clock.Sleep(c.Config.ResetPulse)
	}
	return nil
}

// SoftReset sends the reset command on the executable channel twice
// and discards up to 3 packets sent by the hub while restarting.
func (c *Client) SoftReset() error {
	for n := 0; n < 2; n++ {
		if err := c.send(shtp.ChannelExecutable, []byte{1}); err != nil {
			return err
		}
		c.Clock.Sleep(c.Config.ResetDelay)
	}
	for n := 0; n < 3; n++ {
		if _, err := c.readPacket(); err != nil {
			c.Clock.Sleep(c.Config.ResetDelay)
		}
	}
	return nil
}

func (c *Client) checkID() (ProductID, error) {
	c.productID = nil
	if err := c.send(shtp.ChannelControl, []byte{byte(ReportProductIDRequest), 0}); err != nil {
		return ProductID{}, err
	}
	start := c.Clock.Now()
	for {
		remain := c.Config.IDTimeout - c.Clock.Now().Sub(start)
		if remain <= 0 {
			break
		}
		if remain > c.Config.PacketTimeout {
			remain = c.Config.PacketTimeout
		}
		pkt, err := c.waitForPacket(remain)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				continue
			}
			glog.V(2).Infof("waiting for product ID: %v", err)
			continue
		}
		// the response may follow other reports in a batch
		c.handlePacket(pkt)
		if c.productID != nil {
			return *c.productID, nil
		}
	}
	return ProductID{}, &TimeoutError{Op: "read product ID", Timeout: c.Config.IDTimeout}
}

func (c *Client) waitForPacket(timeout time.Duration) (*shtp.Packet, error) {
	start := c.Clock.Now()
	for c.Clock.Now().Sub(start) < timeout {
		if !c.Transport.DataReady() {
			c.Clock.Sleep(c.Config.PollInterval)
			continue
		}
		return c.readPacket()
	}
	return nil, &TimeoutError{Op: "wait for packet", Timeout: timeout}
}

func (c *Client) send(ch shtp.Channel, data []byte) error {
	pkt := shtp.NewPacket(ch, c.seq.Next(ch), data)
	if glog.V(2) {
		glog.Infof("SEND %s", pkt)
	}
	if c.Tracer != nil {
		c.Tracer.TracePacket(shtp.Outbound, pkt)
	}
	return shtp.WritePacket(c.Transport, pkt)
}

func (c *Client) readPacket() (*shtp.Packet, error) {
	pkt, err := shtp.ReadPacket(c.Transport)
	if err != nil {
		return nil, err
	}
	c.seq.Received(pkt.Header)
	if glog.V(2) {
		glog.Infof("RECV %s", pkt)
	}
	if c.Tracer != nil {
		c.Tracer.TracePacket(shtp.Inbound, pkt)
	}
	return pkt, nil
}

// Poll processes all packets the hub has pending.
func (c *Client) Poll() {
	c.processAvailable(0)
}

// processAvailable drains pending packets, at most limit packets when limit > 0.
func (c *Client) processAvailable(limit int) {
	var processed, failures int
	for c.Transport.DataReady() {
		if limit > 0 && processed >= limit {
			return
		}
		pkt, err := c.readPacket()
		if err != nil {
			glog.V(2).Infof("skip packet: %v", err)
			if failures++; failures >= maxConsecutiveReadErrors {
				glog.Warningf("giving up draining after %d read errors: %v", failures, err)
				return
			}
			continue
		}
		failures = 0
		c.handlePacket(pkt)
		processed++
	}
}

func (c *Client) handlePacket(pkt *shtp.Packet) {
	if pkt.Channel == shtp.ChannelCommand || pkt.Channel == shtp.ChannelExecutable {
		glog.V(2).Infof("ignore packet on %s", pkt.Channel)
		return
	}
	slices, err := shtp.Split(pkt.Data, Catalog)
	for _, s := range slices {
		c.processReport(s)
	}
	if err != nil {
		glog.Warningf("batch on %s: %v", pkt.Channel, err)
	}
}

func (c *Client) processReport(s shtp.ReportSlice) {
	if glog.V(3) {
		glog.Infof("report %s % x", ReportName(s.ID), s.Data)
	}
	if s.ID.IsControl() {
		c.handleControlReport(s)
		return
	}
	r, err := Decode(s)
	if err != nil {
		glog.Warningf("decode: %v", err)
		return
	}
	switch v := r.(type) {
	case Shake:
		// latched until read, and only once the feature is enabled
		if _, ok := c.features[s.ID]; ok && bool(v) {
			c.shaken = true
		}
		return
	case Vector3:
		if s.ID == ReportMagnetometer {
			c.magAccuracy = v.Accuracy
		}
	}
	c.readings[s.ID] = r
}

func (c *Client) handleControlReport(s shtp.ReportSlice) {
	switch s.ID {
	case ReportProductIDResponse:
		id := DecodeProductID(s.Data)
		c.productID = &id
		glog.V(1).Infof("product ID: %s", id)
	case ReportGetFeatureResp:
		fr := DecodeFeatureResponse(s.Data)
		if fr.ReportInterval == 0 {
			c.forgetFeature(fr.FeatureID)
			return
		}
		c.features[fr.FeatureID] = fr
	case ReportCommandResponse:
		c.handleCommandResponse(DecodeCommandResponse(s.Data))
	case ReportBaseTimestamp, ReportTimestampRebase:
		c.timestamp = DecodeTimestamp(s.Data)
	default:
		glog.V(2).Infof("unhandled control report %s", ReportName(s.ID))
	}
}

func (c *Client) handleCommandResponse(r CommandResponse) {
	c.seq.ReportReceived(ReportCommandResponse, r.Seq)
	switch r.Command {
	case CommandMECalibrate:
		if r.Status() == 0 {
			c.calStartedAt = c.Clock.Now()
			c.meCal = decodeMECalibration(r)
			c.calAcks++
		}
	case CommandSaveDCD:
		c.dcdLastStatus = r.Status()
		if r.Status() == 0 {
			c.dcdSavedAt = c.Clock.Now()
			c.dcdSaved++
		} else {
			glog.Warningf("unable to save calibration data: status %d", r.Status())
			c.dcdFailed++
		}
	}
}

// timeout applies the configured timeout policy.
func (c *Client) timeout(err error) error {
	if c.Config.SoftTimeouts {
		glog.Warning(err)
		return nil
	}
	return err
}

func (c *Client) reading(id ReportID) (Reading, error) {
	c.processAvailable(0)
	r, ok := c.readings[id]
	if !ok {
		_, enabled := c.features[id]
		return nil, &NotEnabledError{ID: id, Enabled: enabled}
	}
	return r, nil
}

func (c *Client) vector(id ReportID) (Vector3, error) {
	r, err := c.reading(id)
	v, _ := r.(Vector3)
	return v, err
}

func (c *Client) quaternion(id ReportID) (Quaternion, error) {
	r, err := c.reading(id)
	q, _ := r.(Quaternion)
	return q, err
}

func (c *Client) raw(id ReportID) (RawVector, error) {
	r, err := c.reading(id)
	v, _ := r.(RawVector)
	return v, err
}

// Acceleration returns the acceleration in m/s² including gravity.
func (c *Client) Acceleration() (Vector3, error) {
	return c.vector(ReportAccelerometer)
}

// LinearAcceleration returns the acceleration in m/s² without gravity.
func (c *Client) LinearAcceleration() (Vector3, error) {
	return c.vector(ReportLinearAcceleration)
}

// Gyro returns the rotation speed in rad/s.
func (c *Client) Gyro() (Vector3, error) {
	return c.vector(ReportGyroscope)
}

// Magnetic returns the magnetic field in µT.
func (c *Client) Magnetic() (Vector3, error) {
	return c.vector(ReportMagnetometer)
}

// Quaternion returns the rotation vector.
func (c *Client) Quaternion() (Quaternion, error) {
	return c.quaternion(ReportRotationVector)
}

// GameQuaternion returns the rotation vector without magnetometer correction.
func (c *Client) GameQuaternion() (Quaternion, error) {
	return c.quaternion(ReportGameRotationVector)
}

// GeomagneticQuaternion returns the rotation vector without gyroscope input.
func (c *Client) GeomagneticQuaternion() (Quaternion, error) {
	return c.quaternion(ReportGeomagneticRotationVector)
}

// RawAcceleration returns the unscaled accelerometer registers.
func (c *Client) RawAcceleration() (RawVector, error) {
	return c.raw(ReportRawAccelerometer)
}

// RawGyro returns the unscaled gyroscope registers.
func (c *Client) RawGyro() (RawVector, error) {
	return c.raw(ReportRawGyroscope)
}

// RawMagnetic returns the unscaled magnetometer registers.
func (c *Client) RawMagnetic() (RawVector, error) {
	return c.raw(ReportRawMagnetometer)
}

// Steps returns the step count.
func (c *Client) Steps() (int, error) {
	r, err := c.reading(ReportStepCounter)
	n, _ := r.(StepCount)
	return int(n), err
}

// Shake reports whether a shake was detected since the last call.
func (c *Client) Shake() (bool, error) {
	c.processAvailable(0)
	if _, ok := c.features[ReportShakeDetector]; !ok {
		return false, &NotEnabledError{ID: ReportShakeDetector}
	}
	shaken := c.shaken
	c.shaken = false
	return shaken, nil
}

// StabilityClassification returns the stability classification.
func (c *Client) StabilityClassification() (Stability, error) {
	r, err := c.reading(ReportStabilityClassifier)
	s, _ := r.(Stability)
	return s, err
}

// ActivityClassification returns the activity classification.
func (c *Client) ActivityClassification() (Activity, error) {
	r, err := c.reading(ReportActivityClassifier)
	a, _ := r.(Activity)
	return a, err
}

// Reading returns the latest reading of any enabled report.
func (c *Client) Reading(id ReportID) (Reading, error) {
	if id == ReportShakeDetector {
		shaken, err := c.Shake()
		return Shake(shaken), err
	}
	return c.reading(id)
}
