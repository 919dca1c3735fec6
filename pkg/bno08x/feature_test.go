package bno08x

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/shtp"
)

func setFeatures(h *hub) (ids []ReportID) {
	for _, pkt := range h.WrittenOn(shtp.ChannelControl) {
		if ReportID(pkt.Data[0]) == ReportSetFeatureCommand {
			ids = append(ids, ReportID(pkt.Data[1]))
		}
	}
	return
}

func TestEnableFeature(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	require.NoError(t, c.EnableFeature(ReportGameRotationVector))

	pkts := h.WrittenOn(shtp.ChannelControl)
	pkt := pkts[len(pkts)-1]
	require.Len(t, pkt.Data, 17)
	require.Equal(t, byte(ReportSetFeatureCommand), pkt.Data[0])
	require.Equal(t, byte(ReportGameRotationVector), pkt.Data[1])
	require.Equal(t, uint32(50000), binary.LittleEndian.Uint32(pkt.Data[5:]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(pkt.Data[13:]))
	require.True(t, c.Enabled(ReportGameRotationVector))
	require.Equal(t, uint32(50000), c.Features()[ReportGameRotationVector].ReportInterval)
}

func TestEnableFeatureWith(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	require.NoError(t, c.EnableFeatureWith(ReportGyroscope, FeatureConfig{
		Interval:     10 * time.Millisecond,
		SensorConfig: 7,
	}))
	pkts := h.WrittenOn(shtp.ChannelControl)
	pkt := pkts[len(pkts)-1]
	require.Equal(t, uint32(10000), binary.LittleEndian.Uint32(pkt.Data[5:]))
	require.Equal(t, uint32(7), binary.LittleEndian.Uint32(pkt.Data[13:]))
}

func TestEnableActivityClassifier(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	for _, conf := range []uint32{0, 0x3} {
		require.NoError(t, c.EnableFeatureWith(ReportActivityClassifier, FeatureConfig{Interval: time.Second, SensorConfig: conf}))
		pkts := h.WrittenOn(shtp.ChannelControl)
		pkt := pkts[len(pkts)-1]
		require.Equal(t, uint32(0x1ff), binary.LittleEndian.Uint32(pkt.Data[13:]))
	}
}

func TestEnableFeatureDependency(t *testing.T) {
	testCases := []struct {
		name   string
		before []ReportID
		enable ReportID
		expect []ReportID
	}{
		{"raw accelerometer", nil, ReportRawAccelerometer, []ReportID{ReportAccelerometer, ReportRawAccelerometer}},
		{"raw gyroscope", nil, ReportRawGyroscope, []ReportID{ReportGyroscope, ReportRawGyroscope}},
		{"raw magnetometer", nil, ReportRawMagnetometer, []ReportID{ReportMagnetometer, ReportRawMagnetometer}},
		{"dependency enabled", []ReportID{ReportAccelerometer}, ReportRawAccelerometer, []ReportID{ReportAccelerometer, ReportRawAccelerometer}},
		{"no dependency", nil, ReportLinearAcceleration, []ReportID{ReportLinearAcceleration}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHub()
			c, _ := readyClient(h)
			for _, id := range tc.before {
				require.NoError(t, c.EnableFeature(id))
			}
			require.NoError(t, c.EnableFeature(tc.enable))
			require.Equal(t, tc.expect, setFeatures(h))
			require.True(t, c.Enabled(tc.enable))
		})
	}
}

func TestEnableFeatureTimeout(t *testing.T) {
	h := newHub()
	c, clk := readyClient(h)
	h.silent[ReportSetFeatureCommand] = true

	start := clk.Now()
	err := c.EnableFeature(ReportRotationVector)
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	require.True(t, errors.Is(err, ErrTimeout))
	require.Equal(t, 2*time.Second, te.Timeout)
	require.True(t, clk.Now().Sub(start) >= 2*time.Second)
	require.False(t, c.Enabled(ReportRotationVector))

	err = c.EnableFeature(ReportRawGyroscope)
	require.True(t, errors.Is(err, ErrTimeout))
	require.Equal(t, []ReportID{ReportRotationVector, ReportGyroscope}, setFeatures(h))
}

func TestEnableFeatureSoftTimeout(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	c.Config.SoftTimeouts = true
	h.silent[ReportSetFeatureCommand] = true
	require.NoError(t, c.EnableFeature(ReportRotationVector))
	_, err := c.Quaternion()
	require.True(t, errors.Is(err, ErrNotEnabled))
	require.False(t, errors.Is(err, ErrNoData))
}

func TestEnableFeatureLimitsPacketsPerPoll(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	require.NoError(t, c.EnableFeature(ReportAccelerometer))
	for n := 0; n < 25; n++ {
		h.push(shtp.ChannelInputReports, sensorReport(ReportAccelerometer, 10, 0, int16(n), 0, 0)...)
	}
	require.NoError(t, c.EnableFeature(ReportGyroscope))
	require.Equal(t, 0, h.Pending())
}

func TestDisableFeature(t *testing.T) {
	h := newHub()
	c, _ := readyClient(h)
	require.NoError(t, c.EnableFeature(ReportAccelerometer))
	require.NoError(t, c.DisableFeature(ReportAccelerometer))
	pkts := h.WrittenOn(shtp.ChannelControl)
	pkt := pkts[len(pkts)-1]
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(pkt.Data[5:]))
	_, err := c.Acceleration()
	require.True(t, errors.Is(err, ErrNotEnabled))
	require.NotContains(t, c.Features(), ReportAccelerometer)
}
