package shtp_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/shtp"
	"github.com/robotalks/imu.go/pkg/shtp/shtptest"
)

func TestParseHeader(t *testing.T) {
	testCases := []struct {
		name    string
		in      []byte
		count   uint16
		channel shtp.Channel
		seq     uint8
		dataLen int
		isError bool
	}{
		{"regular", []byte{0x14, 0x00, 0x03, 0x07}, 20, shtp.ChannelInputReports, 7, 16, false},
		{"continuation masked", []byte{0x14, 0x80, 0x02, 0x01}, 20, shtp.ChannelControl, 1, 16, false},
		{"count below header", []byte{0x02, 0x00, 0x02, 0x00}, 2, shtp.ChannelControl, 0, 0, false},
		{"empty", []byte{0x00, 0x00, 0x00, 0x00}, 0, shtp.ChannelCommand, 0, 0, false},
		{"channel out of range", []byte{0x14, 0x00, 0x06, 0x00}, 20, shtp.Channel(6), 0, 16, true},
		{"error sentinel", []byte{0xff, 0xff, 0x01, 0xff}, 0x7fff, shtp.ChannelExecutable, 0xff, 0x7fff - 4, true},
		{"all ones count only", []byte{0xff, 0xff, 0x01, 0x01}, 0x7fff, shtp.ChannelExecutable, 1, 0x7fff - 4, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := shtp.ParseHeader(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.count, h.ByteCount)
			require.Equal(t, tc.channel, h.Channel)
			require.Equal(t, tc.seq, h.Seq)
			require.Equal(t, tc.dataLen, h.DataLength())
			require.Equal(t, tc.isError, h.IsError())
		})
	}
}

func TestParseHeaderShort(t *testing.T) {
	_, err := shtp.ParseHeader([]byte{0x14, 0x00, 0x03})
	require.True(t, errors.Is(err, shtp.ErrFraming))
}

func TestHeaderContinuation(t *testing.T) {
	h, err := shtp.ParseHeader([]byte{0x05, 0x80, 0x02, 0x00})
	require.NoError(t, err)
	require.True(t, h.Continuation())
	require.Equal(t, 1, h.DataLength())
}

func TestPacketBytes(t *testing.T) {
	pkt := shtp.NewPacket(shtp.ChannelControl, 3, []byte{0xf9, 0x00})
	expect := []byte{0x06, 0x00, 0x02, 0x03, 0xf9, 0x00}
	require.Equal(t, expect, pkt.Bytes())
	var buf bytes.Buffer
	n, err := pkt.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(expect)), n)
	require.Equal(t, expect, buf.Bytes())
	require.Contains(t, pkt.String(), "CONTROL seq=3 len=2")
}

func TestReadPacket(t *testing.T) {
	tr := shtptest.New().QueuePacket(shtp.ChannelInputReports, 9, 0xfb, 1, 2, 3, 4)
	require.True(t, tr.DataReady())
	pkt, err := shtp.ReadPacket(tr)
	require.NoError(t, err)
	require.Equal(t, shtp.ChannelInputReports, pkt.Channel)
	require.Equal(t, uint8(9), pkt.Seq)
	require.Equal(t, []byte{0xfb, 1, 2, 3, 4}, pkt.Data)
	require.False(t, tr.DataReady())
}

func TestReadPacketErrors(t *testing.T) {
	testCases := []struct {
		name   string
		raw    []byte
		target error
	}{
		{"error header", []byte{0xff, 0xff, 0x01, 0xff}, shtp.ErrFraming},
		{"bad channel", []byte{0x08, 0x00, 0x07, 0x00, 1, 2, 3, 4}, shtp.ErrFraming},
		{"nothing available", []byte{0x00, 0x00, 0x00, 0x00}, shtp.ErrNoPacket},
		{"short payload", []byte{0x0a, 0x00, 0x03, 0x00, 1, 2}, shtp.ErrFraming},
		{"short header", []byte{0x0a, 0x00}, shtp.ErrFraming},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := shtp.ReadPacket(shtptest.New().Queue(tc.raw))
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.target), "%v", err)
		})
	}
}

func TestChannelString(t *testing.T) {
	require.Equal(t, "CONTROL", shtp.ChannelControl.String())
	require.Equal(t, "CHANNEL(9)", shtp.Channel(9).String())
}
