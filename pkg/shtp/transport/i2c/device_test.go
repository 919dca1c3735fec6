package i2c

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// fakeBus replays the current packet from its start on every read.
type fakeBus struct {
	packets [][]byte
	reads   []int
	written [][]byte
}

func (b *fakeBus) Read(p []byte) (int, error) {
	b.reads = append(b.reads, len(p))
	if len(b.packets) == 0 {
		return copy(p, []byte{0, 0, 0, 0}), nil
	}
	n := copy(p, b.packets[0])
	if len(p) > shtp.HeaderSize {
		b.packets = b.packets[1:]
	}
	return n, nil
}

func (b *fakeBus) Write(p []byte) (int, error) {
	b.written = append(b.written, append([]byte(nil), p...))
	return len(p), nil
}

func (b *fakeBus) Close() error { return nil }

func TestDeviceReadPacket(t *testing.T) {
	bus := &fakeBus{packets: [][]byte{
		shtp.NewPacket(shtp.ChannelControl, 3, []byte{0xf8, 0x00, 0x03}).Bytes(),
	}}
	d := NewDevice(bus)
	require.True(t, d.DataReady())
	pkt, err := shtp.ReadPacket(d)
	require.NoError(t, err)
	assert.Equal(t, shtp.ChannelControl, pkt.Channel)
	assert.Equal(t, []byte{0xf8, 0x00, 0x03}, pkt.Data)
	// peek, cached header, header+payload
	assert.Equal(t, []int{4, 7}, bus.reads)
	assert.False(t, d.DataReady())
}

func TestDeviceNotReady(t *testing.T) {
	bus := &fakeBus{packets: [][]byte{{0xff, 0xff, 0x01, 0xff}}}
	d := NewDevice(bus)
	assert.False(t, d.DataReady())
}

func TestDeviceWrite(t *testing.T) {
	bus := &fakeBus{}
	d := NewDevice(bus)
	require.NoError(t, shtp.WritePacket(d, shtp.NewPacket(shtp.ChannelExecutable, 0, []byte{1})))
	require.Len(t, bus.written, 1)
	assert.Equal(t, []byte{5, 0, 1, 0, 1}, bus.written[0])
}

type shortBus struct{ fakeBus }

func (b *shortBus) Read(p []byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDeviceReadError(t *testing.T) {
	d := NewDevice(&shortBus{})
	assert.False(t, d.DataReady())
	_, err := shtp.ReadPacket(d)
	assert.ErrorIs(t, err, shtp.ErrFraming)
}
