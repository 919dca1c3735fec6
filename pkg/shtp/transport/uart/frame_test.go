package uart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(d *Decoder, b []byte) (frames []*Frame) {
	for _, c := range b {
		if f := d.Decode(c); f != nil {
			frames = append(frames, f)
		}
	}
	return
}

func TestEncodeEscapes(t *testing.T) {
	b := Encode(ProtocolSHTP, []byte{0x05, 0x7e, 0x7d, 0x00})
	assert.Equal(t, []byte{0x7e, 0x01, 0x05, 0x7d, 0x5e, 0x7d, 0x5d, 0x00, 0x7e}, b)
}

func TestDecodeFrames(t *testing.T) {
	var d Decoder
	var stream []byte
	stream = append(stream, 0x11, 0x22) // noise before the first flag
	stream = append(stream, Encode(ProtocolSHTP, []byte{0x08, 0x00, 0x02, 0x01, 0x7e, 0x7d, 0xf8, 0x00})...)
	stream = append(stream, Encode(ProtocolBSQ, []byte{0x00})...)
	frames := decodeAll(&d, stream)
	require.Len(t, frames, 2)
	assert.Equal(t, ProtocolSHTP, frames[0].Protocol)
	assert.Equal(t, []byte{0x08, 0x00, 0x02, 0x01, 0x7e, 0x7d, 0xf8, 0x00}, frames[0].Data)
	assert.Equal(t, ProtocolBSQ, frames[1].Protocol)
}

func TestDecodeSkipsEmptyFrames(t *testing.T) {
	var d Decoder
	frames := decodeAll(&d, []byte{0x7e, 0x7e, 0x7e, 0x01, 0x02, 0x7e})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x02}, frames[0].Data)
}

func TestDecodeDropsBadEscape(t *testing.T) {
	var d Decoder
	frames := decodeAll(&d, []byte{0x7e, 0x01, 0x7d, 0x7d, 0x03, 0x7e, 0x01, 0x04, 0x7e})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x04}, frames[0].Data)
}

type loopback struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }

func TestReadWriter(t *testing.T) {
	var stream []byte
	stream = append(stream, Encode(ProtocolBSQ, []byte{0x00})...)
	stream = append(stream, Encode(ProtocolSHTP, []byte{0x01, 0x02})...)
	stream = append(stream, Encode(ProtocolSHTP, []byte{0x05, 0x00, 0x01, 0x00, 0x01})...)
	port := &loopback{in: bytes.NewReader(stream)}
	rw := New(port)

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x00, 0x01, 0x00, 0x01}, pkt)
	_, err = rw.ReadPacket()
	require.Error(t, err)

	require.NoError(t, rw.WritePacket([]byte{0x06, 0x00, 0x02, 0x00, 0xf9, 0x00}))
	assert.Equal(t, []byte{0x7e, 0x01, 0x06, 0x00, 0x02, 0x00, 0xf9, 0x00, 0x7e}, port.out.Bytes())
}

func TestSerialMode(t *testing.T) {
	mode, err := PortOptions{}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaudRate, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	_, err = PortOptions{BaudRate: -1}.SerialMode()
	assert.Error(t, err)
}
