package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/shtp"
)

type buffer struct {
	bytes.Buffer
}

func TestReadPackets(t *testing.T) {
	var buf buffer
	buf.Write(shtp.NewPacket(shtp.ChannelControl, 1, []byte{0xf8, 0x00, 0x01}).Bytes())
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(shtp.NewPacket(shtp.ChannelInputReports, 2, []byte{0x05}).Bytes())
	rw := New(&buf)

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 2, 1, 0xf8, 0x00, 0x01}, pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 3, 2, 0x05}, pkt)
	_, err = rw.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func TestReadTruncated(t *testing.T) {
	var buf buffer
	buf.Write([]byte{8, 0, 2, 1, 0xf8})
	_, err := New(&buf).ReadPacket()
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestWritePacket(t *testing.T) {
	var buf buffer
	require.NoError(t, New(&buf).WritePacket([]byte{5, 0, 1, 0, 1}))
	assert.Equal(t, []byte{5, 0, 1, 0, 1}, buf.Bytes())
}
