package websocket

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// echoDevice returns every written packet with seq incremented.
type echoDevice struct {
	ch chan []byte
}

func (d *echoDevice) ReadPacket() ([]byte, error) {
	pkt, ok := <-d.ch
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (d *echoDevice) WritePacket(pkt []byte) error {
	out := append([]byte(nil), pkt...)
	out[3]++
	d.ch <- out
	return nil
}

func TestBridge(t *testing.T) {
	dev := &echoDevice{ch: make(chan []byte, 4)}
	srv := httptest.NewServer(NewBridge(dev).Handler())
	defer srv.Close()

	rw, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer rw.Close()

	// too short, dropped by the bridge
	require.NoError(t, rw.WritePacket([]byte{1, 2}))
	require.NoError(t, rw.WritePacket(shtp.NewPacket(shtp.ChannelControl, 4, []byte{0xf9, 0x00}).Bytes()))
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte{6, 0, 2, 5, 0xf9, 0x00}, pkt)
}
