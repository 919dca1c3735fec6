// Package websocket carries SHTP packets as binary websocket messages.
package websocket

import (
	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// ReadWriter implements PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	return (*ReadWriter)(conn)
}

// Dial connects to a websocket bridge, e.g. ws://robot:8080/shtp.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements PacketReader.
// Messages too short for a header are dropped.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	for {
		if err = websocket.Message.Receive((*websocket.Conn)(p), &pkt); err != nil {
			return
		}
		if len(pkt) >= shtp.HeaderSize {
			return
		}
		glog.Warningf("drop websocket message of %d bytes", len(pkt))
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close closes the connection.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
