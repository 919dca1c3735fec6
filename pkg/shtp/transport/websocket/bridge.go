package websocket

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/imu.go/pkg/shtp/transport"
)

// Bridge serves a local packet device to websocket clients, one at a time.
type Bridge struct {
	Device transport.PacketReadWriter

	lock    sync.Mutex
	current *ReadWriter
	started bool
}

// NewBridge creates a Bridge.
func NewBridge(dev transport.PacketReadWriter) *Bridge {
	return &Bridge{Device: dev}
}

// Handler is the websocket handler, mount it with http.Handle.
func (b *Bridge) Handler() websocket.Handler {
	return websocket.Handler(b.serve)
}

func (b *Bridge) serve(conn *websocket.Conn) {
	rw := New(conn)
	b.lock.Lock()
	if prev := b.current; prev != nil {
		prev.Close()
	}
	b.current = rw
	if !b.started {
		b.started = true
		go b.pumpDevice()
	}
	b.lock.Unlock()
	glog.Infof("bridge client %s connected", conn.Request().RemoteAddr)

	for {
		pkt, err := rw.ReadPacket()
		if err != nil {
			glog.V(1).Infof("bridge client: %v", err)
			break
		}
		if err := b.Device.WritePacket(pkt); err != nil {
			glog.Errorf("bridge device write: %v", err)
			break
		}
	}
	b.lock.Lock()
	if b.current == rw {
		b.current = nil
	}
	b.lock.Unlock()
}

// pumpDevice forwards packets from the device, dropped without a client.
func (b *Bridge) pumpDevice() {
	for {
		pkt, err := b.Device.ReadPacket()
		if err != nil {
			glog.Errorf("bridge device read: %v", err)
			b.lock.Lock()
			if b.current != nil {
				b.current.Close()
			}
			b.started = false
			b.lock.Unlock()
			return
		}
		b.lock.Lock()
		rw := b.current
		b.lock.Unlock()
		if rw == nil {
			continue
		}
		if err := rw.WritePacket(pkt); err != nil {
			glog.V(1).Infof("bridge client write: %v", err)
		}
	}
}
