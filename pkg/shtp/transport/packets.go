package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// ErrReadTimeout indicates no packet arrived in time.
var ErrReadTimeout = errors.New("read timeout")

// Packets implements shtp.Transport on top of a PacketReadWriter.
// Packets are received by a background goroutine so DataReady never blocks.
type Packets struct {
	ReadWriter PacketReadWriter
	Timeout    time.Duration

	packetCh  chan []byte
	startOnce sync.Once

	errLock sync.Mutex
	err     error

	cur     []byte
	payload int
}

// NewPackets creates a Packets transport.
func NewPackets(rw PacketReadWriter) *Packets {
	return &Packets{
		ReadWriter: rw,
		Timeout:    2 * time.Second,
		packetCh:   make(chan []byte, 16),
	}
}

// Start spawns the receiving goroutine. It's called on first use.
func (p *Packets) Start() *Packets {
	p.startOnce.Do(func() { go p.receive() })
	return p
}

// Err returns the error which stopped receiving.
func (p *Packets) Err() error {
	p.errLock.Lock()
	defer p.errLock.Unlock()
	return p.err
}

func (p *Packets) receive() {
	defer close(p.packetCh)
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			if err != io.EOF {
				glog.Warningf("receive packet: %v", err)
			}
			p.errLock.Lock()
			p.err = err
			p.errLock.Unlock()
			return
		}
		if len(pkt) > 0 {
			p.packetCh <- pkt
		}
	}
}

// Write implements shtp.Transport.
func (p *Packets) Write(b []byte) error {
	p.Start()
	return p.ReadWriter.WritePacket(b)
}

// DataReady implements shtp.Transport.
func (p *Packets) DataReady() bool {
	p.Start()
	if p.payload > 0 || len(p.cur) > 0 {
		return true
	}
	select {
	case pkt, ok := <-p.packetCh:
		if ok {
			p.cur = pkt
			return true
		}
	default:
	}
	return false
}

// ReadExact implements shtp.Transport.
// A read right after a header returns the payload of that packet,
// otherwise the read starts at the next packet.
func (p *Packets) ReadExact(n int) ([]byte, error) {
	p.Start()
	if p.payload == 0 && len(p.cur) == 0 {
		select {
		case pkt, ok := <-p.packetCh:
			if !ok {
				if err := p.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			p.cur = pkt
		case <-time.After(p.Timeout):
			return nil, ErrReadTimeout
		}
	}
	expectPayload := p.payload > 0
	p.payload = 0
	if have := len(p.cur); n > have {
		p.cur = nil
		return nil, fmt.Errorf("need %d bytes, packet has %d", n, have)
	}
	b := p.cur[:n]
	if p.cur = p.cur[n:]; !expectPayload && n == shtp.HeaderSize {
		if h, err := shtp.ParseHeader(b); err == nil && !h.IsError() {
			p.payload = h.DataLength()
		}
	}
	if p.payload == 0 {
		p.cur = nil
	}
	return b, nil
}
