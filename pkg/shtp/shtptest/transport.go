// Package shtptest provides an in-memory sensor hub for tests.
package shtptest

import (
	"errors"
	"sync"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// ErrEmpty is returned when reading with nothing queued.
var ErrEmpty = errors.New("no data queued")

// Responder is called for every packet written to the Transport.
// Packets it returns are queued for reading.
type Responder func(pkt *shtp.Packet) [][]byte

// Transport is a fake shtp.Transport.
// Inbound bytes are queued as whole packets and read back in order.
type Transport struct {
	Responder Responder
	WriteErr  error

	lock    sync.Mutex
	pending [][]byte
	cur     []byte
	payload int
	written []*shtp.Packet
}

// New creates a Transport.
func New() *Transport {
	return &Transport{}
}

// Queue appends raw inbound packets.
func (t *Transport) Queue(raw ...[]byte) *Transport {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, b := range raw {
		t.pending = append(t.pending, append([]byte(nil), b...))
	}
	return t
}

// QueuePacket encodes and appends an inbound packet.
func (t *Transport) QueuePacket(ch shtp.Channel, seq uint8, data ...byte) *Transport {
	return t.Queue(shtp.NewPacket(ch, seq, data).Bytes())
}

// Write implements shtp.Transport.
func (t *Transport) Write(p []byte) error {
	if t.WriteErr != nil {
		return t.WriteErr
	}
	h, err := shtp.ParseHeader(p)
	if err != nil {
		return err
	}
	pkt := &shtp.Packet{Header: h, Data: append([]byte(nil), p[shtp.HeaderSize:]...)}
	t.lock.Lock()
	t.written = append(t.written, pkt)
	t.lock.Unlock()
	if t.Responder != nil {
		t.Queue(t.Responder(pkt)...)
	}
	return nil
}

// ReadExact implements shtp.Transport.
// A read following a complete header returns that packet's payload,
// any other read starts the next queued packet, as an I2C hub does.
func (t *Transport) ReadExact(n int) ([]byte, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.payload == 0 {
		if len(t.pending) == 0 {
			t.cur = nil
			return nil, ErrEmpty
		}
		t.cur, t.pending = t.pending[0], t.pending[1:]
	}
	t.payload = 0
	if n > len(t.cur) {
		t.cur = nil
		return nil, ErrEmpty
	}
	b := t.cur[:n]
	t.cur = t.cur[n:]
	if h, err := shtp.ParseHeader(b); err == nil && n == shtp.HeaderSize && !h.IsError() {
		t.payload = h.DataLength()
	}
	return b, nil
}

// DataReady implements shtp.Transport.
func (t *Transport) DataReady() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.payload > 0 || len(t.pending) > 0
}

// Written returns the packets written so far.
func (t *Transport) Written() []*shtp.Packet {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]*shtp.Packet(nil), t.written...)
}

// WrittenOn returns the packets written to a channel.
func (t *Transport) WrittenOn(ch shtp.Channel) (pkts []*shtp.Packet) {
	for _, pkt := range t.Written() {
		if pkt.Channel == ch {
			pkts = append(pkts, pkt)
		}
	}
	return
}

// Pending returns the number of inbound packets not read yet.
func (t *Transport) Pending() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	n := len(t.pending)
	if t.payload > 0 {
		n++
	}
	return n
}

// ResetLine records reset pin levels.
type ResetLine struct {
	Levels []bool
}

// SetReset implements shtp.ResetLine.
func (r *ResetLine) SetReset(high bool) error {
	r.Levels = append(r.Levels, high)
	return nil
}
