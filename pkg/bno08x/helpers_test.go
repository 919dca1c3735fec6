package bno08x

import (
	"encoding/binary"
	"time"

	"github.com/robotalks/imu.go/pkg/shtp"
	"github.com/robotalks/imu.go/pkg/shtp/shtptest"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// hub emulates the responses of a sensor hub.
type hub struct {
	*shtptest.Transport

	silent   map[ReportID]bool
	noReset  bool
	statuses map[byte]byte
	seq      uint8
}

func newHub() *hub {
	h := &hub{
		Transport: shtptest.New(),
		silent:    make(map[ReportID]bool),
		statuses:  make(map[byte]byte),
	}
	h.Responder = h.respond
	return h
}

func (h *hub) packet(ch shtp.Channel, data ...byte) []byte {
	h.seq++
	return shtp.NewPacket(ch, h.seq, data).Bytes()
}

// push queues an inbound packet.
func (h *hub) push(ch shtp.Channel, data ...byte) {
	h.Queue(h.packet(ch, data...))
}

func (h *hub) respond(pkt *shtp.Packet) [][]byte {
	switch pkt.Channel {
	case shtp.ChannelExecutable:
		if h.noReset {
			return nil
		}
		return [][]byte{
			h.packet(shtp.ChannelCommand, 0x00, 0x01, 0x02, 0x03),
			h.packet(shtp.ChannelExecutable, 0x01),
		}
	case shtp.ChannelControl:
	default:
		return nil
	}
	id := ReportID(pkt.Data[0])
	if h.silent[id] {
		return nil
	}
	switch id {
	case ReportProductIDRequest:
		return [][]byte{h.packet(shtp.ChannelControl, productIDResponse()...)}
	case ReportSetFeatureCommand:
		resp := make([]byte, 17)
		resp[0] = byte(ReportGetFeatureResp)
		copy(resp[1:], pkt.Data[1:])
		return [][]byte{h.packet(shtp.ChannelControl, resp...)}
	case ReportCommandRequest:
		cmd := pkt.Data[2]
		resp := make([]byte, 16)
		resp[0], resp[1], resp[2], resp[3] = byte(ReportCommandResponse), h.seq, cmd, pkt.Data[1]
		resp[5] = h.statuses[cmd]
		if cmd == CommandMECalibrate {
			copy(resp[6:9], pkt.Data[3:6])
		}
		return [][]byte{h.packet(shtp.ChannelControl, resp...)}
	}
	return nil
}

func productIDResponse() []byte {
	b := make([]byte, 16)
	b[0], b[2], b[3] = byte(ReportProductIDResponse), 3, 2
	binary.LittleEndian.PutUint32(b[4:], 10004563)
	binary.LittleEndian.PutUint32(b[8:], 358)
	binary.LittleEndian.PutUint16(b[12:], 7)
	return b
}

// sensorReport encodes a sensor report with int16 values at offset 4.
func sensorReport(id ReportID, size int, status byte, values ...int16) []byte {
	b := make([]byte, size)
	b[0], b[2] = byte(id), status
	for n, v := range values {
		binary.LittleEndian.PutUint16(b[4+n*2:], uint16(v))
	}
	return b
}

func newTestClient(h *hub) (*Client, *fakeClock) {
	clk := newFakeClock()
	c := New(h)
	c.Clock = clk
	return c, clk
}

func readyClient(h *hub) (*Client, *fakeClock) {
	c, clk := newTestClient(h)
	if err := c.Initialize(); err != nil {
		panic(err)
	}
	return c, clk
}
