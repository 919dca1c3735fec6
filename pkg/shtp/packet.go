package shtp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Channel is an SHTP channel number.
type Channel uint8

// Channels defined by the sensor hub.
const (
	ChannelCommand Channel = iota
	ChannelExecutable
	ChannelControl
	ChannelInputReports
	ChannelWakeReports
	ChannelGyroRotationVector

	// MaxChannel is the highest valid channel number.
	MaxChannel = ChannelGyroRotationVector
)

var channelNames = [...]string{
	"SHTP_COMMAND",
	"EXE",
	"CONTROL",
	"INPUT_SENSOR_REPORTS",
	"WAKE_INPUT_SENSOR_REPORTS",
	"GYRO_ROTATION_VECTOR",
}

func (c Channel) String() string {
	if c <= MaxChannel {
		return channelNames[c]
	}
	return fmt.Sprintf("CHANNEL(%d)", byte(c))
}

// HeaderSize is the size of an encoded packet header.
const HeaderSize = 4

const (
	continuationBit = 0x8000
	errorByteCount  = 0xffff
	errorSeq        = 0xff
)

// Header is the decoded packet header.
type Header struct {
	// ByteCount is the total packet size with the continuation bit masked.
	ByteCount uint16
	// Raw is the byte count word as found on the wire.
	Raw     uint16
	Channel Channel
	Seq     uint8
}

// ParseHeader decodes the header at the start of buf.
func ParseHeader(buf []byte) (h Header, err error) {
	if len(buf) < HeaderSize {
		return h, fmt.Errorf("%w: header needs %d bytes, got %d", ErrFraming, HeaderSize, len(buf))
	}
	h.Raw = binary.LittleEndian.Uint16(buf)
	h.ByteCount = h.Raw &^ continuationBit
	h.Channel, h.Seq = Channel(buf[2]), buf[3]
	return
}

// Continuation indicates the packet continues a previous one.
func (h Header) Continuation() bool {
	return h.Raw&continuationBit != 0
}

// DataLength is the payload size, never negative.
func (h Header) DataLength() int {
	if h.ByteCount < HeaderSize {
		return 0
	}
	return int(h.ByteCount) - HeaderSize
}

// IsError indicates the header doesn't describe a usable packet.
func (h Header) IsError() bool {
	if h.Channel > MaxChannel {
		return true
	}
	return h.Raw == errorByteCount && h.Seq == errorSeq
}

// Put encodes the header into buf which must hold at least HeaderSize bytes.
func (h Header) Put(buf []byte) {
	binary.LittleEndian.PutUint16(buf, h.Raw)
	buf[2], buf[3] = byte(h.Channel), h.Seq
}

func (h Header) String() string {
	return fmt.Sprintf("%s seq=%d len=%d", h.Channel, h.Seq, h.DataLength())
}

// Packet is a decoded SHTP packet.
type Packet struct {
	Header
	Data []byte
}

// NewPacket builds an outbound packet.
func NewPacket(ch Channel, seq uint8, data []byte) *Packet {
	count := uint16(len(data) + HeaderSize)
	return &Packet{
		Header: Header{ByteCount: count, Raw: count, Channel: ch, Seq: seq},
		Data:   data,
	}
}

// ReportID returns the ID of the first report in the payload.
func (p *Packet) ReportID() (ReportID, bool) {
	if len(p.Data) == 0 {
		return 0, false
	}
	return ReportID(p.Data[0]), true
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	b := make([]byte, HeaderSize+len(p.Data))
	p.Header.Put(b)
	copy(b[HeaderSize:], p.Data)
	return b
}

// WriteTo writes encoded bytes.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// String dumps the packet in a readable form, 4 bytes per row.
func (p *Packet) String() string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", p.Header)
	if id, ok := p.ReportID(); ok {
		fmt.Fprintf(&w, " report=%s", id)
	}
	for n, b := range p.Data {
		if n%4 == 0 {
			fmt.Fprintf(&w, "\n  [0x%02x]", n)
		}
		fmt.Fprintf(&w, " %02x", b)
	}
	return w.String()
}

// ReadPacket reads one packet from the transport.
// The returned payload is a fresh copy.
func ReadPacket(t Transport) (*Packet, error) {
	buf, err := t.ReadExact(HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrFraming, err)
	}
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.IsError() {
		return nil, fmt.Errorf("%w: invalid header %02x", ErrFraming, buf[:HeaderSize])
	}
	if h.ByteCount == 0 {
		return nil, ErrNoPacket
	}
	pkt := &Packet{Header: h}
	if size := h.DataLength(); size > 0 {
		data, err := t.ReadExact(size)
		if err != nil {
			return nil, fmt.Errorf("%w: read %d bytes on %s: %v", ErrFraming, size, h.Channel, err)
		}
		pkt.Data = append([]byte(nil), data...)
	}
	return pkt, nil
}
