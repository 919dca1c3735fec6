// Package stream reads and writes SHTP packets on a plain byte stream,
// e.g. a TCP connection to a serial bridge or a pipe.
package stream

import (
	"io"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// ReadWriter implements PacketReadWriter.
// Packets are delimited by the byte count in their own header.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
// A header with no data or an error header is returned on its own.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	head := make([]byte, shtp.HeaderSize)
	if _, err := io.ReadFull(p, head); err != nil {
		return nil, err
	}
	h, err := shtp.ParseHeader(head)
	if err != nil {
		return nil, err
	}
	if h.IsError() || h.DataLength() == 0 {
		return head, nil
	}
	pkt := make([]byte, shtp.HeaderSize+h.DataLength())
	copy(pkt, head)
	_, err = io.ReadFull(p, pkt[shtp.HeaderSize:])
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	_, err := p.Write(pkt)
	return err
}
