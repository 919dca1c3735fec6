package trace

import (
	"io"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// Replay is a PacketReadWriter feeding the inbound packets of a trace.
// Outbound packets are discarded, so a driver can run against a capture
// with transport.NewPackets.
type Replay struct {
	Reader *Reader
}

// NewReplay creates a Replay on a Reader.
func NewReplay(r *Reader) *Replay {
	in := shtp.Inbound
	r.Filter.Direction = &in
	return &Replay{Reader: r}
}

// ReadPacket implements PacketReader.
func (r *Replay) ReadPacket() ([]byte, error) {
	rec, err := r.Reader.Next()
	if err != nil {
		return nil, err
	}
	return rec.Packet().Bytes(), nil
}

// WritePacket implements PacketWriter.
func (r *Replay) WritePacket([]byte) error {
	return nil
}

// Close closes the reader.
func (r *Replay) Close() error {
	return r.Reader.Close()
}

var _ io.Closer = (*Replay)(nil)
