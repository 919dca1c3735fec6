package uart

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// DefaultBaudRate is the UART-SHTP baud rate of the hub.
const DefaultBaudRate = 3000000

// PortOptions configures the serial port.
type PortOptions struct {
	BaudRate int
}

// SerialMode converts the options for go.bug.st/serial.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	baud := o.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	if baud < 0 {
		return nil, fmt.Errorf("invalid baud rate %d", baud)
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}, nil
}

// ReadWriter implements PacketReadWriter over a UART-SHTP byte stream.
type ReadWriter struct {
	Port io.ReadWriter

	dec  Decoder
	buf  [256]byte
	data []byte
}

// New creates a ReadWriter on an opened port.
func New(port io.ReadWriter) *ReadWriter {
	return &ReadWriter{Port: port}
}

// Open opens a serial port.
func Open(path string, opts PortOptions) (*ReadWriter, io.Closer, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, nil, err
	}
	return New(port), port, nil
}

// ReadPacket implements PacketReader.
// Frames of other protocols are skipped.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	for {
		for len(p.data) > 0 {
			b := p.data[0]
			p.data = p.data[1:]
			frame := p.dec.Decode(b)
			if frame == nil {
				continue
			}
			if frame.Protocol != ProtocolSHTP {
				glog.V(2).Infof("skip UART frame protocol %d", frame.Protocol)
				continue
			}
			if len(frame.Data) < shtp.HeaderSize {
				glog.V(2).Infof("skip short UART frame of %d bytes", len(frame.Data))
				continue
			}
			return frame.Data, nil
		}
		n, err := p.Port.Read(p.buf[:])
		if err != nil {
			return nil, err
		}
		p.data = p.buf[:n]
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	_, err := p.Port.Write(Encode(ProtocolSHTP, pkt))
	return err
}
