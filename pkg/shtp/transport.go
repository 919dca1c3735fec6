package shtp

// Transport moves raw bytes to and from the sensor hub.
type Transport interface {
	// Write sends one complete encoded packet.
	Write(p []byte) error
	// ReadExact reads exactly n bytes of the inbound stream.
	ReadExact(n int) ([]byte, error)
	// DataReady reports whether the hub has a packet pending.
	DataReady() bool
}

// ResetLine drives the hardware reset pin of the hub.
type ResetLine interface {
	SetReset(high bool) error
}

// Direction tells which way a packet travels.
type Direction int

// Directions.
const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "OUT"
	}
	return "IN"
}

// Tracer observes packets passing through a driver.
type Tracer interface {
	TracePacket(Direction, *Packet)
}

// WritePacket encodes and writes a packet.
func WritePacket(t Transport, pkt *Packet) error {
	return t.Write(pkt.Bytes())
}
