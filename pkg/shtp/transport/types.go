// Package transport adapts byte and message channels to shtp.Transport.
package transport

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
// Each packet is one complete SHTP packet, header included.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
