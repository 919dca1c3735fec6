// Package uart implements UART-SHTP, the framing used by the hub on its
// serial interface.
package uart

// A frame is
//
//	0x7E PROTOCOL DATA... 0x7E
//
// where 0x7E and 0x7D inside PROTOCOL and DATA are sent as 0x7D, byte^0x20.
// PROTOCOL is 0x01 for SHTP packets and 0x00 for buffer status queries.
// Consecutive frames may share or repeat the flag byte.

const (
	flagByte   byte = 0x7e
	escapeByte byte = 0x7d
	escapeXor  byte = 0x20

	// ProtocolBSQ is the buffer status query protocol.
	ProtocolBSQ byte = 0x00
	// ProtocolSHTP carries SHTP packets.
	ProtocolSHTP byte = 0x01

	maxFrameSize = 32768
)

// Frame is a decoded UART frame.
type Frame struct {
	Protocol byte
	Data     []byte
}

// Encode escapes data into a frame.
func Encode(protocol byte, data []byte) []byte {
	b := make([]byte, 0, len(data)+4)
	b = append(b, flagByte)
	b = appendEscaped(b, protocol)
	for _, c := range data {
		b = appendEscaped(b, c)
	}
	return append(b, flagByte)
}

func appendEscaped(b []byte, c byte) []byte {
	if c == flagByte || c == escapeByte {
		return append(b, escapeByte, c^escapeXor)
	}
	return append(b, c)
}

type decodeState int

const (
	stateHunt     decodeState = iota // waiting for a flag
	stateProtocol                    // flag seen, waiting for protocol
	stateData                        // receiving data
)

// Decoder parses bytes received into frames.
type Decoder struct {
	state   decodeState
	escaped bool
	frame   *Frame
}

// Reset drops any partial frame and waits for the next flag.
func (d *Decoder) Reset() {
	d.state, d.escaped, d.frame = stateHunt, false, nil
}

// Decode consumes one byte, a complete frame is returned when the closing
// flag is received. Frames with a bad escape sequence are dropped.
func (d *Decoder) Decode(b byte) *Frame {
	if b == flagByte {
		return d.flag()
	}
	if d.state == stateHunt {
		return nil
	}
	if b == escapeByte {
		if d.escaped {
			d.Reset()
			return nil
		}
		d.escaped = true
		return nil
	}
	if d.escaped {
		b ^= escapeXor
		d.escaped = false
	}
	switch d.state {
	case stateProtocol:
		d.frame = &Frame{Protocol: b}
		d.state = stateData
	case stateData:
		if len(d.frame.Data) >= maxFrameSize {
			d.Reset()
			return nil
		}
		d.frame.Data = append(d.frame.Data, b)
	}
	return nil
}

func (d *Decoder) flag() (frame *Frame) {
	if d.state == stateData && !d.escaped {
		frame = d.frame
	}
	d.state, d.escaped, d.frame = stateProtocol, false, nil
	return
}
