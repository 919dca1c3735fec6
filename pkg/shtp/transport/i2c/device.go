// Package i2c talks to the hub over a Linux i2c-dev bus.
package i2c

import (
	"errors"
	"fmt"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// DefaultAddress is the default 7-bit address of the hub.
const DefaultAddress = 0x4a

// Bus is a raw I2C connection to a single target.
// Every Read is a separate bus transaction.
type Bus interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// ErrShortRead indicates a transaction returned less than requested.
var ErrShortRead = errors.New("short read")

// Device implements shtp.Transport over I2C.
// The hub restarts each read transaction from the packet header, so
// the payload is read together with its header which is then dropped.
type Device struct {
	Bus Bus

	header  []byte
	payload int
}

// NewDevice creates a Device on an opened bus.
func NewDevice(bus Bus) *Device {
	return &Device{Bus: bus}
}

// Close closes the bus.
func (d *Device) Close() error {
	return d.Bus.Close()
}

// Write implements shtp.Transport.
func (d *Device) Write(b []byte) error {
	n, err := d.Bus.Write(b)
	if err == nil && n != len(b) {
		err = fmt.Errorf("wrote %d of %d bytes", n, len(b))
	}
	return err
}

// DataReady implements shtp.Transport.
// It peeks the header, which is kept for the next header read.
func (d *Device) DataReady() bool {
	if d.header != nil || d.payload > 0 {
		return true
	}
	buf, err := d.read(shtp.HeaderSize)
	if err != nil {
		return false
	}
	h, _ := shtp.ParseHeader(buf)
	if h.IsError() || h.ByteCount == 0x7fff || h.DataLength() == 0 {
		return false
	}
	d.header = buf
	return true
}

// ReadExact implements shtp.Transport.
func (d *Device) ReadExact(n int) ([]byte, error) {
	if d.payload > 0 {
		size := d.payload
		d.payload = 0
		if n != size {
			return nil, fmt.Errorf("expect payload of %d bytes, asked %d", size, n)
		}
		buf, err := d.read(shtp.HeaderSize + n)
		if err != nil {
			return nil, err
		}
		return buf[shtp.HeaderSize:], nil
	}
	if n != shtp.HeaderSize {
		return d.read(n)
	}
	buf := d.header
	d.header = nil
	if buf == nil {
		var err error
		if buf, err = d.read(shtp.HeaderSize); err != nil {
			return nil, err
		}
	}
	if h, err := shtp.ParseHeader(buf); err == nil && !h.IsError() {
		d.payload = h.DataLength()
	}
	return buf, nil
}

func (d *Device) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	r, err := d.Bus.Read(buf)
	if err != nil {
		return nil, err
	}
	if r < n {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrShortRead, r, n)
	}
	return buf, nil
}
