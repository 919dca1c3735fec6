// Package trace captures SHTP packets into CBOR files and reads them back.
package trace

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// Record is one captured packet.
// CBOR encoding uses integer keys for compactness.
type Record struct {
	Timestamp time.Time      `cbor:"1,keyasint"`
	Session   string         `cbor:"2,keyasint"`
	Direction shtp.Direction `cbor:"3,keyasint"`
	Channel   uint8          `cbor:"4,keyasint"`
	Seq       uint8          `cbor:"5,keyasint"`
	Data      []byte         `cbor:"6,keyasint,omitempty"`
}

// Packet rebuilds the packet.
func (r *Record) Packet() *shtp.Packet {
	return shtp.NewPacket(shtp.Channel(r.Channel), r.Seq, r.Data)
}

func (r *Record) String() string {
	return fmt.Sprintf("%s %s %s", r.Timestamp.Format("15:04:05.000000"), r.Direction, r.Packet())
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("trace encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("trace decoder mode: %v", err))
	}
}

// EncodeRecord encodes a Record.
func EncodeRecord(r Record) ([]byte, error) {
	return encMode.Marshal(r)
}

// DecodeRecord decodes a Record.
func DecodeRecord(data []byte) (r Record, err error) {
	err = decMode.Unmarshal(data, &r)
	return
}

// NewEncoder creates a record encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a record decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
