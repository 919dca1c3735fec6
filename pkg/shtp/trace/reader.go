package trace

import (
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// Filter selects records, empty fields match all.
type Filter struct {
	Session   string
	Direction *shtp.Direction
	Channel   *shtp.Channel
}

func (f *Filter) matches(r *Record) bool {
	if f.Session != "" && r.Session != f.Session {
		return false
	}
	if f.Direction != nil && r.Direction != *f.Direction {
		return false
	}
	if f.Channel != nil && shtp.Channel(r.Channel) != *f.Channel {
		return false
	}
	return true
}

// Reader iterates records in a trace.
type Reader struct {
	Filter Filter

	src     io.Reader
	decoder *cbor.Decoder
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r, decoder: NewDecoder(r)}
}

// Open opens a trace file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f), nil
}

// Next returns the next matching record, io.EOF at the end.
func (r *Reader) Next() (*Record, error) {
	for {
		var rec Record
		if err := r.decoder.Decode(&rec); err != nil {
			return nil, err
		}
		if r.Filter.matches(&rec) {
			return &rec, nil
		}
	}
}

// Close closes the source if it's an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
