package trace

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// Writer implements shtp.Tracer and appends every packet as a Record.
// It is safe for concurrent use.
type Writer struct {
	Session string
	Now     func() time.Time

	lock    sync.Mutex
	out     io.Writer
	encoder *cbor.Encoder
	closed  bool
	failed  bool
}

// NewWriter creates a Writer with a new session ID.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Session: uuid.New().String(),
		Now:     time.Now,
		out:     w,
		encoder: NewEncoder(w),
	}
}

// Create opens a trace file for appending.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewWriter(f), nil
}

// TracePacket implements shtp.Tracer.
// Encoding errors are logged once and never fail the driver.
func (w *Writer) TracePacket(dir shtp.Direction, pkt *shtp.Packet) {
	rec := Record{
		Timestamp: w.Now(),
		Session:   w.Session,
		Direction: dir,
		Channel:   uint8(pkt.Channel),
		Seq:       pkt.Seq,
		Data:      append([]byte(nil), pkt.Data...),
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return
	}
	if err := w.encoder.Encode(rec); err != nil && !w.failed {
		w.failed = true
		glog.Errorf("trace packet: %v", err)
	}
}

// Close closes the underlying writer if it's an io.Closer.
// Later packets are ignored.
func (w *Writer) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if c, ok := w.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ shtp.Tracer = (*Writer)(nil)
