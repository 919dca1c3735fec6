package shtp

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming indicates a packet header is malformed or the packet
	// can't be fully read. The packet should be discarded.
	ErrFraming = errors.New("shtp framing error")
	// ErrNoPacket indicates the hub has nothing to send.
	ErrNoPacket = errors.New("no packet available")
)

// TruncatedBatchError is reported when the remaining bytes of a batch
// are fewer than the length of the report they start with.
type TruncatedBatchError struct {
	ID     ReportID
	Offset int
	Need   int
	Have   int
}

// Error implements error.
func (e *TruncatedBatchError) Error() string {
	return fmt.Sprintf("truncated report 0x%02x at %d: need %d bytes, have %d",
		byte(e.ID), e.Offset, e.Need, e.Have)
}

// UnknownReportError is reported when a batch contains a report ID
// without a known length.
type UnknownReportError struct {
	ID     ReportID
	Offset int
}

// Error implements error.
func (e *UnknownReportError) Error() string {
	return fmt.Sprintf("unknown report 0x%02x at %d", byte(e.ID), e.Offset)
}
