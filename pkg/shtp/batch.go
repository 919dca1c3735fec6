package shtp

import "fmt"

// ReportID identifies a report inside a packet payload.
type ReportID uint8

// IsControl indicates the report is a control report (0xF0 and above)
// rather than a sensor report.
func (id ReportID) IsControl() bool {
	return id >= 0xf0
}

func (id ReportID) String() string {
	return fmt.Sprintf("0x%02x", byte(id))
}

// Catalog provides the fixed length of each report.
type Catalog interface {
	ReportLength(ReportID) (int, bool)
}

// ReportSlice is a single report split from a batch.
// Data aliases the packet payload and starts with the report ID.
type ReportSlice struct {
	ID   ReportID
	Data []byte
}

// Split walks a batch and returns the reports in the order they were
// produced by the hub, oldest first.
// The slices found before a problem are always returned, along with a
// *TruncatedBatchError or *UnknownReportError describing the problem.
func Split(payload []byte, catalog Catalog) (slices []ReportSlice, err error) {
	for offset := 0; offset < len(payload); {
		id := ReportID(payload[offset])
		size, ok := catalog.ReportLength(id)
		if !ok || size <= 0 {
			return slices, &UnknownReportError{ID: id, Offset: offset}
		}
		if remain := len(payload) - offset; remain < size {
			return slices, &TruncatedBatchError{ID: id, Offset: offset, Need: size, Have: remain}
		}
		slices = append(slices, ReportSlice{ID: id, Data: payload[offset : offset+size]})
		offset += size
	}
	return
}
