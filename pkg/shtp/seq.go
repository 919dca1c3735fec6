package shtp

// SequenceTracker keeps the sequence numbers of a session.
// All counters wrap at 256 and start at zero.
type SequenceTracker struct {
	outbound [256]uint8
	inbound  [256]uint8
	send     [256]uint8
	received [256]uint8
}

// Next returns the sequence number for the next packet sent on ch
// and advances the counter.
func (t *SequenceTracker) Next(ch Channel) uint8 {
	seq := t.outbound[ch]
	t.outbound[ch] = seq + 1
	return seq
}

// Peek returns the sequence number the next packet on ch will use.
func (t *SequenceTracker) Peek(ch Channel) uint8 {
	return t.outbound[ch]
}

// Received records the sequence number of an inbound packet.
func (t *SequenceTracker) Received(h Header) {
	t.inbound[h.Channel] = h.Seq
}

// LastReceived returns the last inbound sequence number on ch.
func (t *SequenceTracker) LastReceived(ch Channel) uint8 {
	return t.inbound[ch]
}

// ReportSeq returns the two-ended sequence number to be sent with the
// next report of the given ID.
func (t *SequenceTracker) ReportSeq(id ReportID) uint8 {
	return t.send[id]
}

// AdvanceReportSeq moves the two-ended send counter of id forward.
func (t *SequenceTracker) AdvanceReportSeq(id ReportID) {
	t.send[id]++
}

// ReportReceived records a two-ended sequence number received from the hub.
func (t *SequenceTracker) ReportReceived(id ReportID, seq uint8) {
	t.received[id] = seq
}

// LastReportReceived returns the last two-ended sequence number received for id.
func (t *SequenceTracker) LastReportReceived(id ReportID) uint8 {
	return t.received[id]
}

// Reset clears all counters.
func (t *SequenceTracker) Reset() {
	*t = SequenceTracker{}
}
