package mtproto

import "time"

// MsgIDs generates strictly monotonically increasing msg_ids: the upper
// 32 bits are unix seconds, the lower 32 bits are (nanoseconds << 2).
// Client-generated ids are therefore divisible by 4. A call that lands
// in the same instant as the previous one (or earlier) advances by 4
// instead of reusing it, so ids stay strictly increasing and divisible
// by 4.
type MsgIDs struct {
	last int64
}

// Last returns the most recently issued msg_id, or zero if none has
// been issued yet.
func (m *MsgIDs) Last() int64 { return m.last }

// Next returns the msg_id for the given instant.
func (m *MsgIDs) Next(t time.Time) int64 {
	secs := t.Unix()
	nanos := int64(t.Nanosecond())
	id := secs<<32 | (nanos << 2)

	if m.last >= id {
		m.last += 4
	} else {
		m.last = id
	}
	return m.last
}

// NextNow is Next(time.Now()).
func (m *MsgIDs) NextNow() int64 { return m.Next(time.Now()) }

// Rebase advances the generator's floor to serverMsgID, used when the
// server reports (via bad_msg_notification) that the client's clock
// produced a msg_id outside its acceptable window. Subsequent Next
// calls are guaranteed to exceed it.
func (m *MsgIDs) Rebase(serverMsgID int64) {
	if serverMsgID > m.last {
		m.last = serverMsgID
	}
}

// SeqNos tracks the content-related message counter k: content-related
// messages get seq_no = 2k+1 and increment k; non-content-related
// messages get seq_no = 2k without incrementing.
type SeqNos struct {
	k int32
}

// NextContentRelated returns 2k+1 and increments k.
func (s *SeqNos) NextContentRelated() int32 {
	seq := 2*s.k + 1
	s.k++
	return seq
}

// NonContentRelated returns 2k without incrementing k.
func (s *SeqNos) NonContentRelated() int32 {
	return 2 * s.k
}
