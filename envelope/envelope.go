// Package envelope implements the header|payload|footer buffer
// discipline that lets an outer layer reserve fixed-size framing bytes
// around a payload an inner layer fills in, without copying.
package envelope

import "github.com/dimentyy/hungry-go/buffer"

// Size reports the fixed header and footer byte counts for an envelope
// kind.
type Size interface {
	Header() int
	Footer() int
}

// Envelope holds the header and footer regions carved out of a payload
// buffer by Split, to be rejoined by Unsplit once the payload is
// finalized.
type Envelope struct {
	size   Size
	header *buffer.Buffer
	footer *buffer.Buffer
}

// Split carves header and footer regions off buf's full capacity,
// leaving buf as the zero-length middle region the caller fills in.
// Panics if buf's capacity is too small for the envelope.
func Split(buf *buffer.Buffer, size Size) *Envelope {
	if buf.Cap() < size.Header()+size.Footer() {
		panic("envelope: buffer does not have enough capacity")
	}

	buf.SetFullLen()

	header := buf.SplitTo(size.Header())
	footer := buf.SplitOff(buf.Len() - size.Footer())

	buf.SetZeroLen()

	return &Envelope{size: size, header: header, footer: footer}
}

// HeaderBytes and FooterBytes expose the envelope's reserved regions
// for the outer layer to write into. Contents may be uninitialized
// until written.
func (e *Envelope) HeaderBytes() []byte { return e.header.Bytes() }
func (e *Envelope) FooterBytes() []byte { return e.footer.Bytes() }

// Adapt shrinks buf's spare capacity away from the payload so the
// envelope's footer follows the payload tightly; if buf did not fill to
// capacity, the excess between payload and footer is split off and
// returned for the caller to reuse. Must be called before Unsplit.
func (e *Envelope) Adapt(buf *buffer.Buffer) *buffer.Buffer {
	if !e.surrounds(buf) {
		panic("envelope: buffer does not belong to the envelope")
	}

	if !buf.HasSpareCapacity() {
		return nil
	}

	length := buf.Len()

	buf.SetFullLen()
	buf.Unsplit(e.footer)

	e.footer = buf.SplitOff(length)
	excess := e.footer.SplitOff(e.size.Footer())
	excess.SetZeroLen()
	return excess
}

// surrounds reports whether buf lies between the envelope's header and
// footer. A zero-capacity buf has no position of its own to compare, so
// the header must then run straight into the footer.
func (e *Envelope) surrounds(buf *buffer.Buffer) bool {
	if buf.Cap() == 0 {
		return e.header.CanUnsplit(e.footer)
	}
	return e.header.CanUnsplit(buf) && buf.CanUnsplit(e.footer)
}

// Unsplit rejoins header, buf, and footer into a single contiguous
// buffer. A non-nil excess is truncated to zero length before it is
// offered to buf.Unsplit, so its capacity is not joined onto buf: it
// stays a separate buffer the caller may reuse. Panics if the regions
// are not contiguous or buf still has spare capacity — Adapt must run
// first.
func (e *Envelope) Unsplit(buf *buffer.Buffer, excess *buffer.Buffer) {
	if !e.surrounds(buf) {
		panic("envelope: buffer does not belong to the envelope")
	}
	if buf.HasSpareCapacity() {
		panic("envelope: buffer is not full")
	}

	buf.UnsplitReverse(e.header)
	buf.Unsplit(e.footer)

	if excess != nil {
		excess.SetZeroLen()
		if !buf.CanUnsplit(excess) {
			panic("envelope: excess buffer does not belong to the envelope")
		}
		buf.Unsplit(excess)
	}
}
