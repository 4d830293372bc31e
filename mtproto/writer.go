package mtproto

import (
	"io"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/envelope"
	"github.com/dimentyy/hungry-go/transport"
)

// Writer packs a single payload into a Full-variant frame and writes it
// to dst. Use QueuedWriter when several payloads must be batched and
// their spare-capacity fragments reused across writes.
type Writer struct {
	dst  io.Writer
	full *transport.Full
}

// NewWriter returns a Writer that frames payloads onto dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst, full: transport.NewFull()}
}

// Write frames payload and writes it to dst in one call.
func (w *Writer) Write(payload []byte) error {
	size := transport.EnvelopeSize{}.Header() + len(payload) + transport.EnvelopeSize{}.Footer()
	buf := buffer.New(size)
	env := envelope.Split(buf, transport.EnvelopeSize{})
	buf.Append(payload)

	frame, _ := w.full.Pack(buf, env)
	_, err := w.dst.Write(frame)
	return err
}

// QueuedWriter buffers outbound payloads in a FIFO and writes them to
// dst on Flush, one frame per payload, reusing the previous frame's
// leftover spare-capacity fragment instead of reallocating it every
// time.
type QueuedWriter struct {
	dst    io.Writer
	full   *transport.Full
	queue  [][]byte
	excess *buffer.Buffer
}

// NewQueuedWriter returns an empty QueuedWriter that frames payloads
// onto dst.
func NewQueuedWriter(dst io.Writer) *QueuedWriter {
	return &QueuedWriter{dst: dst, full: transport.NewFull()}
}

// Enqueue appends payload to the outbound queue without writing it.
func (w *QueuedWriter) Enqueue(payload []byte) {
	w.queue = append(w.queue, payload)
}

// Pending reports how many payloads remain queued.
func (w *QueuedWriter) Pending() int { return len(w.queue) }

// Flush packs and writes every queued payload in order. On a write
// error, the remaining queue is left intact so the caller can retry.
func (w *QueuedWriter) Flush() error {
	for len(w.queue) > 0 {
		payload := w.queue[0]

		size := transport.EnvelopeSize{}.Header() + len(payload) + transport.EnvelopeSize{}.Footer()
		var buf *buffer.Buffer
		if w.excess != nil && w.excess.Cap() >= size {
			buf = w.excess
			buf.SetZeroLen()
		} else {
			buf = buffer.New(size)
		}

		env := envelope.Split(buf, transport.EnvelopeSize{})
		buf.Append(payload)

		frame, excess := w.full.Pack(buf, env)
		if _, err := w.dst.Write(frame); err != nil {
			w.excess = excess
			return err
		}

		w.excess = excess
		w.queue = w.queue[1:]
	}
	return nil
}
