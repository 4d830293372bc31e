package mtproto

import (
	"io"

	"github.com/dimentyy/hungry-go/transport"
)

// Reader drives an io.Reader through a Full-variant transport, growing
// an internal buffer as frames demand, and produces one decoded Message
// per complete frame. It is not goroutine-safe; Next must not be called
// concurrently.
type Reader struct {
	src  io.Reader
	full *transport.Full
	buf  []byte
	have int
}

// NewReader returns a Reader that reads Full-variant frames from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		full: transport.NewFull(),
		buf:  make([]byte, transport.DefaultBufLen),
	}
}

func (r *Reader) fill(n int) error {
	if len(r.buf) < n {
		grown := make([]byte, n)
		copy(grown, r.buf[:r.have])
		r.buf = grown
	}
	for r.have < n {
		k, err := r.src.Read(r.buf[r.have:])
		r.have += k
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) consume(n int) {
	copy(r.buf, r.buf[n:r.have])
	r.have -= n
}

// Next blocks until one complete frame has arrived and returns its
// decoded Message. A transport-level error (bad length, bad seq, bad
// crc) is returned as *transport.Error; the buffer is discarded
// entirely on any such error, StatusCode and BadLen included, since
// none of them leave the stream at a recoverable frame boundary.
func (r *Reader) Next() (Message, error) {
	for {
		outcome := r.full.Unpack(r.buf[:r.have])
		if outcome.NeedMore > 0 {
			if err := r.fill(outcome.NeedMore); err != nil {
				return Message{}, err
			}
			continue
		}

		if outcome.Err != nil {
			r.have = 0
			return Message{}, outcome.Err
		}

		if outcome.Result.Kind == transport.UnpackQuickAck {
			r.have = 0
			return Message{}, ErrUnexpectedQuickAck
		}

		data := append([]byte(nil), outcome.Result.Packet.Data...)
		r.consume(len(data) + 12)
		return UnpackMessage(data)
	}
}
