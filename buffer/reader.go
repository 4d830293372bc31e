package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned by the Reader helpers when fewer bytes
// remain than the value being read requires.
var ErrShortBuffer = errors.New("buffer: short buffer")

// Reader walks a byte slice left to right, the deserialize-side
// counterpart to Buffer's typed append helpers.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the bytes not yet consumed.
func (r *Reader) Remaining() []byte { return r.buf[r.pos:] }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, ErrShortBuffer
	}
	p := r.buf[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

func (r *Reader) U32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *Reader) Int128() (Int128, error) {
	var v Int128
	p, err := r.take(16)
	if err != nil {
		return v, err
	}
	copy(v[:], p)
	return v, nil
}

func (r *Reader) Int256() (Int256, error) {
	var v Int256
	p, err := r.take(32)
	if err != nil {
		return v, err
	}
	copy(v[:], p)
	return v, nil
}

// ByteString reads the protocol's length-prefixed, 4-byte-aligned byte
// string framing, the inverse of Buffer.AppendByteString.
func (r *Reader) ByteString() ([]byte, error) {
	if r.Len() < 4 {
		return nil, ErrShortBuffer
	}
	l := r.buf[r.pos]
	if l <= 253 {
		total := ByteStringLen(int(l))
		p, err := r.take(total)
		if err != nil {
			return nil, err
		}
		out := make([]byte, l)
		copy(out, p[1:1+int(l)])
		return out, nil
	}

	n := int(p24(r.buf[r.pos+1], r.buf[r.pos+2], r.buf[r.pos+3]))
	total := ByteStringLen(n)
	p, err := r.take(total)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p[4:4+n])
	return out, nil
}

func p24(b0, b1, b2 byte) uint32 {
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16
}

// String reads a ByteString and interprets it as UTF-8.
func (r *Reader) String() (string, error) {
	p, err := r.ByteString()
	if err != nil {
		return "", err
	}
	return string(p), nil
}
