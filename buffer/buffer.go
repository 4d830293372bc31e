// Package buffer implements the growable byte buffer primitive the rest
// of the module builds its header|payload|footer envelope discipline on
// top of: regions can be split off a shared backing array without
// copying and rejoined later, provided the rejoin is contiguous.
package buffer

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Buffer is a byte buffer that can be split into independent regions
// pointing into the same backing array and later rejoined. Rejoining a
// region that is no longer contiguous with its neighbour (for example
// because one side grew past its bounded capacity and reallocated) is a
// programmer error: it panics rather than silently copying.
type Buffer struct {
	buf []byte
}

// New allocates a Buffer with the given capacity and zero length.
func New(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Wrap adopts an existing slice as a Buffer without copying.
func Wrap(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of valid bytes currently in the buffer.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the buffer's capacity.
func (b *Buffer) Cap() int { return cap(b.buf) }

// IsEmpty reports whether the buffer has zero length.
func (b *Buffer) IsEmpty() bool { return len(b.buf) == 0 }

// SpareCapacityLen returns the number of bytes of unused capacity.
func (b *Buffer) SpareCapacityLen() int { return cap(b.buf) - len(b.buf) }

// HasSpareCapacity reports whether any capacity remains unused.
func (b *Buffer) HasSpareCapacity() bool { return b.SpareCapacityLen() > 0 }

// SetZeroLen truncates the buffer to length zero without touching
// capacity.
func (b *Buffer) SetZeroLen() { b.buf = b.buf[:0] }

// SetFullLen reveals the buffer's entire capacity as its length. The
// newly revealed bytes may hold stale data from a previous use; callers
// must overwrite before reading.
func (b *Buffer) SetFullLen() { b.buf = b.buf[:cap(b.buf)] }

func dataPtr(buf []byte) unsafe.Pointer {
	if cap(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(buf))
}

func endPtr(buf []byte) unsafe.Pointer {
	if cap(buf) == 0 {
		return nil
	}
	return unsafe.Add(dataPtr(buf), cap(buf))
}

// CanUnsplit reports whether other begins exactly where b's capacity
// ends — the precondition Unsplit requires. A zero-length other is
// trivially contiguous: there is nothing to misjoin.
func (b *Buffer) CanUnsplit(other *Buffer) bool {
	if other == nil || len(other.buf) == 0 {
		return true
	}
	return endPtr(b.buf) == dataPtr(other.buf)
}

// SplitTo splits off the first n bytes as an independent Buffer,
// capacity-bounded to n, and advances b past them, retaining the rest of
// the shared array's capacity.
func (b *Buffer) SplitTo(n int) *Buffer {
	if n > len(b.buf) {
		panic("buffer: split_to index out of range")
	}
	left := b.buf[:n:n]
	b.buf = b.buf[n:]
	return &Buffer{buf: left}
}

// SplitOff splits off everything from n onward, retaining the shared
// array's remaining capacity in the returned Buffer; b keeps the first
// n bytes, capacity-bounded to n.
func (b *Buffer) SplitOff(n int) *Buffer {
	if n > len(b.buf) {
		panic("buffer: split_off index out of range")
	}
	right := b.buf[n:]
	b.buf = b.buf[:n:n]
	return &Buffer{buf: right}
}

// Unsplit rejoins other onto the end of b. Panics if the two are not
// contiguous views of the same backing array.
func (b *Buffer) Unsplit(other *Buffer) {
	if other == nil || len(other.buf) == 0 {
		return
	}
	if !b.CanUnsplit(other) {
		panic("buffer: unsplit of non-contiguous storage")
	}
	n := len(b.buf) + len(other.buf)
	b.buf = unsafe.Slice((*byte)(dataPtr(b.buf)), n)
}

// UnsplitReverse rejoins other onto the front of b, where other precedes
// b in the shared backing array.
func (b *Buffer) UnsplitReverse(other *Buffer) {
	if other == nil || len(other.buf) == 0 {
		return
	}
	if !other.CanUnsplit(b) {
		panic("buffer: unsplit_reverse of non-contiguous storage")
	}
	n := len(other.buf) + len(b.buf)
	b.buf = unsafe.Slice((*byte)(dataPtr(other.buf)), n)
}

// Truncate shortens the buffer to n bytes. n must not exceed the
// current length.
func (b *Buffer) Truncate(n int) {
	if n > len(b.buf) {
		panic("buffer: truncate beyond length")
	}
	b.buf = b.buf[:n]
}

// Reserve grows the buffer's backing array if necessary so that at
// least n more bytes of spare capacity are available, copying existing
// contents into a fresh array when it must reallocate. A reallocation
// breaks contiguity with any previously split-off neighbour.
func (b *Buffer) Reserve(n int) {
	if b.SpareCapacityLen() >= n {
		return
	}
	grown := make([]byte, len(b.buf), len(b.buf)+n)
	copy(grown, b.buf)
	b.buf = grown
}

// Append extends the buffer with p, growing the backing array (and
// thereby possibly breaking contiguity with a split-off neighbour) if
// spare capacity is insufficient.
func (b *Buffer) Append(p []byte) {
	b.Reserve(len(p))
	b.buf = append(b.buf, p...)
}

// The typed-append helpers below implement the "writer promises to
// produce exactly serialized_len bytes" contract: each appends a fixed
// number of bytes into spare capacity using little-endian encoding,
// matching the wire format's scalar layout.

func (b *Buffer) AppendU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Append(tmp[:])
}

func (b *Buffer) AppendI32(v int32) { b.AppendU32(uint32(v)) }

func (b *Buffer) AppendU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Append(tmp[:])
}

func (b *Buffer) AppendI64(v int64) { b.AppendU64(uint64(v)) }

func (b *Buffer) AppendF64(v float64) {
	b.AppendU64(math.Float64bits(v))
}

func (b *Buffer) AppendBool(v bool, trueID, falseID uint32) {
	if v {
		b.AppendU32(trueID)
	} else {
		b.AppendU32(falseID)
	}
}

// Int128 and Int256 are fixed-width big-endian-agnostic byte arrays used
// by the handshake nonces and the auth key id/fingerprint fields; the
// wire layout treats them as opaque byte strings, little-endian only in
// the sense that constituent words are stored low-byte-first, so they
// are represented here as plain byte arrays copied verbatim.
type Int128 [16]byte
type Int256 [32]byte

func (b *Buffer) AppendInt128(v Int128) { b.Append(v[:]) }
func (b *Buffer) AppendInt256(v Int256) { b.Append(v[:]) }

// ByteStringLen returns the number of bytes AppendByteString will write
// for a string of length n, per the protocol's length-prefixed,
// 4-byte-aligned framing (spec §6).
func ByteStringLen(n int) int {
	if n <= 253 {
		return (n + 4) &^ 3
	}
	return (n + 7) &^ 3
}

// AppendByteString appends p using the protocol's byte-string framing: a
// length byte (or 0xFE plus a 3-byte little-endian length for p longer
// than 253 bytes), the bytes themselves, then zero padding out to a
// 4-byte boundary.
func (b *Buffer) AppendByteString(p []byte) {
	n := len(p)
	total := ByteStringLen(n)
	b.Reserve(total)
	start := len(b.buf)
	b.buf = b.buf[:start+total]
	dst := b.buf[start:]

	if n <= 253 {
		dst[0] = byte(n)
		copy(dst[1:1+n], p)
		for i := 1 + n; i < total; i++ {
			dst[i] = 0
		}
		return
	}

	dst[0] = 0xFE
	dst[1] = byte(n)
	dst[2] = byte(n >> 8)
	dst[3] = byte(n >> 16)
	copy(dst[4:4+n], p)
	for i := 4 + n; i < total; i++ {
		dst[i] = 0
	}
}

// AppendString is AppendByteString over the UTF-8 encoding of s.
func (b *Buffer) AppendString(s string) {
	b.AppendByteString([]byte(s))
}
