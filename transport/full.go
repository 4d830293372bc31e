// Package transport implements the Full-variant framed stream codec:
// length:int32 | seq:int32 | payload | crc32:uint32, packed on the
// write side into the outer envelope and unpacked frame-by-frame from
// an input buffer on the read side.
package transport

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/envelope"
)

// DefaultBufLen is the minimum number of bytes the reader must buffer
// before a frame's length can be learned.
const DefaultBufLen = 4

// minFrameLen is the smallest value `length` may legally carry: the
// length, seq, and crc32 fields with zero payload.
const minFrameLen = 12

// EnvelopeSize is the Full variant's envelope.Size: an 8-byte header
// (length, seq) and a 4-byte footer (crc32).
type EnvelopeSize struct{}

func (EnvelopeSize) Header() int { return 8 }
func (EnvelopeSize) Footer() int { return 4 }

// Full is the Full transport variant: one read-side and one write-side
// monotonically increasing seq counter, independent of each other.
type Full struct {
	writeSeq int32
	readSeq  int32
}

// NewFull returns a Full transport with both seq counters at zero.
func NewFull() *Full { return &Full{} }

// Pack wraps buf (the payload written into env's middle region) into a
// complete Full-variant frame: adapts env to buf, computes length, stamps the write-side
// seq, computes the CRC-32 over header||payload, then rejoins header,
// payload, and footer into one contiguous frame. excess is the unused
// spare-capacity fragment Adapt peeled off, to be returned to the
// caller alongside the frame for reuse.
func (f *Full) Pack(buf *buffer.Buffer, env *envelope.Envelope) (frame []byte, excess *buffer.Buffer) {
	excess = env.Adapt(buf)

	header := env.HeaderBytes()
	footer := env.FooterBytes()

	length := EnvelopeSize{}.Header() + buf.Len() + EnvelopeSize{}.Footer()
	binary.LittleEndian.PutUint32(header[0:4], uint32(length))
	binary.LittleEndian.PutUint32(header[4:8], uint32(f.writeSeq))

	h := crc32.NewIEEE()
	h.Write(header)
	h.Write(buf.Bytes())
	binary.LittleEndian.PutUint32(footer[0:4], h.Sum32())

	f.writeSeq++

	env.Unsplit(buf, excess)
	return buf.Bytes(), excess
}

// UnpackKind distinguishes the two shapes an Unpack can take; the Full
// variant only ever produces Packet, but dispatchers must be able to
// route UnpackQuickAck for a future transport variant.
type UnpackKind int

const (
	UnpackPacket UnpackKind = iota
	UnpackQuickAck
)

// Packet is a successfully unpacked frame's payload span: buf[8:length-4]
// of the input buffer that was passed to Unpack.
type Packet struct {
	Data []byte
}

// QuickAck is reserved for a future transport variant; Full never
// constructs one.
type QuickAck struct {
	Token  uint32
	Length int
}

// Unpack is the successful result of a completed frame.
type Unpack struct {
	Kind     UnpackKind
	Packet   Packet
	QuickAck QuickAck
}

// Outcome is the tri-state result of attempting to unpack a frame from
// buf, the Go rendition of the Rust `ControlFlow<Result<Unpack, Error>,
// usize>` contract: NeedMore > 0 means the caller must grow buf to at
// least that length and call Unpack again (Continue); otherwise the
// attempt completed (Break), with exactly one of Result or Err set.
type Outcome struct {
	NeedMore int
	Result   Unpack
	Err      error
}

// Unpack attempts to parse one Full-variant frame from the front of
// buf. It never consumes partial frames: the caller is responsible for
// discarding buf's contents only after a non-NeedMore Outcome.
func (f *Full) Unpack(buf []byte) Outcome {
	if len(buf) < 4 {
		return Outcome{NeedMore: DefaultBufLen}
	}

	length := int32(binary.LittleEndian.Uint32(buf[0:4]))
	if length < 0 {
		return Outcome{Err: &Error{Kind: StatusCode, Status: -length}}
	}
	if length < minFrameLen {
		return Outcome{Err: &Error{Kind: BadLen}}
	}
	if len(buf) < int(length) {
		return Outcome{NeedMore: int(length)}
	}

	seq := int32(binary.LittleEndian.Uint32(buf[4:8]))
	if seq != f.readSeq {
		return Outcome{Err: &Error{Kind: BadSeq, ReceivedSeq: seq, ExpectedSeq: f.readSeq}}
	}

	computed := crc32.ChecksumIEEE(buf[:length-4])
	received := binary.LittleEndian.Uint32(buf[length-4 : length])
	if computed != received {
		return Outcome{Err: &Error{Kind: BadCRC, ReceivedCRC: received, ComputedCRC: computed}}
	}

	f.readSeq++
	return Outcome{Result: Unpack{Kind: UnpackPacket, Packet: Packet{Data: buf[8 : length-4]}}}
}
