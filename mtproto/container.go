package mtproto

import (
	"encoding/binary"
	"errors"

	"github.com/dimentyy/hungry-go/buffer"
)

// msgContainerConstructor is msg_container's wire constructor id.
const msgContainerConstructor = 0x73f1f8dc

// ErrBadContainerConstructor is returned by UnpackContainer when buf does
// not begin with msg_container's constructor id.
var ErrBadContainerConstructor = errors.New("mtproto: not a msg_container")

// ContainerItem is one inner message of a msg_container: its own
// (msg_id, seq_no) pair plus its serialized payload.
type ContainerItem struct {
	MsgID   int64
	SeqNo   int32
	Payload []byte
}

// PackContainer serializes items as a complete msg_container payload:
// constructor, count, then each item's (msg_id, seq_no, bytes_len, bytes)
// in order. Unlike the draft this is grounded on, the constructor and
// count are written directly into the buffer's reserved front 8 bytes
// rather than appended to the tail and reverse-joined; see DESIGN.md.
func PackContainer(items []ContainerItem) []byte {
	size := 8
	for _, it := range items {
		size += 16 + len(it.Payload)
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], msgContainerConstructor)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(items)))

	off := 8
	for _, it := range items {
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(it.MsgID))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(it.SeqNo))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], uint32(len(it.Payload)))
		copy(buf[off+16:off+16+len(it.Payload)], it.Payload)
		off += 16 + len(it.Payload)
	}
	return buf
}

// UnpackContainer parses a complete msg_container payload, constructor
// included.
func UnpackContainer(buf []byte) ([]ContainerItem, error) {
	if len(buf) < 8 {
		return nil, buffer.ErrShortBuffer
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != msgContainerConstructor {
		return nil, ErrBadContainerConstructor
	}
	count := int(binary.LittleEndian.Uint32(buf[4:8]))

	items := make([]ContainerItem, 0, count)
	off := 8
	for i := 0; i < count; i++ {
		if len(buf)-off < 16 {
			return nil, buffer.ErrShortBuffer
		}
		msgID := int64(binary.LittleEndian.Uint64(buf[off : off+8]))
		seqNo := int32(binary.LittleEndian.Uint32(buf[off+8 : off+12]))
		length := int(binary.LittleEndian.Uint32(buf[off+12 : off+16]))
		off += 16

		if len(buf)-off < length {
			return nil, buffer.ErrShortBuffer
		}
		items = append(items, ContainerItem{
			MsgID:   msgID,
			SeqNo:   seqNo,
			Payload: buf[off : off+length],
		})
		off += length
	}
	return items, nil
}
