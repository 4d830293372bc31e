// Package schema is the generated-wire-types stand-in: the hand-written
// equivalent of what a TL schema code generator would produce. The
// core (mtproto, handshake, sender) depends only on the Serializable
// contract and the constructor ids it dispatches on; it never inspects
// a type's field contents beyond those ids.
package schema

import (
	"github.com/dimentyy/hungry-go/buffer"
)

// Serializable is the contract every generated wire type satisfies: a
// constant constructor id, an exact serialized length, and a promise
// to write exactly that many bytes into a buffer's spare capacity.
type Serializable interface {
	ConstructorID() uint32
	SerializedLen() int
	SerializeInto(buf *buffer.Buffer)
}

// boxedHeaderLen is the 4-byte constructor id every boxed type is
// prefixed with.
const boxedHeaderLen = 4

// vectorInt64Len returns the serialized length of a boxed Vector long
// with n elements: constructor, count, n*int64.
func vectorInt64Len(n int) int {
	return boxedHeaderLen + 4 + n*8
}

func appendVectorInt64(buf *buffer.Buffer, v []int64) {
	buf.AppendU32(ConstructorVector)
	buf.AppendU32(uint32(len(v)))
	for _, x := range v {
		buf.AppendI64(x)
	}
}

func readVectorInt64(r *buffer.Reader) ([]int64, error) {
	ctor, err := r.U32()
	if err != nil {
		return nil, err
	}
	if ctor != ConstructorVector {
		return nil, ErrUnknownConstructor
	}
	n, err := r.I32()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		out[i], err = r.I64()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readConstructor reads a u32 constructor id and reports whether it
// matches want.
func readConstructor(r *buffer.Reader, want uint32) error {
	got, err := r.U32()
	if err != nil {
		return err
	}
	if got != want {
		return ErrUnknownConstructor
	}
	return nil
}
