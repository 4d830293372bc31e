package mtproto

import (
	"encoding/binary"

	"github.com/dimentyy/hungry-go/mtcrypto"
)

// Side selects which half of the derivation offsets compute_msg_key and
// compute_aes_params use: the client derives outgoing parameters with
// Client, and verifies incoming ones with Server.
type Side int

const (
	Client Side = 0
	Server Side = 8
)

// AuthKey is the 256-byte Diffie-Hellman shared secret, plus its
// precomputed auxiliary hash and id. Immutable once constructed; never
// transmitted.
type AuthKey struct {
	Data    [256]byte
	AuxHash [8]byte
	ID      [8]byte
}

// NewAuthKey derives AuxHash and ID from data.
func NewAuthKey(data [256]byte) *AuthKey {
	h := mtcrypto.SHA1(data[:])
	ak := &AuthKey{Data: data}
	copy(ak.AuxHash[:], h[0:8])
	copy(ak.ID[:], h[12:20])
	return ak
}

// IDUint64 returns ID as a little-endian uint64, the representation
// carried on the wire as auth_key_id.
func (a *AuthKey) IDUint64() uint64 {
	return binary.LittleEndian.Uint64(a.ID[:])
}

// ComputeMsgKey derives msg_key from a 32-byte slice of the auth key
// selected by side and the message plaintext (header, payload, and
// random padding, in wire order).
func (a *AuthKey) ComputeMsgKey(plaintext []byte, side Side) [16]byte {
	x := int(side)
	large := mtcrypto.SHA256(a.Data[88+x:88+x+32], plaintext)
	var msgKey [16]byte
	copy(msgKey[:], large[8:24])
	return msgKey
}

// ComputeAESParams derives the AES-256-IGE key and iv for msg_key and
// side.
func (a *AuthKey) ComputeAESParams(msgKey [16]byte, side Side) (aesKey mtcrypto.AesIgeKey, aesIV mtcrypto.AesIgeIv) {
	x := int(side)
	shaA := mtcrypto.SHA256(msgKey[:], a.Data[x:x+36])
	shaB := mtcrypto.SHA256(a.Data[40+x:40+x+36], msgKey[:])

	aesKey = mtcrypto.AesIgeKey(shaA)
	aesIV = mtcrypto.AesIgeIv(shaB)
	copy(aesKey[8:24], shaB[8:24])
	copy(aesIV[8:24], shaA[8:24])
	return aesKey, aesIV
}
