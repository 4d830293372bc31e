// Package mtproto implements the authenticated-envelope message codec
// (msg_key derivation, AES-IGE in/out, auth_key_id/session checks), the
// plain pre-key-exchange envelope, msg_id/seq_no identity and
// sequencing, the message container, and the reader/writer pair that
// drive a byte stream through the Full transport.
package mtproto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
)

// Msg is the (msg_id, seq_no) pair every message carries, and what
// msg_container encodes as each inner message's header.
type Msg struct {
	MsgID int64
	SeqNo int32
}

// PlainMessage is the unauthenticated envelope used only during key
// exchange: auth_key_id is always zero.
type PlainMessage struct {
	MsgID int64
	Data  []byte
}

// EncryptedMessage is an encrypted envelope before decryption: the
// outer auth_key_id and msg_key have been parsed, but Ciphertext is
// still opaque.
type EncryptedMessage struct {
	AuthKeyID uint64
	MsgKey    [16]byte
	Ciphertext []byte
}

// DecryptedMessage is the plaintext an EncryptedMessage decrypts to.
type DecryptedMessage struct {
	Salt      int64
	SessionID int64
	MsgID     int64
	SeqNo     int32
	Data      []byte
}

// Message is the result of UnpackMessage: exactly one of Plain or
// Encrypted is set.
type Message struct {
	Plain     *PlainMessage
	Encrypted *EncryptedMessage
}

// PackPlain wraps payload in the plain MTProto envelope:
// auth_key_id(=0) | msg_id | message_data_length | data.
func PackPlain(payload []byte, msgID int64) []byte {
	buf := buffer.New(20 + len(payload))
	buf.Append(make([]byte, 20))
	hdr := buf.Bytes()
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(msgID))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(payload)))
	buf.Append(payload)
	return buf.Bytes()
}

// paddingLen returns the minimum p in [12, 28) such that
// (dataLen+p) % 16 == 0.
func paddingLen(dataLen int) int {
	for p := 12; p < 28; p++ {
		if (dataLen+p)%16 == 0 {
			return p
		}
	}
	panic("mtproto: unreachable padding search")
}

// PackEncrypted wraps payload in the encrypted MTProto envelope: an
// outer auth_key_id|msg_key header, then AES-256-IGE ciphertext of
// salt|session_id|msg_id|seq_no|message_data_length|data|random_padding.
func PackEncrypted(authKey *AuthKey, salt, sessionID, msgID int64, seqNo int32, payload []byte) ([]byte, error) {
	dataLen := len(payload)
	p := paddingLen(dataLen)

	plainLen := 32 + dataLen + p
	plain := make([]byte, plainLen)
	binary.LittleEndian.PutUint64(plain[0:8], uint64(salt))
	binary.LittleEndian.PutUint64(plain[8:16], uint64(sessionID))
	binary.LittleEndian.PutUint64(plain[16:24], uint64(msgID))
	binary.LittleEndian.PutUint32(plain[24:28], uint32(seqNo))
	binary.LittleEndian.PutUint32(plain[28:32], uint32(dataLen))
	copy(plain[32:32+dataLen], payload)
	if _, err := rand.Read(plain[32+dataLen:]); err != nil {
		return nil, err
	}

	msgKey := authKey.ComputeMsgKey(plain, Client)
	aesKey, aesIV := authKey.ComputeAESParams(msgKey, Client)
	mtcrypto.AesIgeEncrypt(plain, aesKey, aesIV)

	out := make([]byte, 24+plainLen)
	binary.LittleEndian.PutUint64(out[0:8], authKey.IDUint64())
	copy(out[8:24], msgKey[:])
	copy(out[24:], plain)
	return out, nil
}

// UnpackMessage discriminates a plain message from an encrypted one by
// the leading auth_key_id: zero means plain.
func UnpackMessage(buf []byte) (Message, error) {
	if len(buf) < 8 {
		return Message{}, buffer.ErrShortBuffer
	}
	authKeyID := binary.LittleEndian.Uint64(buf[0:8])

	if authKeyID == 0 {
		if len(buf) < 20 {
			return Message{}, buffer.ErrShortBuffer
		}
		msgID := int64(binary.LittleEndian.Uint64(buf[8:16]))
		dataLen := int(binary.LittleEndian.Uint32(buf[16:20]))
		if dataLen > len(buf)-20 {
			return Message{}, buffer.ErrShortBuffer
		}
		return Message{Plain: &PlainMessage{MsgID: msgID, Data: buf[20 : 20+dataLen]}}, nil
	}

	if len(buf) < 24 {
		return Message{}, buffer.ErrShortBuffer
	}
	var msgKey [16]byte
	copy(msgKey[:], buf[8:24])
	return Message{Encrypted: &EncryptedMessage{
		AuthKeyID:  authKeyID,
		MsgKey:     msgKey,
		Ciphertext: buf[24:],
	}}, nil
}

// Decrypt decrypts an EncryptedMessage in place under authKey, verifies
// msg_key by constant-time comparison, and parses the decrypted header.
// The frame must not be processed further if this returns
// ErrMsgKeyMismatch.
func (m *EncryptedMessage) Decrypt(authKey *AuthKey) (*DecryptedMessage, error) {
	if len(m.Ciphertext)%16 != 0 {
		return nil, errors.New("mtproto: ciphertext length not a multiple of 16")
	}

	plaintext := m.Ciphertext
	aesKey, aesIV := authKey.ComputeAESParams(m.MsgKey, Server)
	mtcrypto.AesIgeDecrypt(plaintext, aesKey, aesIV)

	want := authKey.ComputeMsgKey(plaintext, Server)
	if subtle.ConstantTimeCompare(want[:], m.MsgKey[:]) != 1 {
		return nil, ErrMsgKeyMismatch
	}

	if len(plaintext) < 32 {
		return nil, buffer.ErrShortBuffer
	}

	salt := int64(binary.LittleEndian.Uint64(plaintext[0:8]))
	sessionID := int64(binary.LittleEndian.Uint64(plaintext[8:16]))
	msgID := int64(binary.LittleEndian.Uint64(plaintext[16:24]))
	seqNo := int32(binary.LittleEndian.Uint32(plaintext[24:28]))
	dataLen := int(binary.LittleEndian.Uint32(plaintext[28:32]))
	if dataLen > len(plaintext)-32 {
		return nil, buffer.ErrShortBuffer
	}

	return &DecryptedMessage{
		Salt:      salt,
		SessionID: sessionID,
		MsgID:     msgID,
		SeqNo:     seqNo,
		Data:      plaintext[32 : 32+dataLen],
	}, nil
}
