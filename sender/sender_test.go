package sender

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/mtproto"
	"github.com/dimentyy/hungry-go/schema"
)

func testAuthKey() *mtproto.AuthKey {
	var data [256]byte
	for i := range data {
		data[i] = byte(i)
	}
	return mtproto.NewAuthKey(data)
}

// packServerSide builds an encrypted frame the way the protocol's
// server half would: AES parameters derived with the Server offset,
// the mirror image of mtproto.PackEncrypted's Client offset.
func packServerSide(t *testing.T, authKey *mtproto.AuthKey, salt, sessionID, msgID int64, seqNo int32, payload []byte) []byte {
	t.Helper()
	dataLen := len(payload)
	var p int
	for p = 12; p < 28; p++ {
		if (dataLen+p)%16 == 0 {
			break
		}
	}
	plainLen := 32 + dataLen + p
	plain := make([]byte, plainLen)

	writeLE64 := func(off int, v int64) {
		for i := 0; i < 8; i++ {
			plain[off+i] = byte(v >> (8 * i))
		}
	}
	writeLE32 := func(off int, v int32) {
		for i := 0; i < 4; i++ {
			plain[off+i] = byte(v >> (8 * i))
		}
	}
	writeLE64(0, salt)
	writeLE64(8, sessionID)
	writeLE64(16, msgID)
	writeLE32(24, seqNo)
	writeLE32(28, int32(dataLen))
	copy(plain[32:32+dataLen], payload)

	msgKey := authKey.ComputeMsgKey(plain, mtproto.Server)
	aesKey, aesIV := authKey.ComputeAESParams(msgKey, mtproto.Server)
	mtcrypto.AesIgeEncrypt(plain, aesKey, aesIV)

	out := make([]byte, 24+plainLen)
	for i := 0; i < 8; i++ {
		out[i] = byte(authKey.IDUint64() >> (8 * i))
	}
	copy(out[8:24], msgKey[:])
	copy(out[24:], plain)
	return out
}

// decryptClientSide opens a frame mtproto.PackEncrypted produced, the
// way the protocol's server half would: AES parameters and msg_key
// derived with the Client offset, the mirror image of
// EncryptedMessage.Decrypt's Server offset. It returns the message data.
func decryptClientSide(authKey *mtproto.AuthKey, enc *mtproto.EncryptedMessage) ([]byte, error) {
	plain := append([]byte(nil), enc.Ciphertext...)
	aesKey, aesIV := authKey.ComputeAESParams(enc.MsgKey, mtproto.Client)
	mtcrypto.AesIgeDecrypt(plain, aesKey, aesIV)
	if authKey.ComputeMsgKey(plain, mtproto.Client) != enc.MsgKey {
		return nil, mtproto.ErrMsgKeyMismatch
	}
	if len(plain) < 32 {
		return nil, buffer.ErrShortBuffer
	}
	dataLen := int(uint32(plain[28]) | uint32(plain[29])<<8 | uint32(plain[30])<<16 | uint32(plain[31])<<24)
	if dataLen > len(plain)-32 {
		return nil, buffer.ErrShortBuffer
	}
	return plain[32 : 32+dataLen], nil
}

func TestInvokeDeliversRPCResult(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	authKey := testAuthKey()
	s := New(Config{Reader: client, Writer: client, AuthKey: authKey, Salt: 1, SessionID: 2})

	ctx := context.Background()
	msgID, ch, err := s.Invoke(ctx, schema.MsgsAck{MsgIDs: []int64{7}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		r := mtproto.NewReader(server)
		msg, err := r.Next()
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		if msg.Encrypted == nil {
			t.Errorf("server read a plain message")
			return
		}
		data, err := decryptClientSide(authKey, msg.Encrypted)
		if err != nil {
			t.Errorf("server decrypt: %v", err)
			return
		}
		items, err := mtproto.UnpackContainer(data)
		if err != nil {
			t.Errorf("server unpack container: %v", err)
			return
		}
		if len(items) != 1 {
			t.Errorf("container has %d items, want 1", len(items))
			return
		}
		if items[0].MsgID != msgID {
			t.Errorf("inner msg_id = %d, want %d", items[0].MsgID, msgID)
		}

		result := schema.RPCResult{ReqMsgID: items[0].MsgID, Result: []byte{1, 2, 3}}
		buf := buffer.New(result.SerializedLen())
		result.SerializeInto(buf)

		frame := packServerSide(t, authKey, 1, 2, 100, 0, buf.Bytes())
		w := mtproto.NewWriter(server)
		if err := w.Write(frame); err != nil {
			t.Errorf("server write: %v", err)
		}
	}()

	go func() {
		for {
			if err := s.Poll(ctx); err != nil {
				return
			}
		}
	}()

	select {
	case resp := <-ch:
		if resp.Err != nil {
			t.Fatalf("response error: %v", resp.Err)
		}
		if len(resp.Result) != 3 || resp.Result[0] != 1 || resp.Result[1] != 2 || resp.Result[2] != 3 {
			t.Fatalf("result = %v, want [1 2 3]", resp.Result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
	}

	<-serverDone
}

func TestBadMsgNotificationDeliversErrorAndRebasesMsgIDs(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	authKey := testAuthKey()
	s := New(Config{Reader: client, Writer: client, AuthKey: authKey, Salt: 1, SessionID: 2})

	ctx := context.Background()
	msgID, ch, err := s.Invoke(ctx, schema.MsgsAck{MsgIDs: []int64{7}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	go func() {
		r := mtproto.NewReader(server)
		if _, err := r.Next(); err != nil {
			return
		}

		notif := schema.BadMsgNotification{BadMsgID: msgID, BadMsgSeqno: 0, ErrorCode: 16}
		buf := buffer.New(notif.SerializedLen())
		notif.SerializeInto(buf)

		frame := packServerSide(t, authKey, 1, 2, 100, 0, buf.Bytes())
		w := mtproto.NewWriter(server)
		_ = w.Write(frame)
	}()

	go func() {
		for {
			if err := s.Poll(ctx); err != nil {
				return
			}
		}
	}()

	select {
	case resp := <-ch:
		badErr, ok := resp.Err.(*BadMsgError)
		if !ok {
			t.Fatalf("err = %v, want *BadMsgError", resp.Err)
		}
		if badErr.MsgID != msgID || badErr.ErrorCode != 16 {
			t.Fatalf("badErr = %+v", badErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
	}

	if s.msgIDs.Last() < msgID {
		t.Fatalf("msg_id generator was not rebased past %d", msgID)
	}
}
