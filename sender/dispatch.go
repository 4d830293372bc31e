package sender

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/log"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtproto"
	"github.com/dimentyy/hungry-go/schema"
)

// dispatch parses data's leading constructor id and routes it. A
// msg_container recurses into each inner payload; every other
// recognized id is protocol bookkeeping handled inline; an
// unrecognized id is logged and dropped (data has no further structure
// to recover from).
func (s *Sender) dispatch(data []byte) error {
	if len(data) < 4 {
		return buffer.ErrShortBuffer
	}
	ctor := binary.LittleEndian.Uint32(data[0:4])

	switch ctor {
	case schema.ConstructorMsgContainer:
		return s.dispatchContainer(data)
	case schema.ConstructorNewSessionCreated:
		return s.dispatchNewSessionCreated(data)
	case schema.ConstructorRPCResult:
		return s.dispatchRPCResult(data)
	case schema.ConstructorFutureSalts:
		return s.dispatchFutureSalts(data)
	case schema.ConstructorMsgsAck:
		return s.dispatchMsgsAck(data)
	case schema.ConstructorBadMsgNotification:
		return s.dispatchBadMsgNotification(data)
	case schema.ConstructorBadServerSalt:
		return s.dispatchBadServerSalt(data)
	default:
		log.Warn("sender: unrecognized constructor id", "ctor", ctor)
		return nil
	}
}

func (s *Sender) dispatchContainer(data []byte) error {
	items, err := mtproto.UnpackContainer(data)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.dispatch(item.Payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) dispatchNewSessionCreated(data []byte) error {
	v, err := schema.DeserializeNewSessionCreated(buffer.NewReader(data))
	if err != nil {
		return err
	}
	s.salt = v.ServerSalt
	log.Debug("sender: new_session_created", "first_msg_id", v.FirstMsgID, "unique_id", v.UniqueID)
	return nil
}

func (s *Sender) dispatchRPCResult(data []byte) error {
	v, err := schema.DeserializeRPCResult(buffer.NewReader(data))
	if err != nil {
		return err
	}
	log.Trace("sender: rpc_result", "req_msg_id", v.ReqMsgID, "len", len(v.Result))
	s.deliver(v.ReqMsgID, Response{Result: v.Result})
	return nil
}

func (s *Sender) dispatchFutureSalts(data []byte) error {
	v, err := schema.DeserializeFutureSalts(buffer.NewReader(data))
	if err != nil {
		return err
	}
	s.futureSalts = v.Salts
	log.Debug("sender: future_salts", "req_msg_id", v.ReqMsgID, "count", len(v.Salts))
	return nil
}

func (s *Sender) dispatchMsgsAck(data []byte) error {
	v, err := schema.DeserializeMsgsAck(buffer.NewReader(data))
	if err != nil {
		return err
	}
	log.Trace("sender: msgs_ack", "count", len(v.MsgIDs))
	return nil
}

// clock skew error codes: the server indicates msg_id was generated
// too far outside its acceptable window. For these codes the generator
// is additionally rebased past the rejected msg_id; every
// bad_msg_notification, these included, is delivered to the waiter as a
// *BadMsgError, and the rejected message is not resent.
const (
	errCodeMsgIDTooLow  = 16
	errCodeMsgIDTooHigh = 17
)

func (s *Sender) dispatchBadMsgNotification(data []byte) error {
	v, err := schema.DeserializeBadMsgNotification(buffer.NewReader(data))
	if err != nil {
		return err
	}
	return s.handleBadMsg(v.BadMsgID, v.ErrorCode)
}

func (s *Sender) dispatchBadServerSalt(data []byte) error {
	v, err := schema.DeserializeBadServerSalt(buffer.NewReader(data))
	if err != nil {
		return err
	}
	s.salt = v.NewServerSalt
	log.Debug("sender: bad_server_salt", "bad_msg_id", v.BadMsgID, "new_salt", v.NewServerSalt)
	return nil
}

func (s *Sender) handleBadMsg(badMsgID int64, errorCode int32) error {
	log.Warn("sender: bad_msg_notification", "bad_msg_id", badMsgID, "error_code", errorCode)

	if errorCode == errCodeMsgIDTooLow || errorCode == errCodeMsgIDTooHigh {
		s.msgIDs.Rebase(badMsgID)
	}

	s.deliver(badMsgID, Response{Err: &BadMsgError{MsgID: badMsgID, ErrorCode: errorCode}})
	return nil
}
