package schema

import "github.com/dimentyy/hungry-go/buffer"

// NewSessionCreated notifies the client that the server has started a
// fresh session, carrying the salt to use going forward.
type NewSessionCreated struct {
	FirstMsgID int64
	UniqueID   int64
	ServerSalt int64
}

func (NewSessionCreated) ConstructorID() uint32 { return ConstructorNewSessionCreated }
func (NewSessionCreated) SerializedLen() int    { return 4 + 8 + 8 + 8 }

func (v NewSessionCreated) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorNewSessionCreated)
	buf.AppendI64(v.FirstMsgID)
	buf.AppendI64(v.UniqueID)
	buf.AppendI64(v.ServerSalt)
}

// DeserializeNewSessionCreated parses a NewSessionCreated, constructor
// id included.
func DeserializeNewSessionCreated(r *buffer.Reader) (NewSessionCreated, error) {
	var v NewSessionCreated
	if err := readConstructor(r, ConstructorNewSessionCreated); err != nil {
		return v, err
	}
	var err error
	if v.FirstMsgID, err = r.I64(); err != nil {
		return v, err
	}
	if v.UniqueID, err = r.I64(); err != nil {
		return v, err
	}
	if v.ServerSalt, err = r.I64(); err != nil {
		return v, err
	}
	return v, nil
}

// FutureSalt is one entry of a future_salts schedule.
type FutureSalt struct {
	ValidSince int32
	ValidUntil int32
	Salt       int64
}

func (FutureSalt) ConstructorID() uint32 { return ConstructorFutureSalt }
func (FutureSalt) SerializedLen() int    { return 4 + 4 + 4 + 8 }

func (v FutureSalt) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorFutureSalt)
	buf.AppendI32(v.ValidSince)
	buf.AppendI32(v.ValidUntil)
	buf.AppendI64(v.Salt)
}

func deserializeFutureSalt(r *buffer.Reader) (FutureSalt, error) {
	var v FutureSalt
	if err := readConstructor(r, ConstructorFutureSalt); err != nil {
		return v, err
	}
	var err error
	if v.ValidSince, err = r.I32(); err != nil {
		return v, err
	}
	if v.ValidUntil, err = r.I32(); err != nil {
		return v, err
	}
	if v.Salt, err = r.I64(); err != nil {
		return v, err
	}
	return v, nil
}

// FutureSalts is the server's response to a get_future_salts request,
// updating the sender's salt schedule.
type FutureSalts struct {
	ReqMsgID int64
	Now      int32
	Salts    []FutureSalt
}

func (FutureSalts) ConstructorID() uint32 { return ConstructorFutureSalts }

func (v FutureSalts) SerializedLen() int {
	n := 4 + 8 + 4 + 4 + 4 // ctor, req_msg_id, now, bare-vector ctor(0x1cb5c415), count
	for range v.Salts {
		n += FutureSalt{}.SerializedLen()
	}
	return n
}

func (v FutureSalts) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorFutureSalts)
	buf.AppendI64(v.ReqMsgID)
	buf.AppendI32(v.Now)
	buf.AppendU32(ConstructorVector)
	buf.AppendU32(uint32(len(v.Salts)))
	for _, s := range v.Salts {
		s.SerializeInto(buf)
	}
}

// DeserializeFutureSalts parses a FutureSalts, constructor id included.
func DeserializeFutureSalts(r *buffer.Reader) (FutureSalts, error) {
	var v FutureSalts
	if err := readConstructor(r, ConstructorFutureSalts); err != nil {
		return v, err
	}
	var err error
	if v.ReqMsgID, err = r.I64(); err != nil {
		return v, err
	}
	if v.Now, err = r.I32(); err != nil {
		return v, err
	}
	if err := readConstructor(r, ConstructorVector); err != nil {
		return v, err
	}
	n, err := r.I32()
	if err != nil {
		return v, err
	}
	v.Salts = make([]FutureSalt, n)
	for i := range v.Salts {
		if v.Salts[i], err = deserializeFutureSalt(r); err != nil {
			return v, err
		}
	}
	return v, nil
}

// MsgsAck acknowledges receipt of the listed msg_ids.
type MsgsAck struct {
	MsgIDs []int64
}

func (MsgsAck) ConstructorID() uint32 { return ConstructorMsgsAck }
func (v MsgsAck) SerializedLen() int  { return 4 + vectorInt64Len(len(v.MsgIDs)) }

func (v MsgsAck) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(v.ConstructorID())
	appendVectorInt64(buf, v.MsgIDs)
}

// DeserializeMsgsAck parses a MsgsAck, constructor id included.
func DeserializeMsgsAck(r *buffer.Reader) (MsgsAck, error) {
	var v MsgsAck
	if err := readConstructor(r, ConstructorMsgsAck); err != nil {
		return v, err
	}
	var err error
	if v.MsgIDs, err = readVectorInt64(r); err != nil {
		return v, err
	}
	return v, nil
}

// BadMsgNotification reports that a message the client sent was
// malformed or out of the server's acceptable clock skew.
type BadMsgNotification struct {
	BadMsgID   int64
	BadMsgSeqno int32
	ErrorCode  int32
}

func (BadMsgNotification) ConstructorID() uint32 { return ConstructorBadMsgNotification }
func (BadMsgNotification) SerializedLen() int    { return 4 + 8 + 4 + 4 }

func (v BadMsgNotification) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorBadMsgNotification)
	buf.AppendI64(v.BadMsgID)
	buf.AppendI32(v.BadMsgSeqno)
	buf.AppendI32(v.ErrorCode)
}

// DeserializeBadMsgNotification parses a BadMsgNotification, constructor
// id included.
func DeserializeBadMsgNotification(r *buffer.Reader) (BadMsgNotification, error) {
	var v BadMsgNotification
	if err := readConstructor(r, ConstructorBadMsgNotification); err != nil {
		return v, err
	}
	var err error
	if v.BadMsgID, err = r.I64(); err != nil {
		return v, err
	}
	if v.BadMsgSeqno, err = r.I32(); err != nil {
		return v, err
	}
	if v.ErrorCode, err = r.I32(); err != nil {
		return v, err
	}
	return v, nil
}

// BadServerSalt is bad_msg_notification's variant carrying a corrected
// server salt, sent when the error code indicates a salt mismatch
// rather than a clock problem.
type BadServerSalt struct {
	BadMsgID      int64
	BadMsgSeqno   int32
	ErrorCode     int32
	NewServerSalt int64
}

func (BadServerSalt) ConstructorID() uint32 { return ConstructorBadServerSalt }
func (BadServerSalt) SerializedLen() int    { return 4 + 8 + 4 + 4 + 8 }

func (v BadServerSalt) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorBadServerSalt)
	buf.AppendI64(v.BadMsgID)
	buf.AppendI32(v.BadMsgSeqno)
	buf.AppendI32(v.ErrorCode)
	buf.AppendI64(v.NewServerSalt)
}

// DeserializeBadServerSalt parses a BadServerSalt, constructor id
// included.
func DeserializeBadServerSalt(r *buffer.Reader) (BadServerSalt, error) {
	var v BadServerSalt
	if err := readConstructor(r, ConstructorBadServerSalt); err != nil {
		return v, err
	}
	var err error
	if v.BadMsgID, err = r.I64(); err != nil {
		return v, err
	}
	if v.BadMsgSeqno, err = r.I32(); err != nil {
		return v, err
	}
	if v.ErrorCode, err = r.I32(); err != nil {
		return v, err
	}
	if v.NewServerSalt, err = r.I64(); err != nil {
		return v, err
	}
	return v, nil
}

// RPCResult carries an RPC reply. The embedded Object is opaque to this
// package: the sender delivers Result verbatim (still framed with
// whatever constructor id the concrete response type uses) to the
// waiter keyed by ReqMsgID, which is the only caller equipped to
// deserialize it.
type RPCResult struct {
	ReqMsgID int64
	Result   []byte
}

func (RPCResult) ConstructorID() uint32 { return ConstructorRPCResult }
func (v RPCResult) SerializedLen() int  { return 4 + 8 + len(v.Result) }

func (v RPCResult) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorRPCResult)
	buf.AppendI64(v.ReqMsgID)
	buf.Append(v.Result)
}

// DeserializeRPCResult parses an RPCResult, constructor id included;
// Result is the remainder of r unparsed.
func DeserializeRPCResult(r *buffer.Reader) (RPCResult, error) {
	var v RPCResult
	if err := readConstructor(r, ConstructorRPCResult); err != nil {
		return v, err
	}
	var err error
	if v.ReqMsgID, err = r.I64(); err != nil {
		return v, err
	}
	v.Result = append([]byte(nil), r.Remaining()...)
	return v, nil
}
