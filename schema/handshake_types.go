package schema

import (
	"github.com/dimentyy/hungry-go/buffer"
)

// ReqPqMulti is the handshake's opening method.
type ReqPqMulti struct {
	Nonce buffer.Int128
}

func (ReqPqMulti) ConstructorID() uint32 { return ConstructorReqPqMulti }
func (ReqPqMulti) SerializedLen() int    { return 4 + 16 }

func (v ReqPqMulti) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorReqPqMulti)
	buf.AppendInt128(v.Nonce)
}

// ResPq is the server's reply to req_pq_multi.
type ResPq struct {
	Nonce                       buffer.Int128
	ServerNonce                 buffer.Int128
	Pq                          []byte
	ServerPublicKeyFingerprints []int64
}

func (ResPq) ConstructorID() uint32 { return ConstructorResPq }

func (v ResPq) SerializedLen() int {
	return 4 + 16 + 16 + buffer.ByteStringLen(len(v.Pq)) + vectorInt64Len(len(v.ServerPublicKeyFingerprints))
}

func (v ResPq) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorResPq)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendByteString(v.Pq)
	appendVectorInt64(buf, v.ServerPublicKeyFingerprints)
}

// DeserializeResPq parses a ResPq, constructor id included.
func DeserializeResPq(r *buffer.Reader) (ResPq, error) {
	var v ResPq
	if err := readConstructor(r, ConstructorResPq); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.Pq, err = r.ByteString(); err != nil {
		return v, err
	}
	if v.ServerPublicKeyFingerprints, err = readVectorInt64(r); err != nil {
		return v, err
	}
	return v, nil
}

// PQInnerData is the inner payload RSA-wrapped into req_DH_params'
// encrypted_data.
type PQInnerData struct {
	Pq          []byte
	P           []byte
	Q           []byte
	Nonce       buffer.Int128
	ServerNonce buffer.Int128
	NewNonce    buffer.Int256
}

func (PQInnerData) ConstructorID() uint32 { return ConstructorPQInnerData }

func (v PQInnerData) SerializedLen() int {
	return 4 + buffer.ByteStringLen(len(v.Pq)) + buffer.ByteStringLen(len(v.P)) +
		buffer.ByteStringLen(len(v.Q)) + 16 + 16 + 32
}

func (v PQInnerData) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorPQInnerData)
	buf.AppendByteString(v.Pq)
	buf.AppendByteString(v.P)
	buf.AppendByteString(v.Q)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendInt256(v.NewNonce)
}

// ReqDHParams carries the RSA-wrapped PQInnerData to the server.
type ReqDHParams struct {
	Nonce                buffer.Int128
	ServerNonce          buffer.Int128
	P                    []byte
	Q                    []byte
	PublicKeyFingerprint int64
	EncryptedData        []byte
}

func (ReqDHParams) ConstructorID() uint32 { return ConstructorReqDHParams }

func (v ReqDHParams) SerializedLen() int {
	return 4 + 16 + 16 + buffer.ByteStringLen(len(v.P)) + buffer.ByteStringLen(len(v.Q)) +
		8 + buffer.ByteStringLen(len(v.EncryptedData))
}

func (v ReqDHParams) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorReqDHParams)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendByteString(v.P)
	buf.AppendByteString(v.Q)
	buf.AppendI64(v.PublicKeyFingerprint)
	buf.AppendByteString(v.EncryptedData)
}

// ServerDHParamsOk is the server's successful reply to req_DH_params.
type ServerDHParamsOk struct {
	Nonce           buffer.Int128
	ServerNonce     buffer.Int128
	EncryptedAnswer []byte
}

func (ServerDHParamsOk) ConstructorID() uint32 { return ConstructorServerDHParamsOk }

func (v ServerDHParamsOk) SerializedLen() int {
	return 4 + 16 + 16 + buffer.ByteStringLen(len(v.EncryptedAnswer))
}

func (v ServerDHParamsOk) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorServerDHParamsOk)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendByteString(v.EncryptedAnswer)
}

// DeserializeServerDHParamsOk parses a ServerDHParamsOk, constructor id
// included.
func DeserializeServerDHParamsOk(r *buffer.Reader) (ServerDHParamsOk, error) {
	var v ServerDHParamsOk
	if err := readConstructor(r, ConstructorServerDHParamsOk); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.EncryptedAnswer, err = r.ByteString(); err != nil {
		return v, err
	}
	return v, nil
}

// ServerDHParamsFail is the server's terminal rejection of req_DH_params.
type ServerDHParamsFail struct {
	Nonce         buffer.Int128
	ServerNonce   buffer.Int128
	NewNonceHash  buffer.Int128
}

func (ServerDHParamsFail) ConstructorID() uint32 { return ConstructorServerDHParamsFail }
func (ServerDHParamsFail) SerializedLen() int     { return 4 + 16 + 16 + 16 }

func (v ServerDHParamsFail) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorServerDHParamsFail)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendInt128(v.NewNonceHash)
}

// DeserializeServerDHParamsFail parses a ServerDHParamsFail, constructor
// id included.
func DeserializeServerDHParamsFail(r *buffer.Reader) (ServerDHParamsFail, error) {
	var v ServerDHParamsFail
	if err := readConstructor(r, ConstructorServerDHParamsFail); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.NewNonceHash, err = r.Int128(); err != nil {
		return v, err
	}
	return v, nil
}

// ServerDHInnerData is the inner answer decrypted out of
// ServerDHParamsOk.EncryptedAnswer.
type ServerDHInnerData struct {
	Nonce       buffer.Int128
	ServerNonce buffer.Int128
	G           int32
	DhPrime     []byte
	GA          []byte
	ServerTime  int32
}

func (ServerDHInnerData) ConstructorID() uint32 { return ConstructorServerDHInnerData }

func (v ServerDHInnerData) SerializedLen() int {
	return 4 + 16 + 16 + 4 + buffer.ByteStringLen(len(v.DhPrime)) + buffer.ByteStringLen(len(v.GA)) + 4
}

func (v ServerDHInnerData) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorServerDHInnerData)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendI32(v.G)
	buf.AppendByteString(v.DhPrime)
	buf.AppendByteString(v.GA)
	buf.AppendI32(v.ServerTime)
}

// DeserializeServerDHInnerData parses a ServerDHInnerData, constructor
// id included.
func DeserializeServerDHInnerData(r *buffer.Reader) (ServerDHInnerData, error) {
	var v ServerDHInnerData
	if err := readConstructor(r, ConstructorServerDHInnerData); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.G, err = r.I32(); err != nil {
		return v, err
	}
	if v.DhPrime, err = r.ByteString(); err != nil {
		return v, err
	}
	if v.GA, err = r.ByteString(); err != nil {
		return v, err
	}
	if v.ServerTime, err = r.I32(); err != nil {
		return v, err
	}
	return v, nil
}

// ClientDhInnerData is the inner payload AES-IGE-wrapped into
// set_client_DH_params' encrypted_data.
type ClientDhInnerData struct {
	Nonce       buffer.Int128
	ServerNonce buffer.Int128
	RetryID     int64
	GB          []byte
}

func (ClientDhInnerData) ConstructorID() uint32 { return ConstructorClientDHInnerData }

func (v ClientDhInnerData) SerializedLen() int {
	return 4 + 16 + 16 + 8 + buffer.ByteStringLen(len(v.GB))
}

func (v ClientDhInnerData) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorClientDHInnerData)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendI64(v.RetryID)
	buf.AppendByteString(v.GB)
}

// SetClientDHParams sends the client's half of the DH exchange.
type SetClientDHParams struct {
	Nonce         buffer.Int128
	ServerNonce   buffer.Int128
	EncryptedData []byte
}

func (SetClientDHParams) ConstructorID() uint32 { return ConstructorSetClientDHParams }

func (v SetClientDHParams) SerializedLen() int {
	return 4 + 16 + 16 + buffer.ByteStringLen(len(v.EncryptedData))
}

func (v SetClientDHParams) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorSetClientDHParams)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendByteString(v.EncryptedData)
}

// DHGenOk is the server's confirmation that the auth key was derived
// successfully.
type DHGenOk struct {
	Nonce         buffer.Int128
	ServerNonce   buffer.Int128
	NewNonceHash1 buffer.Int128
}

func (DHGenOk) ConstructorID() uint32 { return ConstructorDHGenOk }
func (DHGenOk) SerializedLen() int    { return 4 + 16 + 16 + 16 }

func (v DHGenOk) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorDHGenOk)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendInt128(v.NewNonceHash1)
}

// DeserializeDHGenOk parses a DHGenOk, constructor id included.
func DeserializeDHGenOk(r *buffer.Reader) (DHGenOk, error) {
	var v DHGenOk
	if err := readConstructor(r, ConstructorDHGenOk); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.NewNonceHash1, err = r.Int128(); err != nil {
		return v, err
	}
	return v, nil
}

// DHGenRetry asks the client to retry set_client_DH_params with a fresh b.
type DHGenRetry struct {
	Nonce         buffer.Int128
	ServerNonce   buffer.Int128
	NewNonceHash2 buffer.Int128
}

func (DHGenRetry) ConstructorID() uint32 { return ConstructorDHGenRetry }
func (DHGenRetry) SerializedLen() int    { return 4 + 16 + 16 + 16 }

func (v DHGenRetry) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorDHGenRetry)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendInt128(v.NewNonceHash2)
}

// DeserializeDHGenRetry parses a DHGenRetry, constructor id included.
func DeserializeDHGenRetry(r *buffer.Reader) (DHGenRetry, error) {
	var v DHGenRetry
	if err := readConstructor(r, ConstructorDHGenRetry); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.NewNonceHash2, err = r.Int128(); err != nil {
		return v, err
	}
	return v, nil
}

// DHGenFail is the server's terminal rejection of set_client_DH_params.
type DHGenFail struct {
	Nonce         buffer.Int128
	ServerNonce   buffer.Int128
	NewNonceHash3 buffer.Int128
}

func (DHGenFail) ConstructorID() uint32 { return ConstructorDHGenFail }
func (DHGenFail) SerializedLen() int    { return 4 + 16 + 16 + 16 }

func (v DHGenFail) SerializeInto(buf *buffer.Buffer) {
	buf.AppendU32(ConstructorDHGenFail)
	buf.AppendInt128(v.Nonce)
	buf.AppendInt128(v.ServerNonce)
	buf.AppendInt128(v.NewNonceHash3)
}

// DeserializeDHGenFail parses a DHGenFail, constructor id included.
func DeserializeDHGenFail(r *buffer.Reader) (DHGenFail, error) {
	var v DHGenFail
	if err := readConstructor(r, ConstructorDHGenFail); err != nil {
		return v, err
	}
	var err error
	if v.Nonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.ServerNonce, err = r.Int128(); err != nil {
		return v, err
	}
	if v.NewNonceHash3, err = r.Int128(); err != nil {
		return v, err
	}
	return v, nil
}

// DeserializeSetClientDHParamsAnswer peeks the constructor id and
// dispatches to whichever of DHGenOk/DHGenRetry/DHGenFail it names.
func DeserializeSetClientDHParamsAnswer(buf []byte) (ok *DHGenOk, retry *DHGenRetry, fail *DHGenFail, err error) {
	if len(buf) < 4 {
		return nil, nil, nil, buffer.ErrShortBuffer
	}
	r := buffer.NewReader(buf)
	peek := buffer.NewReader(buf)
	ctor, perr := peek.U32()
	if perr != nil {
		return nil, nil, nil, perr
	}

	switch ctor {
	case ConstructorDHGenOk:
		v, e := DeserializeDHGenOk(r)
		return &v, nil, nil, e
	case ConstructorDHGenRetry:
		v, e := DeserializeDHGenRetry(r)
		return nil, &v, nil, e
	case ConstructorDHGenFail:
		v, e := DeserializeDHGenFail(r)
		return nil, nil, &v, e
	default:
		return nil, nil, nil, ErrUnknownConstructor
	}
}
