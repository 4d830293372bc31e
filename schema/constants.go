package schema

import "errors"

// Reserved constructor ids every generated schema carries regardless of
// which RPC methods it covers.
const (
	ConstructorBoolTrue     uint32 = 0x997275b5
	ConstructorBoolFalse    uint32 = 0xbc799737
	ConstructorVector       uint32 = 0x1cb5c415
	ConstructorMsgContainer uint32 = 0x73f1f8dc
)

// Handshake method/type constructor ids.
const (
	ConstructorReqPqMulti        uint32 = 0xbe7e8ef1
	ConstructorResPq             uint32 = 0x05162463
	ConstructorPQInnerData       uint32 = 0x83c95aec
	ConstructorReqDHParams       uint32 = 0xd712e4be
	ConstructorServerDHParamsOk  uint32 = 0xd0e8075c
	ConstructorServerDHParamsFail uint32 = 0x79cb045d
	ConstructorServerDHInnerData uint32 = 0xb5890dba
	ConstructorClientDHInnerData uint32 = 0x6643b654
	ConstructorSetClientDHParams uint32 = 0xf5045f1f
	ConstructorDHGenOk           uint32 = 0x3bcbf734
	ConstructorDHGenRetry        uint32 = 0x46dc1fb9
	ConstructorDHGenFail         uint32 = 0xa69dae02
)

// Bookkeeping constructor ids the sender dispatches on.
const (
	ConstructorNewSessionCreated   uint32 = 0x9ec20908
	ConstructorRPCResult           uint32 = 0xf35c6d01
	ConstructorFutureSalt          uint32 = 0x0949d9dc
	ConstructorFutureSalts         uint32 = 0xae500895
	ConstructorMsgsAck             uint32 = 0x62d6b459
	ConstructorBadMsgNotification  uint32 = 0xa7eff811
	ConstructorBadServerSalt       uint32 = 0xedab447b
)

// ErrUnknownConstructor is returned by a Deserialize function when the
// leading constructor id does not match the type being parsed.
var ErrUnknownConstructor = errors.New("schema: unknown constructor id")
