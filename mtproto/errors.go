package mtproto

import "errors"

// ErrMsgKeyMismatch is returned by EncryptedMessage.Decrypt when the
// recomputed msg_key disagrees with the one carried on the wire. The
// frame must be discarded without further parsing.
var ErrMsgKeyMismatch = errors.New("mtproto: msg_key verification failed")

// ErrUnexpectedAuthKeyID is returned when an encrypted message's outer
// auth_key_id does not match the session's current key.
var ErrUnexpectedAuthKeyID = errors.New("mtproto: unexpected auth_key_id")

// ErrUnexpectedSessionID is returned when a decrypted message's
// session_id does not match the session's own id.
var ErrUnexpectedSessionID = errors.New("mtproto: unexpected session_id")

// ErrPlainOnAuthenticatedSession is returned when a plain message
// arrives after the session has an established auth key.
var ErrPlainOnAuthenticatedSession = errors.New("mtproto: plain message on authenticated session")

// ErrUnexpectedEncryptedMessage is returned by the plain-send helper
// when the peer responds with an encrypted message during key exchange.
var ErrUnexpectedEncryptedMessage = errors.New("mtproto: unexpected encrypted message during plain exchange")

// ErrUnexpectedQuickAck is returned when a dispatcher sees a QuickAck
// unpack and has no quick-ack-capable transport to route it through.
var ErrUnexpectedQuickAck = errors.New("mtproto: unexpected quick ack")
