package sender

import (
	"errors"
	"fmt"
)

// ErrUnexpectedPlainMessage is returned when a plain (unauthenticated)
// message arrives on an already-established session.
var ErrUnexpectedPlainMessage = errors.New("sender: unexpected plain message on authenticated session")

// BadMsgError is delivered to an Invoke waiter when the server rejects
// the request via bad_msg_notification instead of answering it.
type BadMsgError struct {
	MsgID     int64
	ErrorCode int32
}

func (e *BadMsgError) Error() string {
	return fmt.Sprintf("sender: bad_msg_notification for msg_id %d: error_code %d", e.MsgID, e.ErrorCode)
}
