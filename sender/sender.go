// Package sender implements the request scheduler that sits on top of
// mtproto's reader/writer pair: it batches concurrent Invoke calls into
// msg_containers, demultiplexes decrypted replies by msg_id, and
// applies the protocol's bookkeeping messages (new_session_created,
// future_salts, msgs_ack, bad_msg_notification).
package sender

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/semaphore"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtproto"
	"github.com/dimentyy/hungry-go/schema"
)

// containerCapacity bounds how large a single msg_container is allowed
// to grow before Invoke finalizes it and starts a fresh one, mirroring
// the 1 MiB buffer spec.md's container allocation reserves up front.
const containerCapacity = 1 << 20

// Response is delivered to an Invoke caller once the matching
// rpc_result arrives, or once the sender determines the request will
// never be answered (bad_msg_notification, session loss).
type Response struct {
	Result []byte
	Err    error
}

// Config carries everything a Sender needs to own a session: the byte
// stream split into its two halves, the long-lived auth key, the
// current salt, and the session id. There is no file/env-backed
// configuration layer — these are supplied directly by the embedder,
// the same way rlpx.Config is built from already-negotiated values.
type Config struct {
	Reader    io.Reader
	Writer    io.Writer
	AuthKey   *mtproto.AuthKey
	Salt      int64
	SessionID int64

	// MaxOutstanding bounds the number of invocations awaiting a reply
	// at once; Invoke blocks (respecting ctx) past this bound. Zero
	// selects a default of 64.
	MaxOutstanding int64
}

type pendingContainer struct {
	items []mtproto.ContainerItem
	size  int
}

// Sender is single-threaded cooperative, per spec.md §5: Invoke and
// Poll share state with no internal synchronization and must both be
// called from the one goroutine that owns the Sender.
type Sender struct {
	reader *mtproto.Reader
	writer *mtproto.QueuedWriter

	authKey   *mtproto.AuthKey
	salt      int64
	sessionID int64

	msgIDs mtproto.MsgIDs
	seqNos mtproto.SeqNos

	container *pendingContainer

	sem *semaphore.Weighted

	waiters     map[int64]chan Response
	futureSalts []schema.FutureSalt
}

// New constructs a Sender over an already-established auth key and
// session. It does not perform the handshake; see package handshake.
func New(cfg Config) *Sender {
	max := cfg.MaxOutstanding
	if max <= 0 {
		max = 64
	}
	return &Sender{
		reader:    mtproto.NewReader(cfg.Reader),
		writer:    mtproto.NewQueuedWriter(cfg.Writer),
		authKey:   cfg.AuthKey,
		salt:      cfg.Salt,
		sessionID: cfg.SessionID,
		sem:       semaphore.NewWeighted(max),
		waiters:   make(map[int64]chan Response),
	}
}

// Invoke serializes fn, assigns it a msg_id and content-related seq_no,
// and appends it to the current container (finalizing and queuing the
// previous one first if fn would not fit). It never blocks on I/O: the
// only suspension point is acquiring a slot among MaxOutstanding
// concurrently un-replied invocations. The returned channel receives
// exactly one Response once Poll observes the matching rpc_result (or
// a terminal bad_msg_notification, or the sender is closed).
func (s *Sender) Invoke(ctx context.Context, fn schema.Serializable) (int64, <-chan Response, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, nil, err
	}

	payload := serialize(fn)

	msg := mtproto.Msg{
		MsgID: s.msgIDs.NextNow(),
		SeqNo: s.seqNos.NextContentRelated(),
	}

	itemSize := 16 + len(payload)
	if s.container != nil && s.container.size+itemSize > containerCapacity {
		s.finalizeContainer()
	}
	if s.container == nil {
		s.container = &pendingContainer{}
	}
	s.container.items = append(s.container.items, mtproto.ContainerItem{
		MsgID:   msg.MsgID,
		SeqNo:   msg.SeqNo,
		Payload: payload,
	})
	s.container.size += itemSize

	ch := make(chan Response, 1)
	s.waiters[msg.MsgID] = ch

	log.Trace("sender: invoke", "msg_id", msg.MsgID, "seq_no", msg.SeqNo, "len", len(payload))
	return msg.MsgID, ch, nil
}

func serialize(fn schema.Serializable) []byte {
	buf := buffer.New(fn.SerializedLen())
	fn.SerializeInto(buf)
	return buf.Bytes()
}

// finalizeContainer packages the accumulated invocations (if any) into
// one msg_container, assigns it its own outer (msg_id, non-content-
// related seq_no), encrypts it, and enqueues it on the writer.
func (s *Sender) finalizeContainer() {
	if s.container == nil || len(s.container.items) == 0 {
		s.container = nil
		return
	}

	payload := mtproto.PackContainer(s.container.items)
	s.container = nil

	msg := mtproto.Msg{
		MsgID: s.msgIDs.NextNow(),
		SeqNo: s.seqNos.NonContentRelated(),
	}

	frame, err := mtproto.PackEncrypted(s.authKey, s.salt, s.sessionID, msg.MsgID, msg.SeqNo, payload)
	if err != nil {
		log.Error("sender: finalize container", "err", err)
		return
	}
	s.writer.Enqueue(frame)
}

// Poll drives one iteration of I/O: it finalizes and queues a pending
// container if the writer has drained, flushes the writer, then reads
// and dispatches exactly one inbound frame. It blocks on whichever of
// the underlying Read/Write calls the iteration needs. Callers drive a
// Sender by calling Poll in a loop on one goroutine.
func (s *Sender) Poll(ctx context.Context) error {
	if s.writer.Pending() == 0 && s.container != nil {
		s.finalizeContainer()
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	msg, err := s.reader.Next()
	if err != nil {
		return err
	}
	return s.handleTransportMessage(msg)
}

func (s *Sender) handleTransportMessage(msg mtproto.Message) error {
	if msg.Plain != nil {
		return ErrUnexpectedPlainMessage
	}
	enc := msg.Encrypted
	if enc.AuthKeyID != s.authKey.IDUint64() {
		return mtproto.ErrUnexpectedAuthKeyID
	}

	decrypted, err := enc.Decrypt(s.authKey)
	if err != nil {
		return err
	}
	if decrypted.SessionID != s.sessionID {
		return mtproto.ErrUnexpectedSessionID
	}

	return s.dispatch(decrypted.Data)
}

// deliver sends resp to msg_id's waiter, if one is registered, and
// releases its outstanding-invocation slot.
func (s *Sender) deliver(msgID int64, resp Response) {
	ch, ok := s.waiters[msgID]
	if !ok {
		log.Warn("sender: reply for unknown msg_id", "msg_id", msgID)
		return
	}
	delete(s.waiters, msgID)
	ch <- resp
	close(ch)
	s.sem.Release(1)
}

// Close cancels every outstanding invocation with err, the way
// dropping the sender cancels pending reads/writes per spec.md §5.
func (s *Sender) Close(err error) {
	for msgID, ch := range s.waiters {
		delete(s.waiters, msgID)
		ch <- Response{Err: err}
		close(ch)
		s.sem.Release(1)
	}
}
