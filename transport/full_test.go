package transport

import (
	"bytes"
	"testing"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/envelope"
)

func pack(t *testing.T, w *Full, payload []byte) []byte {
	t.Helper()
	buf := buffer.New(EnvelopeSize{}.Header() + len(payload) + EnvelopeSize{}.Footer() + 16)
	env := envelope.Split(buf, EnvelopeSize{})
	buf.Append(payload)
	frame, _ := w.Pack(buf, env)
	return append([]byte(nil), frame...)
}

func TestTransportRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{1, 2, 3},
		bytes.Repeat([]byte{0x42}, 100),
	}

	writer := NewFull()
	reader := NewFull()

	for i, payload := range payloads {
		frame := pack(t, writer, payload)

		out := reader.Unpack(frame)
		if out.NeedMore != 0 {
			t.Fatalf("payload %d: unexpected NeedMore %d", i, out.NeedMore)
		}
		if out.Err != nil {
			t.Fatalf("payload %d: unexpected error %v", i, out.Err)
		}
		if !bytes.Equal(out.Result.Packet.Data, payload) {
			t.Fatalf("payload %d: got %x want %x", i, out.Result.Packet.Data, payload)
		}
	}
}

func TestTransportIncompleteFrameRequestsMore(t *testing.T) {
	writer := NewFull()
	frame := pack(t, writer, []byte("hello"))

	reader := NewFull()
	out := reader.Unpack(frame[:2])
	if out.NeedMore != DefaultBufLen {
		t.Fatalf("expected NeedMore %d, got %d", DefaultBufLen, out.NeedMore)
	}

	out = reader.Unpack(frame[:len(frame)-1])
	if out.NeedMore != len(frame) {
		t.Fatalf("expected NeedMore %d, got %d", len(frame), out.NeedMore)
	}
}

func TestTransportBadCRCDoesNotAdvanceSeq(t *testing.T) {
	writer := NewFull()
	frame := pack(t, writer, []byte("hello, world"))

	corrupt := append([]byte(nil), frame...)
	corrupt[len(corrupt)-1] ^= 0x01

	reader := NewFull()
	out := reader.Unpack(corrupt)
	if out.Err == nil {
		t.Fatal("expected BadCrc error")
	}
	terr, ok := out.Err.(*Error)
	if !ok || terr.Kind != BadCRC {
		t.Fatalf("expected BadCrc, got %v", out.Err)
	}
	if terr.ReceivedCRC == terr.ComputedCRC {
		t.Fatal("received and computed crc must differ")
	}
	if reader.readSeq != 0 {
		t.Fatalf("seq must not advance on bad crc, got %d", reader.readSeq)
	}

	// The same (uncorrupted) frame must still unpack successfully
	// afterward, proving the reader's seq state was untouched.
	out = reader.Unpack(frame)
	if out.Err != nil {
		t.Fatalf("unexpected error after bad crc: %v", out.Err)
	}
}
