package envelope

import (
	"bytes"
	"testing"

	"github.com/dimentyy/hungry-go/buffer"
)

type fixedSize struct{ header, footer int }

func (s fixedSize) Header() int { return s.header }
func (s fixedSize) Footer() int { return s.footer }

func TestSplitAdaptUnsplitRoundTrip(t *testing.T) {
	size := fixedSize{header: 4, footer: 8}
	buf := buffer.New(64)

	env := Split(buf, size)
	copy(env.HeaderBytes(), []byte{1, 2, 3, 4})

	payload := []byte("hello, world")
	buf.Append(payload)

	excess := env.Adapt(buf)
	if excess == nil {
		t.Fatal("expected excess from a buffer not filled to capacity")
	}

	copy(env.FooterBytes(), bytes.Repeat([]byte{0xFF}, size.Footer()))

	env.Unsplit(buf, excess)

	got := buf.Bytes()
	if len(got) != size.Header()+len(payload)+size.Footer() {
		t.Fatalf("unexpected joined length %d", len(got))
	}
	if !bytes.Equal(got[:4], []byte{1, 2, 3, 4}) {
		t.Fatalf("header corrupted: %x", got[:4])
	}
	if !bytes.Equal(got[4:4+len(payload)], payload) {
		t.Fatalf("payload corrupted: %s", got[4:4+len(payload)])
	}
	if !bytes.Equal(got[4+len(payload):], bytes.Repeat([]byte{0xFF}, size.Footer())) {
		t.Fatalf("footer corrupted: %x", got[4+len(payload):])
	}
}

func TestUnsplitBeforeAdaptPanics(t *testing.T) {
	size := fixedSize{header: 4, footer: 4}
	buf := buffer.New(32)
	env := Split(buf, size)
	buf.Append([]byte("x"))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic unsplitting a non-full buffer")
		}
	}()
	env.Unsplit(buf, nil)
}
