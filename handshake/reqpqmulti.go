package handshake

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/schema"
)

// ReqPqMulti is the handshake's opening state: the nonce has been
// chosen and req_pq_multi is ready to send.
type ReqPqMulti struct {
	nonce buffer.Int128
}

// Start begins a handshake with a freshly chosen client nonce.
func Start(nonce buffer.Int128) *ReqPqMulti {
	return &ReqPqMulti{nonce: nonce}
}

// Func returns the req_pq_multi method call to serialize and send.
func (s *ReqPqMulti) Func() schema.ReqPqMulti {
	return schema.ReqPqMulti{Nonce: s.nonce}
}

func withoutLeadingZeros(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	i := 0
	for i < 8 && b[i] == 0 {
		i++
	}
	return b[i:]
}

// ResPq validates the server's resPQ reply and factors pq, yielding the
// next state.
func (s *ReqPqMulti) ResPq(resp schema.ResPq) (*ResPq, error) {
	if resp.Nonce != s.nonce {
		return nil, &Error{Kind: NonceMismatch}
	}
	if len(resp.Pq) != 8 {
		return nil, &Error{Kind: InvalidPqLen}
	}

	var pq uint64
	for _, b := range resp.Pq {
		pq = pq<<8 | uint64(b)
	}

	p, q, err := mtcrypto.Factorize(pq)
	if err != nil {
		return nil, err
	}
	log.Debug("handshake: factored pq", "pq", pq, "p", p, "q", q)

	return &ResPq{
		nonce:                       s.nonce,
		serverNonce:                 resp.ServerNonce,
		serverPublicKeyFingerprints: resp.ServerPublicKeyFingerprints,
		pq:                          resp.Pq,
		p:                           withoutLeadingZeros(p),
		q:                           withoutLeadingZeros(q),
	}, nil
}
