package handshake

import (
	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/schema"
)

// ResPq holds the factored pq and server-offered key fingerprints,
// ready to select a key and build req_DH_params.
type ResPq struct {
	nonce                       buffer.Int128
	serverNonce                 buffer.Int128
	serverPublicKeyFingerprints []int64
	pq                          []byte
	p, q                        []byte
}

// ServerPublicKeyFingerprints returns the fingerprints the server
// offered, for key selection by the caller.
func (s *ResPq) ServerPublicKeyFingerprints() []int64 { return s.serverPublicKeyFingerprints }

// ReqDHParams selects key (which must have a fingerprint the server
// offered), builds p_q_inner_data, serializes it into randomPadding's
// first bytes (the rest stays as padding), and reverses it to form
// data_pad_reversed.
func (s *ResPq) ReqDHParams(randomPadding [192]byte, newNonce buffer.Int256, key *mtcrypto.RsaKey) (*ReqDHParams, error) {
	found := false
	for _, fp := range s.serverPublicKeyFingerprints {
		if fp == key.Fingerprint() {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoMatchingPublicKey
	}

	inner := schema.PQInnerData{
		Pq:          s.pq,
		P:           s.p,
		Q:           s.q,
		Nonce:       s.nonce,
		ServerNonce: s.serverNonce,
		NewNonce:    newNonce,
	}
	if inner.SerializedLen() > 144 {
		panic("handshake: p_q_inner_data exceeds the 144-byte padding budget")
	}

	buf := buffer.Wrap(randomPadding[:0])
	inner.SerializeInto(buf)
	dataWithPadding := randomPadding

	var dataPadReversed [192]byte
	for i, b := range dataWithPadding {
		dataPadReversed[191-i] = b
	}

	return &ReqDHParams{
		nonce:            s.nonce,
		serverNonce:      s.serverNonce,
		p:                s.p,
		q:                s.q,
		key:              key,
		dataWithPadding:  dataWithPadding,
		dataPadReversed:  dataPadReversed,
	}, nil
}
