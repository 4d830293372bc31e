package handshake

import (
	"crypto/subtle"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/mtproto"
	"github.com/dimentyy/hungry-go/schema"
)

// SetClientDHParams is ready to send; it keeps b, g_a and dh_prime to
// derive the shared secret locally once a dh_gen_ok arrives.
type SetClientDHParams struct {
	nonce, serverNonce buffer.Int128
	newNonce           buffer.Int256

	b, gA, dhPrime *big.Int
	encrypted      []byte
}

// Func returns the set_client_DH_params method call to serialize and
// send.
func (s *SetClientDHParams) Func() schema.SetClientDHParams {
	return schema.SetClientDHParams{
		Nonce:         s.nonce,
		ServerNonce:   s.serverNonce,
		EncryptedData: s.encrypted,
	}
}

func newNonceHash(newNonce buffer.Int256, number byte, auxHash [8]byte) buffer.Int128 {
	h := mtcrypto.SHA1(newNonce[:], []byte{number}, auxHash[:])
	var out buffer.Int128
	copy(out[:], h[4:20])
	return out
}

func initialSalt(newNonce buffer.Int256, serverNonce buffer.Int128) int64 {
	a := binary.LittleEndian.Uint64(newNonce[0:8])
	b := binary.LittleEndian.Uint64(serverNonce[0:8])
	return int64(a ^ b)
}

// DhGenOk finalizes the handshake: it derives g_ab, builds the AuthKey,
// and verifies the server's new_nonce_hash_1 before trusting it.
// Returns the derived AuthKey and the session's initial salt.
func (s *SetClientDHParams) DhGenOk(resp schema.DHGenOk) (*mtproto.AuthKey, int64, error) {
	if resp.Nonce != s.nonce {
		return nil, 0, &Error{Kind: NonceMismatch}
	}
	if resp.ServerNonce != s.serverNonce {
		return nil, 0, &Error{Kind: ServerNonceMismatch}
	}

	gAB := new(big.Int).Exp(s.gA, s.b, s.dhPrime)
	gabBytes := gAB.Bytes()
	if len(gabBytes) > 256 {
		gabBytes = gabBytes[len(gabBytes)-256:]
	}
	var data [256]byte
	copy(data[256-len(gabBytes):], gabBytes)

	authKey := mtproto.NewAuthKey(data)

	want := newNonceHash(s.newNonce, 1, authKey.AuxHash)
	if subtle.ConstantTimeCompare(want[:], resp.NewNonceHash1[:]) != 1 {
		return nil, 0, &Error{Kind: NewNonceHash1Mismatch}
	}

	salt := initialSalt(s.newNonce, s.serverNonce)
	log.Debug("handshake: dh_gen_ok", "auth_key_id", authKey.IDUint64())

	return authKey, salt, nil
}

// DhGenRetry reports the server's request to retry set_client_DH_params
// with a fresh b; the caller should call ServerDhParamsOk.SetClientDHParams
// again with retryID set to this auth key's aux hash-derived retry id.
// It does not itself verify new_nonce_hash_2 beyond nonce/server_nonce,
// since the retry protocol recomputes everything from a new b.
func (s *SetClientDHParams) DhGenRetry(resp schema.DHGenRetry) error {
	if resp.Nonce != s.nonce {
		return &Error{Kind: NonceMismatch}
	}
	if resp.ServerNonce != s.serverNonce {
		return &Error{Kind: ServerNonceMismatch}
	}
	return ErrDhGenRetry
}

// DhGenFail surfaces the server's terminal rejection of set_client_DH_params.
func (s *SetClientDHParams) DhGenFail(resp schema.DHGenFail) error {
	return &Error{Kind: DhGenFail}
}
