package handshake

import (
	"crypto/rand"
	"math/big"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/schema"
)

// ServerDhParamsOk holds the decrypted DH parameters the server offered;
// the client still owes it b and g_b.
type ServerDhParamsOk struct {
	nonce, serverNonce buffer.Int128
	newNonce           buffer.Int256

	tmpAesKey mtcrypto.AesIgeKey
	tmpAesIV  mtcrypto.AesIgeIv

	g          int32
	dhPrime    []byte
	gA         []byte
	serverTime int32
}

// bAndGb picks a random exponent b in [2, dh_prime-2] and computes
// g_b = g^b mod dh_prime.
func bAndGb(g int32, dhPrime []byte) (b, gb *big.Int, err error) {
	prime := new(big.Int).SetBytes(dhPrime)
	max := new(big.Int).Sub(prime, big.NewInt(3))

	b, err = rand.Int(rand.Reader, max)
	if err != nil {
		return nil, nil, err
	}
	b.Add(b, big.NewInt(2))

	gb = new(big.Int).Exp(big.NewInt(int64(g)), b, prime)
	return b, gb, nil
}

func sha1AndData(data []byte) []byte {
	hash := mtcrypto.SHA1(data)
	out := make([]byte, 20+len(data))
	copy(out[:20], hash[:])
	copy(out[20:], data)
	return out
}

// SetClientDHParams computes the client's half of the exchange and
// returns the ready-to-send set_client_DH_params state. retryID is 0 on
// the first attempt, and the previous attempt's auth_key_aux_hash on a
// dh_gen_retry.
func (s *ServerDhParamsOk) SetClientDHParams(retryID int64) (*SetClientDHParams, error) {
	b, gb, err := bAndGb(s.g, s.dhPrime)
	if err != nil {
		return nil, err
	}

	inner := schema.ClientDhInnerData{
		Nonce:       s.nonce,
		ServerNonce: s.serverNonce,
		RetryID:     retryID,
		GB:          gb.Bytes(),
	}

	buf := buffer.New(inner.SerializedLen())
	inner.SerializeInto(buf)
	data := buf.Bytes()

	dataWithHash := sha1AndData(data)
	pad := (16 - len(dataWithHash)%16) % 16
	if pad > 0 {
		padding := make([]byte, pad)
		if _, err := rand.Read(padding); err != nil {
			return nil, err
		}
		dataWithHash = append(dataWithHash, padding...)
	}

	mtcrypto.AesIgeEncrypt(dataWithHash, s.tmpAesKey, s.tmpAesIV)

	return &SetClientDHParams{
		nonce:       s.nonce,
		serverNonce: s.serverNonce,
		newNonce:    s.newNonce,
		b:           b,
		gA:          new(big.Int).SetBytes(s.gA),
		dhPrime:     new(big.Int).SetBytes(s.dhPrime),
		encrypted:   dataWithHash,
	}, nil
}
