package mtcrypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/dimentyy/hungry-go/buffer"
)

// RsaKey is a server RSA public key as used by the handshake's PQ-inner-
// data wrapping: modulus n, exponent e, and a precomputed fingerprint
// used to select which key the server intends.
type RsaKey struct {
	N, E        *big.Int
	fingerprint int64
}

// CalculateFingerprint computes the protocol's 8-byte key fingerprint:
// the last 8 bytes of SHA-1 over n and e, each serialized with the
// protocol's byte-string framing.
func CalculateFingerprint(n, e *big.Int) int64 {
	buf := buffer.New(512)
	buf.AppendByteString(n.Bytes())
	buf.AppendByteString(e.Bytes())
	h := SHA1(buf.Bytes())
	return int64(binary.LittleEndian.Uint64(h[12:20]))
}

// NewRsaKey validates n and e (n > e > 1, both odd, n a 2048-bit
// modulus) and precomputes the fingerprint.
func NewRsaKey(n, e *big.Int) (*RsaKey, error) {
	if n.Cmp(e) <= 0 || e.Cmp(big.NewInt(1)) <= 0 {
		return nil, errors.New("mtcrypto: rsa key requires n > e > 1")
	}
	if n.Bit(0) == 0 || e.Bit(0) == 0 {
		return nil, errors.New("mtcrypto: rsa key requires odd n and e")
	}
	if n.BitLen() != 2048 {
		return nil, errors.New("mtcrypto: rsa modulus must be 2048 bits")
	}
	return &RsaKey{N: n, E: e, fingerprint: CalculateFingerprint(n, e)}, nil
}

// Fingerprint returns the precomputed 8-byte key fingerprint.
func (k *RsaKey) Fingerprint() int64 { return k.fingerprint }

// KeyAesEncrypted implements the "PQ-inner-data" padding scheme: wraps
// dataWithPadding (192 bytes) under a fresh temp_key and returns the
// 256-byte value to RSA-encrypt, plus whether it landed strictly below
// the modulus. On false, the caller must retry with a new temp_key.
func (k *RsaKey) KeyAesEncrypted(dataWithPadding, dataPadReversed [192]byte, tempKey AesIgeKey) (keyAesEncrypted [256]byte, ok bool) {
	var dataWithHash [224]byte
	copy(dataWithHash[:192], dataPadReversed[:])
	hash := SHA256(tempKey[:], dataWithPadding[:])
	copy(dataWithHash[192:], hash[:])

	AesIgeEncrypt(dataWithHash[:], tempKey, AesIgeIv{})
	aesEncrypted := dataWithHash

	tempKeyXor := SHA256(aesEncrypted[:])
	for i := range tempKeyXor {
		tempKeyXor[i] ^= tempKey[i]
	}

	copy(keyAesEncrypted[:32], tempKeyXor[:])
	copy(keyAesEncrypted[32:], aesEncrypted[:])

	asInt := new(big.Int).SetBytes(keyAesEncrypted[:])
	if asInt.Cmp(k.N) >= 0 {
		return keyAesEncrypted, false
	}
	return keyAesEncrypted, true
}

// EncryptedData raises keyAesEncrypted to the e-th power mod n,
// producing the 256-byte big-endian RSA ciphertext. The returned
// leadingZeros is the count of leading zero bytes the result was
// padded with (already zero in the returned array).
func (k *RsaKey) EncryptedData(keyAesEncrypted [256]byte) (encryptedData [256]byte, leadingZeros int) {
	x := new(big.Int).SetBytes(keyAesEncrypted[:])
	result := new(big.Int).Exp(x, k.E, k.N)

	resultBytes := result.Bytes()
	index := 256 - len(resultBytes)
	copy(encryptedData[index:], resultBytes)
	return encryptedData, index
}

// RandomAesIgeKey returns a fresh random 32-byte key, used to generate
// temp_key candidates during the handshake's RSA-wrap retry loop.
func RandomAesIgeKey() (AesIgeKey, error) {
	var k AesIgeKey
	if _, err := rand.Read(k[:]); err != nil {
		return k, err
	}
	return k, nil
}
