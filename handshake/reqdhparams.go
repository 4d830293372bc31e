package handshake

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/schema"
)

// ReqDHParams has the inner PQInnerData ready to RSA-wrap. Each
// KeyAesEncrypted call is a single attempt; the caller repeats it with a
// fresh temp_key until it succeeds, then builds req_DH_params with Func.
type ReqDHParams struct {
	nonce, serverNonce buffer.Int128
	p, q               []byte
	key                *mtcrypto.RsaKey

	dataWithPadding [192]byte
	dataPadReversed [192]byte

	encryptedData [256]byte
}

// KeyAesEncrypted attempts the PQ-inner-data RSA wrap under tempKey,
// reporting success. On failure the caller must retry with a fresh
// temp_key (mtcrypto.RandomAesIgeKey).
func (s *ReqDHParams) KeyAesEncrypted(tempKey mtcrypto.AesIgeKey) (keyAesEncrypted [256]byte, ok bool) {
	return s.key.KeyAesEncrypted(s.dataWithPadding, s.dataPadReversed, tempKey)
}

// Func finalizes req_DH_params with the successful RSA wrap's output.
func (s *ReqDHParams) Func(keyAesEncrypted [256]byte) schema.ReqDHParams {
	encrypted, leadingZeros := s.key.EncryptedData(keyAesEncrypted)
	s.encryptedData = encrypted
	_ = leadingZeros // already zero-filled by EncryptedData

	return schema.ReqDHParams{
		Nonce:                s.nonce,
		ServerNonce:           s.serverNonce,
		P:                    s.p,
		Q:                    s.q,
		PublicKeyFingerprint: s.key.Fingerprint(),
		EncryptedData:        s.encryptedData[:],
	}
}

func computeTmpAesParams(serverNonce [16]byte, newNonce [32]byte) (mtcrypto.AesIgeKey, mtcrypto.AesIgeIv) {
	newServer := mtcrypto.SHA1(newNonce[:], serverNonce[:])
	serverNew := mtcrypto.SHA1(serverNonce[:], newNonce[:])
	newNew := mtcrypto.SHA1(newNonce[:], newNonce[:])

	var key mtcrypto.AesIgeKey
	copy(key[:20], newServer[:])
	copy(key[20:32], serverNew[:12])

	var iv mtcrypto.AesIgeIv
	copy(iv[:8], serverNew[12:20])
	copy(iv[8:28], newNew[:])
	copy(iv[28:32], newNonce[:4])

	return key, iv
}

// ServerDhParamsOk validates and decrypts the server's successful reply
// to req_DH_params, yielding the state that can build
// set_client_DH_params.
func (s *ReqDHParams) ServerDhParamsOk(newNonce buffer.Int256, resp schema.ServerDHParamsOk) (*ServerDhParamsOk, error) {
	if resp.Nonce != s.nonce {
		return nil, &Error{Kind: NonceMismatch}
	}
	if resp.ServerNonce != s.serverNonce {
		return nil, &Error{Kind: ServerNonceMismatch}
	}
	if len(resp.EncryptedAnswer)%16 != 0 {
		return nil, &Error{Kind: InvalidEncryptedAnswerLength}
	}

	tmpAesKey, tmpAesIV := computeTmpAesParams(s.serverNonce, newNonce)

	answerWithHash := append([]byte(nil), resp.EncryptedAnswer...)
	mtcrypto.AesIgeDecrypt(answerWithHash, tmpAesKey, tmpAesIV)

	if len(answerWithHash) < 20 {
		return nil, &Error{Kind: InvalidEncryptedAnswerLength}
	}

	r := buffer.NewReader(answerWithHash[20:])
	before := r.Len()
	answer, err := schema.DeserializeServerDHInnerData(r)
	if err != nil {
		return nil, &Error{Kind: InnerDeserialization, Cause: err}
	}
	consumed := before - r.Len()

	answerHash := mtcrypto.SHA1(answerWithHash[20 : 20+consumed])
	if answerHash != [20]byte(answerWithHash[:20]) {
		return nil, &Error{Kind: AnswerHashMismatch}
	}

	if answer.Nonce != s.nonce {
		return nil, &Error{Kind: InnerNonceMismatch}
	}
	if answer.ServerNonce != s.serverNonce {
		return nil, &Error{Kind: InnerServerNonceMismatch}
	}

	log.Debug("handshake: server dh params ok", "server_time", answer.ServerTime)

	return &ServerDhParamsOk{
		nonce:       s.nonce,
		serverNonce: s.serverNonce,
		newNonce:    newNonce,
		tmpAesKey:   tmpAesKey,
		tmpAesIV:    tmpAesIV,
		g:           answer.G,
		dhPrime:     answer.DhPrime,
		gA:          answer.GA,
		serverTime:  answer.ServerTime,
	}, nil
}

// ServerDhParamsFail surfaces the server's terminal rejection.
func (s *ReqDHParams) ServerDhParamsFail(resp schema.ServerDHParamsFail) error {
	return &Error{Kind: ServerDhParamsFail}
}
