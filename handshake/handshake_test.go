package handshake

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/dimentyy/hungry-go/buffer"
	"github.com/dimentyy/hungry-go/mtcrypto"
	"github.com/dimentyy/hungry-go/mtproto"
	"github.com/dimentyy/hungry-go/schema"
)

const testRsaModulusDecimal = "25342889448840415564971689590713473206898847759084779052582026594546022463" +
	"8539405858852159511684919657082226493991806038180742006204637761354248846321625124031637930" +
	"8392164163156474095952941935959585294116684894058595233761333302239609658411795489221603122" +
	"9237302943701877588456738335398602461675225081791820393153757504952636234951323237820036543" +
	"5810478269061209279724873668052921157922314236842612623303943247507854509425897517553901566" +
	"4775146071935143996905994956961530280905072150033023900507788985532391750994825572208164468" +
	"9442127297605422579707142646660768825302832201908302295573257427896031830742328565032949"

func testRsaKey(t *testing.T) *mtcrypto.RsaKey {
	t.Helper()
	n, ok := new(big.Int).SetString(testRsaModulusDecimal, 10)
	if !ok {
		t.Fatal("invalid modulus literal")
	}
	key, err := mtcrypto.NewRsaKey(n, big.NewInt(65537))
	if err != nil {
		t.Fatalf("NewRsaKey: %v", err)
	}
	return key
}

func randInt128(t *testing.T) buffer.Int128 {
	t.Helper()
	var v buffer.Int128
	if _, err := rand.Read(v[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return v
}

func randInt256(t *testing.T) buffer.Int256 {
	t.Helper()
	var v buffer.Int256
	if _, err := rand.Read(v[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return v
}

func TestReqPqMultiResPq(t *testing.T) {
	nonce := randInt128(t)
	state := Start(nonce)
	if state.Func().Nonce != nonce {
		t.Fatal("req_pq_multi did not carry the chosen nonce")
	}

	serverNonce := randInt128(t)
	resp := schema.ResPq{
		Nonce:                       nonce,
		ServerNonce:                 serverNonce,
		Pq:                          []byte{0, 0, 0, 0, 0, 0, 0, 15},
		ServerPublicKeyFingerprints: []int64{1, 2, 3},
	}

	next, err := state.ResPq(resp)
	if err != nil {
		t.Fatalf("ResPq: %v", err)
	}
	if next.serverNonce != serverNonce {
		t.Fatal("server_nonce not carried forward")
	}

	gotP := new(big.Int).SetBytes(next.p).Int64()
	gotQ := new(big.Int).SetBytes(next.q).Int64()
	if gotP > gotQ {
		gotP, gotQ = gotQ, gotP
	}
	if gotP*gotQ != 15 {
		t.Fatalf("factorization product = %d, want 15", gotP*gotQ)
	}
}

func TestResPqRejectsNonceMismatch(t *testing.T) {
	state := Start(randInt128(t))
	resp := schema.ResPq{Nonce: randInt128(t), Pq: make([]byte, 8)}
	_, err := state.ResPq(resp)
	he, ok := err.(*Error)
	if !ok || he.Kind != NonceMismatch {
		t.Fatalf("err = %v, want NonceMismatch", err)
	}
}

func TestResPqRejectsShortPq(t *testing.T) {
	state := Start(randInt128(t))
	nonce := state.nonce
	resp := schema.ResPq{Nonce: nonce, Pq: []byte{1, 2, 3}}
	_, err := state.ResPq(resp)
	he, ok := err.(*Error)
	if !ok || he.Kind != InvalidPqLen {
		t.Fatalf("err = %v, want InvalidPqLen", err)
	}
}

func TestReqDHParamsRejectsUnknownFingerprint(t *testing.T) {
	rp := &ResPq{
		nonce:                       randInt128(t),
		serverNonce:                 randInt128(t),
		serverPublicKeyFingerprints: []int64{12345},
		pq:                          []byte{0, 0, 0, 0, 0, 0, 0, 15},
		p:                           []byte{3},
		q:                           []byte{5},
	}
	var padding [192]byte
	_, err := rand.Read(padding[:])
	if err != nil {
		t.Fatalf("rand: %v", err)
	}
	_, err = rp.ReqDHParams(padding, randInt256(t), testRsaKey(t))
	if err != ErrNoMatchingPublicKey {
		t.Fatalf("err = %v, want ErrNoMatchingPublicKey", err)
	}
}

// buildReqDHParams drives ResPq.ReqDHParams through its RSA-wrap retry
// loop to a successful key_aes_encrypted, the way a real client would.
func buildReqDHParams(t *testing.T) (*ReqDHParams, buffer.Int128, buffer.Int128, buffer.Int256) {
	t.Helper()
	key := testRsaKey(t)
	nonce := randInt128(t)
	serverNonce := randInt128(t)
	newNonce := randInt256(t)

	rp := &ResPq{
		nonce:                       nonce,
		serverNonce:                 serverNonce,
		serverPublicKeyFingerprints: []int64{key.Fingerprint()},
		pq:                          []byte{0, 0, 0, 0, 0, 0, 0, 15},
		p:                           []byte{3},
		q:                           []byte{5},
	}

	var padding [192]byte
	if _, err := rand.Read(padding[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}

	state, err := rp.ReqDHParams(padding, newNonce, key)
	if err != nil {
		t.Fatalf("ReqDHParams: %v", err)
	}

	for i := 0; i < 64; i++ {
		tempKey, err := mtcrypto.RandomAesIgeKey()
		if err != nil {
			t.Fatalf("RandomAesIgeKey: %v", err)
		}
		keyAesEncrypted, ok := state.KeyAesEncrypted(tempKey)
		if ok {
			fn := state.Func(keyAesEncrypted)
			if fn.PublicKeyFingerprint != key.Fingerprint() {
				t.Fatalf("fingerprint = %d, want %d", fn.PublicKeyFingerprint, key.Fingerprint())
			}
			return state, nonce, serverNonce, newNonce
		}
	}
	t.Fatal("key_aes_encrypted never landed below the modulus after 64 attempts")
	return nil, buffer.Int128{}, buffer.Int128{}, buffer.Int256{}
}

// buildServerDhAnswer simulates the server's half of req_DH_params: a
// small test-sized DH group so the exchange is tractable without
// running real 2048-bit modexp in a loop.
func buildServerDhAnswer(t *testing.T, nonce, serverNonce buffer.Int128, newNonce buffer.Int256) (encryptedAnswer []byte, g int32, dhPrime []byte, gA []byte, serverTime int32) {
	t.Helper()
	g = 5
	dhPrime = big.NewInt(2147483647).Bytes() // a prime, small enough for a fast test modexp
	a := big.NewInt(12345)
	gA = new(big.Int).Exp(big.NewInt(int64(g)), a, new(big.Int).SetBytes(dhPrime)).Bytes()
	serverTime = 1700000000

	inner := schema.ServerDHInnerData{
		Nonce:       nonce,
		ServerNonce: serverNonce,
		G:           g,
		DhPrime:     dhPrime,
		GA:          gA,
		ServerTime:  serverTime,
	}
	buf := buffer.New(inner.SerializedLen())
	inner.SerializeInto(buf)
	data := buf.Bytes()

	answerWithHash := sha1AndData(data)
	pad := (16 - len(answerWithHash)%16) % 16
	if pad > 0 {
		padding := make([]byte, pad)
		if _, err := rand.Read(padding); err != nil {
			t.Fatalf("rand: %v", err)
		}
		answerWithHash = append(answerWithHash, padding...)
	}

	tmpAesKey, tmpAesIV := computeTmpAesParams(serverNonce, newNonce)
	mtcrypto.AesIgeEncrypt(answerWithHash, tmpAesKey, tmpAesIV)
	return answerWithHash, g, dhPrime, gA, serverTime
}

func TestServerDhParamsOkRoundTrip(t *testing.T) {
	state, nonce, serverNonce, newNonce := buildReqDHParams(t)
	encryptedAnswer, g, dhPrime, gA, serverTime := buildServerDhAnswer(t, nonce, serverNonce, newNonce)

	resp := schema.ServerDHParamsOk{
		Nonce:           nonce,
		ServerNonce:     serverNonce,
		EncryptedAnswer: encryptedAnswer,
	}

	okState, err := state.ServerDhParamsOk(newNonce, resp)
	if err != nil {
		t.Fatalf("ServerDhParamsOk: %v", err)
	}
	if okState.g != g {
		t.Fatalf("g = %d, want %d", okState.g, g)
	}
	if !bytes.Equal(okState.dhPrime, dhPrime) {
		t.Fatal("dh_prime mismatch")
	}
	if !bytes.Equal(okState.gA, gA) {
		t.Fatal("g_a mismatch")
	}
	if okState.serverTime != serverTime {
		t.Fatalf("server_time = %d, want %d", okState.serverTime, serverTime)
	}
}

func TestServerDhParamsOkRejectsCorruptAnswer(t *testing.T) {
	state, nonce, serverNonce, newNonce := buildReqDHParams(t)
	encryptedAnswer, _, _, _, _ := buildServerDhAnswer(t, nonce, serverNonce, newNonce)
	encryptedAnswer[5] ^= 0xFF

	resp := schema.ServerDHParamsOk{
		Nonce:           nonce,
		ServerNonce:     serverNonce,
		EncryptedAnswer: encryptedAnswer,
	}
	_, err := state.ServerDhParamsOk(newNonce, resp)
	if err == nil {
		t.Fatal("expected an error for a corrupted encrypted_answer")
	}
}

func TestServerDhParamsOkRejectsBadEncryptedAnswerLength(t *testing.T) {
	state, nonce, serverNonce, newNonce := buildReqDHParams(t)
	resp := schema.ServerDHParamsOk{
		Nonce:           nonce,
		ServerNonce:     serverNonce,
		EncryptedAnswer: make([]byte, 17),
	}
	_, err := state.ServerDhParamsOk(newNonce, resp)
	he, ok := err.(*Error)
	if !ok || he.Kind != InvalidEncryptedAnswerLength {
		t.Fatalf("err = %v, want InvalidEncryptedAnswerLength", err)
	}
}

func buildServerDhParamsOkState(t *testing.T) (*ServerDhParamsOk, buffer.Int128, buffer.Int128, buffer.Int256) {
	t.Helper()
	state, nonce, serverNonce, newNonce := buildReqDHParams(t)
	encryptedAnswer, _, _, _, _ := buildServerDhAnswer(t, nonce, serverNonce, newNonce)
	resp := schema.ServerDHParamsOk{Nonce: nonce, ServerNonce: serverNonce, EncryptedAnswer: encryptedAnswer}
	okState, err := state.ServerDhParamsOk(newNonce, resp)
	if err != nil {
		t.Fatalf("ServerDhParamsOk: %v", err)
	}
	return okState, nonce, serverNonce, newNonce
}

func TestSetClientDHParamsDhGenOk(t *testing.T) {
	okState, nonce, serverNonce, newNonce := buildServerDhParamsOkState(t)

	setState, err := okState.SetClientDHParams(0)
	if err != nil {
		t.Fatalf("SetClientDHParams: %v", err)
	}
	if setState.Func().Nonce != nonce || setState.Func().ServerNonce != serverNonce {
		t.Fatal("set_client_DH_params did not carry nonce/server_nonce")
	}

	gAB := new(big.Int).Exp(setState.gA, setState.b, setState.dhPrime)
	gabBytes := gAB.Bytes()
	var data [256]byte
	copy(data[256-len(gabBytes):], gabBytes)

	want := expectedNewNonceHash1(t, data, newNonce)

	resp := schema.DHGenOk{Nonce: nonce, ServerNonce: serverNonce, NewNonceHash1: want}
	authKey, salt, err := setState.DhGenOk(resp)
	if err != nil {
		t.Fatalf("DhGenOk: %v", err)
	}
	if authKey == nil {
		t.Fatal("authKey is nil")
	}
	if salt != initialSalt(newNonce, serverNonce) {
		t.Fatalf("salt = %d, want %d", salt, initialSalt(newNonce, serverNonce))
	}
}

func expectedNewNonceHash1(t *testing.T, authKeyData [256]byte, newNonce buffer.Int256) buffer.Int128 {
	t.Helper()
	ak := mtproto.NewAuthKey(authKeyData)
	return newNonceHash(newNonce, 1, ak.AuxHash)
}

func TestSetClientDHParamsDhGenOkRejectsHashMismatch(t *testing.T) {
	okState, nonce, serverNonce, _ := buildServerDhParamsOkState(t)
	setState, err := okState.SetClientDHParams(0)
	if err != nil {
		t.Fatalf("SetClientDHParams: %v", err)
	}

	var badHash buffer.Int128
	resp := schema.DHGenOk{Nonce: nonce, ServerNonce: serverNonce, NewNonceHash1: badHash}
	_, _, err = setState.DhGenOk(resp)
	he, ok := err.(*Error)
	if !ok || he.Kind != NewNonceHash1Mismatch {
		t.Fatalf("err = %v, want NewNonceHash1Mismatch", err)
	}
}

func TestSetClientDHParamsDhGenRetry(t *testing.T) {
	okState, nonce, serverNonce, _ := buildServerDhParamsOkState(t)
	setState, err := okState.SetClientDHParams(0)
	if err != nil {
		t.Fatalf("SetClientDHParams: %v", err)
	}
	resp := schema.DHGenRetry{Nonce: nonce, ServerNonce: serverNonce}
	if err := setState.DhGenRetry(resp); err != ErrDhGenRetry {
		t.Fatalf("err = %v, want ErrDhGenRetry", err)
	}
}

func TestSetClientDHParamsDhGenFail(t *testing.T) {
	okState, nonce, serverNonce, _ := buildServerDhParamsOkState(t)
	setState, err := okState.SetClientDHParams(0)
	if err != nil {
		t.Fatalf("SetClientDHParams: %v", err)
	}
	resp := schema.DHGenFail{Nonce: nonce, ServerNonce: serverNonce}
	err = setState.DhGenFail(resp)
	he, ok := err.(*Error)
	if !ok || he.Kind != DhGenFail {
		t.Fatalf("err = %v, want DhGenFail", err)
	}
}
