package signature_test

import (
	"testing"

	"github.com/ardanlabs/tolower/foundation/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := struct {
		Data string
	}{
		Data: "AbaCAba",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	account, err := signature.FromAccount(value, v, r, s)
	if err != nil {
		t.Fatalf("Should be able to generate from account: %s", err)
	}

	if from != account {
		t.Logf("got: %s", account)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right account.")
	}

	str := signature.SignatureString(v, r, s)

	v2, r2, s2, err := signature.ToVRSFromHexSignature(str)
	if err != nil {
		t.Fatalf("Should be able to decode the signature string: %s", err)
	}

	if v.Cmp(v2) != 0 || r.Cmp(r2) != 0 || s.Cmp(s2) != 0 {
		t.Fatalf("Should get back the same signature values.")
	}
}

func Test_TamperedData(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign("AbaCAba", pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	account, err := signature.FromAccount("abacaba", v, r, s)
	if err == nil && account == from {
		t.Fatalf("Should not recover the signer from different data.")
	}
}

func Test_BadSignatureString(t *testing.T) {
	if _, _, _, err := signature.ToVRSFromHexSignature("0x1234"); err == nil {
		t.Fatalf("Should not accept a short signature.")
	}

	if _, _, _, err := signature.ToVRSFromHexSignature("nothex"); err == nil {
		t.Fatalf("Should not accept a non hex signature.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}
