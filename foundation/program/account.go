package program

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountID represents an account id that is used to sign instructions and is
// handed to the program as part of an invocation.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly. The account comes back in its
// checksummed form regardless of the case of the input.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a.Normalize(), nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// Normalize returns the checksummed form of a valid account id. Anything
// else is returned unchanged.
func (a AccountID) Normalize() AccountID {
	if !a.IsAccountID() {
		return a
	}

	return AccountID(common.HexToAddress(string(a)).Hex())
}

// Equal reports whether both ids name the same account, ignoring hex case.
func (a AccountID) Equal(b AccountID) bool {
	return a.Normalize() == b.Normalize()
}

// UnmarshalJSON implements the json.Unmarshaler interface. Valid account ids
// are stored in their checksummed form.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*a = AccountID(s).Normalize()
	return nil
}

// =============================================================================

// AccountInfo is the view of an account the program receives for a single
// invocation. The host decides the signer flag, the program only reads it.
type AccountInfo struct {
	Key      AccountID
	IsSigner bool
}

// NewAccountInfo constructs an account info value for use.
func NewAccountInfo(key AccountID, isSigner bool) AccountInfo {
	return AccountInfo{
		Key:      key,
		IsSigner: isSigner,
	}
}

// SignerKey returns the account id when the account authorized the current
// invocation.
func (ai AccountInfo) SignerKey() (AccountID, bool) {
	if !ai.IsSigner {
		return "", false
	}

	return ai.Key, true
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
