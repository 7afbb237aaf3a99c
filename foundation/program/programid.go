package program

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// ProgramIDLength is the number of bytes in a program id.
const ProgramIDLength = 32

// ProgramID identifies the program being executed. It is rendered in base58
// the way on-chain program addresses usually are.
type ProgramID [ProgramIDLength]byte

// NewProgramID derives a deterministic program id from a seed string.
func NewProgramID(seed string) ProgramID {
	var pid ProgramID
	copy(pid[:], crypto.Keccak256([]byte(seed)))
	return pid
}

// ToProgramID decodes a base58 string into a program id.
func ToProgramID(s string) (ProgramID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ProgramID{}, fmt.Errorf("decoding program id: %w", err)
	}

	if len(b) != ProgramIDLength {
		return ProgramID{}, fmt.Errorf("invalid program id length: got %d, exp %d", len(b), ProgramIDLength)
	}

	var pid ProgramID
	copy(pid[:], b)
	return pid, nil
}

// String implements the fmt.Stringer interface.
func (pid ProgramID) String() string {
	return base58.Encode(pid[:])
}

// IsZero reports whether no program id was provided.
func (pid ProgramID) IsZero() bool {
	return pid == ProgramID{}
}

// MarshalJSON implements the json.Marshaler interface.
func (pid ProgramID) MarshalJSON() ([]byte, error) {
	return json.Marshal(pid.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pid *ProgramID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	v, err := ToProgramID(s)
	if err != nil {
		return err
	}

	*pid = v
	return nil
}
