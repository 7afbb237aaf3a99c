package host

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ardanlabs/tolower/foundation/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountMeta is an account passed to an instruction with the signature the
// account produced over the instruction, if any.
type AccountMeta struct {
	AccountID program.AccountID `json:"account" validate:"required"`
	Signature string            `json:"signature,omitempty"`
}

// Instruction is what a client submits to the host for execution.
type Instruction struct {
	ProgramID program.ProgramID `json:"program_id"`
	Accounts  []AccountMeta     `json:"accounts" validate:"dive"`
	Data      hexutil.Bytes     `json:"data"`
}

// NewInstruction constructs an unsigned instruction for the set of accounts.
func NewInstruction(programID program.ProgramID, data []byte, accounts ...program.AccountID) Instruction {
	metas := make([]AccountMeta, len(accounts))
	for i, account := range accounts {
		metas[i] = AccountMeta{AccountID: account}
	}

	return Instruction{
		ProgramID: programID,
		Accounts:  metas,
		Data:      data,
	}
}

// signingPayload is the part of an instruction every account signs. The
// signatures themselves are excluded and account ids are checksummed so the
// payload does not depend on the hex case a client used.
type signingPayload struct {
	ProgramID string              `json:"program_id"`
	Accounts  []program.AccountID `json:"accounts"`
	Data      hexutil.Bytes       `json:"data"`
}

// SigningPayload returns the value an account signs to authorize the
// instruction.
func (inst Instruction) SigningPayload() any {
	accounts := make([]program.AccountID, len(inst.Accounts))
	for i, am := range inst.Accounts {
		accounts[i] = am.AccountID.Normalize()
	}

	return signingPayload{
		ProgramID: inst.ProgramID.String(),
		Accounts:  accounts,
		Data:      inst.Data,
	}
}

// SignAccount signs the instruction with the private key and stores the
// signature on the matching account meta.
func SignAccount(inst Instruction, privateKey *ecdsa.PrivateKey) (Instruction, error) {
	account := program.PublicKeyToAccountID(privateKey.PublicKey)

	idx := -1
	for i, am := range inst.Accounts {
		if am.AccountID.Equal(account) {
			idx = i
			break
		}
	}

	if idx == -1 {
		return Instruction{}, fmt.Errorf("account %s is not part of the instruction", account)
	}

	v, r, s, err := signature.Sign(inst.SigningPayload(), privateKey)
	if err != nil {
		return Instruction{}, fmt.Errorf("signing instruction: %w", err)
	}

	metas := make([]AccountMeta, len(inst.Accounts))
	copy(metas, inst.Accounts)
	metas[idx].Signature = signature.SignatureString(v, r, s)
	inst.Accounts = metas

	return inst, nil
}
