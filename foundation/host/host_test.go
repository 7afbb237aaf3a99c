package host_test

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ardanlabs/tolower/foundation/host"
	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var pid = program.NewProgramID("tolower")

func newKey(t *testing.T) (*ecdsa.PrivateKey, program.AccountID) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return pk, program.PublicKeyToAccountID(pk.PublicKey)
}

func sign(t *testing.T, inst host.Instruction, keys ...*ecdsa.PrivateKey) host.Instruction {
	for _, pk := range keys {
		var err error
		if inst, err = host.SignAccount(inst, pk); err != nil {
			t.Fatalf("Should be able to sign the instruction: %s", err)
		}
	}

	return inst
}

// =============================================================================

func Test_Invoke(t *testing.T) {
	pkA, accountA := newKey(t)
	pkB, accountB := newKey(t)

	type table struct {
		name string
		inst host.Instruction
		err  error
		last string
	}

	tt := []table{
		{
			name: "signed",
			inst: sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA), pkA),
			last: "Lowercase input data: abacaba",
		},
		{
			name: "unsigned",
			inst: host.NewInstruction(pid, []byte("AbaCAba"), accountA),
			err:  program.ErrMissingRequiredSignature,
		},
		{
			name: "without-signers",
			inst: host.NewInstruction(pid, []byte("AbaCAba")),
			err:  program.ErrMissingRequiredSignature,
		},
		{
			name: "invalid-utf8",
			inst: sign(t, host.NewInstruction(pid, []byte{0xFF, 0xFE}, accountA), pkA),
			err:  program.ErrInvalidInstructionData,
			last: "Invalid UTF-8, from byte 0",
		},
		{
			name: "two-signers",
			inst: sign(t, host.NewInstruction(pid, []byte("MiXeD"), accountA, accountB), pkA, pkB),
			last: "Lowercase input data: mixed",
		},
		{
			name: "one-of-two-signed",
			inst: sign(t, host.NewInstruction(pid, []byte("MiXeD"), accountA, accountB), pkB),
			err:  program.ErrMissingRequiredSignature,
		},
		{
			name: "unknown-program",
			inst: sign(t, host.NewInstruction(program.NewProgramID("other"), []byte("MiXeD"), accountA), pkA),
			err:  host.ErrUnknownProgram,
		},
	}

	h := host.New(host.Config{ProgramID: pid})

	for _, tst := range tt {
		f := func(t *testing.T) {
			rcpt := h.Invoke(tst.inst)

			if !errors.Is(rcpt.Err, tst.err) {
				t.Logf("got: %v", rcpt.Err)
				t.Logf("exp: %v", tst.err)
				t.Fatalf("Should get back the right result.")
			}

			if rcpt.Success() != (tst.err == nil) {
				t.Fatalf("Should report success only without an error.")
			}

			if tst.last != "" && rcpt.Logs[len(rcpt.Logs)-1] != tst.last {
				t.Logf("got: %q", rcpt.Logs[len(rcpt.Logs)-1])
				t.Logf("exp: %q", tst.last)
				t.Fatalf("Should get back the right final record.")
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Accounts(t *testing.T) {
	pkA, accountA := newKey(t)
	pkB, accountB := newKey(t)

	var rejected []string
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		if strings.Contains(s, "signature rejected") {
			rejected = append(rejected, s)
		}
	}

	h := host.New(host.Config{ProgramID: pid, EvHandler: ev})

	inst := sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA, accountB), pkA)

	// Account B presents account A's signature.
	inst.Accounts[1].Signature = inst.Accounts[0].Signature

	infos := h.Accounts(inst)
	if !infos[0].IsSigner {
		t.Fatalf("Should mark account A as a signer.")
	}
	if infos[1].IsSigner {
		t.Fatalf("Should not mark account B as a signer with A's signature.")
	}
	if len(rejected) != 1 {
		t.Fatalf("Should log one rejected signature, got %d", len(rejected))
	}

	// Changing the data after signing invalidates every signature.
	inst = sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA, accountB), pkA, pkB)
	inst.Data = []byte("Tampered")

	for i, ai := range h.Accounts(inst) {
		if ai.IsSigner {
			t.Fatalf("Account %d: Should not be a signer for tampered data.", i)
		}
	}
}

func Test_SignAccountNotInInstruction(t *testing.T) {
	pk, _ := newKey(t)
	_, other := newKey(t)

	if _, err := host.SignAccount(host.NewInstruction(pid, []byte("x"), other), pk); err == nil {
		t.Fatalf("Should not be able to sign for an account not in the instruction.")
	}
}

func Test_InvokeLogs(t *testing.T) {
	pkA, accountA := newKey(t)

	var forwarded []string
	ev := func(v string, args ...any) {
		forwarded = append(forwarded, fmt.Sprintf(v, args...))
	}

	h := host.New(host.Config{ProgramID: pid, EvHandler: ev})
	rcpt := h.Invoke(sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA), pkA))

	exp := []string{
		fmt.Sprintf("Signed by %s", accountA),
		"Lowercase input data: abacaba",
	}

	if len(rcpt.Logs) != len(exp) {
		t.Fatalf("Should get back %d records, got %d: %v", len(exp), len(rcpt.Logs), rcpt.Logs)
	}

	for i := range exp {
		if rcpt.Logs[i] != exp[i] {
			t.Logf("got: %q", rcpt.Logs[i])
			t.Logf("exp: %q", exp[i])
			t.Fatalf("Should get back the program records in order.")
		}

		want := fmt.Sprintf("program[%s]: %s", rcpt.ID, exp[i])

		var found bool
		for _, s := range forwarded {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("Should forward %q to the event handler.", want)
		}
	}
}

func Test_Metrics(t *testing.T) {
	pkA, accountA := newKey(t)

	reg := prometheus.NewRegistry()
	h := host.New(host.Config{ProgramID: pid, Registerer: reg})

	h.Invoke(sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA), pkA))
	h.Invoke(host.NewInstruction(pid, []byte("AbaCAba"), accountA))
	h.Invoke(host.NewInstruction(pid, []byte("AbaCAba")))

	exp := `
		# HELP tolower_invocations_total Number of program invocations partitioned by result.
		# TYPE tolower_invocations_total counter
		tolower_invocations_total{result="MissingRequiredSignature"} 2
		tolower_invocations_total{result="Success"} 1
	`

	if err := testutil.GatherAndCompare(reg, strings.NewReader(exp), "tolower_invocations_total"); err != nil {
		t.Fatalf("Should get back the right metrics: %s", err)
	}
}

func Test_LowercaseAccountID(t *testing.T) {
	pk, account := newKey(t)
	lower := program.AccountID(strings.ToLower(string(account)))

	inst, err := host.SignAccount(host.NewInstruction(pid, []byte("AbaCAba"), lower), pk)
	if err != nil {
		t.Fatalf("Should be able to sign for a lowercase account id: %s", err)
	}

	h := host.New(host.Config{ProgramID: pid})

	rcpt := h.Invoke(inst)
	if rcpt.Err != nil {
		t.Fatalf("Should accept the signature of a lowercase account id: %s", rcpt.Err)
	}

	// The service decodes instructions from JSON, which checksums the ids.
	data, err := json.Marshal(inst)
	if err != nil {
		t.Fatalf("Should be able to marshal the instruction: %s", err)
	}

	var decoded host.Instruction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Should be able to unmarshal the instruction: %s", err)
	}

	if decoded.Accounts[0].AccountID != account {
		t.Logf("got: %s", decoded.Accounts[0].AccountID)
		t.Logf("exp: %s", account)
		t.Fatalf("Should decode the checksummed account id.")
	}

	rcpt = h.Invoke(decoded)
	if rcpt.Err != nil {
		t.Fatalf("Should accept the decoded instruction: %s", rcpt.Err)
	}

	if exp := "Lowercase input data: abacaba"; rcpt.Logs[len(rcpt.Logs)-1] != exp {
		t.Logf("got: %q", rcpt.Logs[len(rcpt.Logs)-1])
		t.Logf("exp: %q", exp)
		t.Fatalf("Should get back the lowercase record.")
	}
}

func Test_ReceiptAccounts(t *testing.T) {
	pkA, accountA := newKey(t)
	_, accountB := newKey(t)

	h := host.New(host.Config{ProgramID: pid})
	rcpt := h.Invoke(sign(t, host.NewInstruction(pid, []byte("AbaCAba"), accountA, accountB), pkA))

	if len(rcpt.Accounts) != 2 {
		t.Fatalf("Should carry 2 account infos on the receipt, got %d", len(rcpt.Accounts))
	}

	if !rcpt.Accounts[0].IsSigner || rcpt.Accounts[0].Key != accountA {
		t.Fatalf("Should report account A as a signer: %+v", rcpt.Accounts[0])
	}

	if rcpt.Accounts[1].IsSigner || rcpt.Accounts[1].Key != accountB {
		t.Fatalf("Should report account B as unsigned: %+v", rcpt.Accounts[1])
	}
}
