// Package host is the execution host for the ToLower program. It decides
// which accounts signed an instruction, runs the program and captures the
// records the program logs.
package host

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/tolower/foundation/program"
	"github.com/ardanlabs/tolower/foundation/signature"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrUnknownProgram is returned when an instruction targets a program this
// host does not execute.
var ErrUnknownProgram = errors.New("unknown program id")

// EventHandler defines a function that is called when events occur in the
// processing of an instruction.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the host.
type Config struct {
	ProgramID  program.ProgramID
	EvHandler  EventHandler
	Registerer prometheus.Registerer
}

// Host executes instructions against the program.
type Host struct {
	programID   program.ProgramID
	evHandler   EventHandler
	invocations *prometheus.CounterVec
}

// New constructs a host for executing instructions.
func New(cfg Config) *Host {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// A nil registerer leaves the counters unregistered.
	invocations := promauto.With(cfg.Registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolower_invocations_total",
			Help: "Number of program invocations partitioned by result.",
		},
		[]string{"result"},
	)

	return &Host{
		programID:   cfg.ProgramID,
		evHandler:   ev,
		invocations: invocations,
	}
}

// ProgramID returns the id of the program this host executes.
func (h *Host) ProgramID() program.ProgramID {
	return h.programID
}

// Accounts derives the account infos for the instruction. An account is a
// signer only if its signature recovers to the account itself.
func (h *Host) Accounts(inst Instruction) []program.AccountInfo {
	payload := inst.SigningPayload()

	infos := make([]program.AccountInfo, len(inst.Accounts))
	for i, am := range inst.Accounts {
		infos[i] = program.NewAccountInfo(am.AccountID, false)

		if am.Signature == "" {
			continue
		}

		if err := verify(payload, am); err != nil {
			h.evHandler("host: account[%s]: signature rejected: %s", am.AccountID, err)
			continue
		}

		infos[i].IsSigner = true
	}

	return infos
}

// Invoke executes the instruction and returns the receipt. Program failures
// are reported on the receipt, never as a panic.
func (h *Host) Invoke(inst Instruction) Receipt {
	rcpt := Receipt{
		ID:        uuid.NewString(),
		ProgramID: inst.ProgramID,
		Logs:      []string{},
	}

	if inst.ProgramID != h.programID {
		rcpt.setErr(fmt.Errorf("%w: %s", ErrUnknownProgram, inst.ProgramID))
		h.invocations.WithLabelValues(resultUnknownProgram).Inc()
		return rcpt
	}

	h.evHandler("host: invoke[%s]: started: accounts[%d] data[%d]", rcpt.ID, len(inst.Accounts), len(inst.Data))

	sink := func(v string, args ...any) {
		record := fmt.Sprintf(v, args...)
		rcpt.Logs = append(rcpt.Logs, record)
		h.evHandler("program[%s]: %s", rcpt.ID, record)
	}

	rcpt.Accounts = h.Accounts(inst)
	if err := program.ProcessToLower(h.programID, rcpt.Accounts, inst.Data, sink); err != nil {
		rcpt.setErr(err)
	}

	result := resultSuccess
	if pe := program.GetProgramError(rcpt.Err); pe != nil {
		result = pe.Code
	}
	h.invocations.WithLabelValues(result).Inc()

	h.evHandler("host: invoke[%s]: completed: result[%s]", rcpt.ID, result)

	return rcpt
}

// =============================================================================

// verify checks the signature of the account meta was produced by the
// account over the payload.
func verify(payload any, am AccountMeta) error {
	v, r, s, err := signature.ToVRSFromHexSignature(am.Signature)
	if err != nil {
		return err
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		return err
	}

	from, err := signature.FromAccount(payload, v, r, s)
	if err != nil {
		return err
	}

	if !am.AccountID.Equal(program.AccountID(from)) {
		return fmt.Errorf("signed by %s", from)
	}

	return nil
}
