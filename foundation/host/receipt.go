package host

import (
	"errors"

	"github.com/ardanlabs/tolower/foundation/program"
)

// Set of result labels recorded for invocations.
const (
	resultSuccess        = "Success"
	resultUnknownProgram = "UnknownProgram"
)

// Receipt is the outcome of a single invocation.
type Receipt struct {
	ID        string                `json:"id"`
	ProgramID program.ProgramID     `json:"program_id"`
	Logs      []string              `json:"logs"`
	Accounts  []program.AccountInfo `json:"-"`
	Code      string                `json:"code,omitempty"`
	Error     string                `json:"error,omitempty"`
	Err       error                 `json:"-"`
}

// Success reports whether the program accepted the instruction.
func (r Receipt) Success() bool {
	return r.Err == nil
}

func (r *Receipt) setErr(err error) {
	r.Err = err
	r.Error = err.Error()

	switch {
	case errors.Is(err, ErrUnknownProgram):
		r.Code = resultUnknownProgram
	default:
		if pe := program.GetProgramError(err); pe != nil {
			r.Code = pe.Code
		}
	}
}
