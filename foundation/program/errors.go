package program

import "errors"

// Set of error codes the program can fail with.
const (
	CodeMissingRequiredSignature = "MissingRequiredSignature"
	CodeInvalidInstructionData   = "InvalidInstructionData"
)

// Set of errors the program returns to the host.
var (
	ErrMissingRequiredSignature = &ProgramError{Code: CodeMissingRequiredSignature, Msg: "missing required signature for instruction"}
	ErrInvalidInstructionData   = &ProgramError{Code: CodeInvalidInstructionData, Msg: "invalid instruction data"}
)

// ProgramError is the failure result of an invocation. Both kinds are
// terminal for the invocation.
type ProgramError struct {
	Code string
	Msg  string
}

// Error implements the error interface.
func (pe *ProgramError) Error() string {
	return pe.Msg
}

// IsProgramError checks if an error of type ProgramError exists.
func IsProgramError(err error) bool {
	var pe *ProgramError
	return errors.As(err, &pe)
}

// GetProgramError returns the ProgramError in the chain or nil.
func GetProgramError(err error) *ProgramError {
	var pe *ProgramError
	if !errors.As(err, &pe) {
		return nil
	}
	return pe
}
