// Package program implements the ToLower program entry point. An invocation
// is accepted only when every supplied account signed it, and its instruction
// data is logged in lowercase.
package program

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Logger defines the observability channel the program writes its records
// to. Records have no effect on the outcome of an invocation.
type Logger func(v string, args ...any)

// ProcessToLower is the program entry point. The program id is part of the
// invocation context and is not used by this program.
func ProcessToLower(programID ProgramID, accounts []AccountInfo, input []byte, ev Logger) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	// An empty account list is never authorized.
	signed := len(accounts) > 0

	// Every account is visited so each signer gets logged, even after an
	// unsigned account has already failed the invocation.
	for _, ai := range accounts {
		if key, ok := ai.SignerKey(); ok {
			ev("Signed by %s", key)
			continue
		}
		signed = false
	}

	if !signed {
		return ErrMissingRequiredSignature
	}

	if !utf8.Valid(input) {
		ev("Invalid UTF-8, from byte %d", ValidUpTo(input))
		return ErrInvalidInstructionData
	}

	// Und applies the full Unicode mapping with no language tailoring.
	ev("Lowercase input data: %s", cases.Lower(language.Und).String(string(input)))

	return nil
}

// ValidUpTo returns the length of the longest prefix of b that is valid
// UTF-8.
func ValidUpTo(b []byte) int {
	var n int
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		n += size
	}

	return n
}
