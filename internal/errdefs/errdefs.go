// Package errdefs defines the error taxonomy shared by every skillhub
// command. Components wrap one of the sentinels below with
// github.com/pkg/errors; the CLI boundary classifies the chain with
// errors.Is to choose the exit code and the wording shown to the user.
package errdefs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Wrap them, never compare error strings.
var (
	ErrUserInput           = errors.New("invalid input")
	ErrAmbiguous           = errors.New("ambiguous match")
	ErrNotFound            = errors.New("not found")
	ErrRegistryUnreachable = errors.New("registry unreachable")
	ErrSyncConflict        = errors.New("registry sync conflict")
	ErrPublishFailed       = errors.New("publish failed")
)

// Exit codes returned by the CLI.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUserError = 2
)

// AmbiguityError reports that a lookup matched more than one candidate.
// Candidates are kept verbatim and in discovery order; nothing downstream
// may pick one on the user's behalf.
type AmbiguityError struct {
	Scope      string // "local" or "registry"
	Pattern    string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("found %d %s skills matching %q", len(e.Candidates), e.Scope, e.Pattern)
}

// Is lets errors.Is(err, ErrAmbiguous) match an AmbiguityError.
func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguous
}

// UserInput wraps ErrUserInput with a formatted message.
func UserInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUserInput, format, args...)
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// IsUserError reports whether err was caused by the user rather than the
// environment: bad input, no match, or more than one match.
func IsUserError(err error) bool {
	return errors.Is(err, ErrUserInput) ||
		errors.Is(err, ErrAmbiguous) ||
		errors.Is(err, ErrNotFound)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUserError(err):
		return ExitUserError
	default:
		return ExitFailure
	}
}

// AsAmbiguity extracts the AmbiguityError from err's chain, if any.
func AsAmbiguity(err error) (*AmbiguityError, bool) {
	var amb *AmbiguityError
	if errors.As(err, &amb) {
		return amb, true
	}
	return nil, false
}
