package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInputMissing          Kind = "input_missing"
	KindInputMalformed        Kind = "input_malformed"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindPartialWrite          Kind = "partial_write"
	KindStepTimeout           Kind = "step_timeout"
	KindStoreUnavailable      Kind = "store_unavailable"
	KindConfigInvalid         Kind = "config_invalid"
)

// Error carries a failure category and an operator-facing remediation hint.
type Error struct {
	Kind Kind
	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	if e.Kind != "" {
		return string(e.Kind)
	}
	return "application error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func WithHint(kind Kind, hint string, err error) *Error {
	return &Error{Kind: kind, Hint: hint, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// ExitCode maps an error to a process exit status. nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindInputMissing:
		return 2
	case KindInputMalformed:
		return 3
	case KindStoreUnavailable:
		return 4
	case KindConfigInvalid:
		return 5
	default:
		return 1
	}
}
