package game

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of recoverable command failures.
// Every kind leaves the session untouched; the server reports the error
// to the issuing client only and never broadcasts it.
type ErrorKind string

const (
	// KindValidation covers malformed indices and occupied targets.
	KindValidation ErrorKind = "ValidationError"
	// KindState covers wrong-turn and wrong-phase commands.
	KindState ErrorKind = "StateError"
	// KindNotFound covers unknown rooms and players.
	KindNotFound ErrorKind = "NotFoundError"
)

// Error is a recoverable command-boundary error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Statef builds a StateError.
func Statef(format string, args ...any) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err, unwrapping as needed.
// Errors outside the taxonomy report KindValidation so clients always
// receive a well-formed kind.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindValidation
}
