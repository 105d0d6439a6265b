package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by RemoteStore implementations.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidPath       = errors.New("invalid document path")
)

// ErrorKind is the stable, machine-readable identifier of a failed outcome.
type ErrorKind string

const (
	KindMissingFields    ErrorKind = "MISSING_FIELDS"
	KindMissingUserID    ErrorKind = "MISSING_USER_ID"
	KindStoreUnavailable ErrorKind = "STORE_UNAVAILABLE"
	KindKeyNotFound      ErrorKind = "KEY_NOT_FOUND"
	KindKeyInactive      ErrorKind = "KEY_INACTIVE"
	KindTokenMismatch    ErrorKind = "TOKEN_MISMATCH"
	KindPersistFailed    ErrorKind = "PERSIST_FAILED"
	KindUnexpected       ErrorKind = "UNEXPECTED"
)

// Error is a classified failure. Message is safe to show to the caller;
// Err keeps the underlying cause for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind carried by err, or KindUnexpected when err was never classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf returns the caller-facing message of err. Unclassified errors get a
// generic message so internal detail never reaches the response.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "unexpected error"
}

// ReadFailure classifies an error returned by a store read.
// Undecodable payloads and rejected paths are UNEXPECTED; everything else is a
// reachability problem.
func ReadFailure(err error) *Error {
	if errors.Is(err, ErrMalformedDocument) {
		return NewError(KindUnexpected, "store returned an unreadable document", err)
	}
	if errors.Is(err, ErrInvalidPath) {
		return NewError(KindUnexpected, "invalid document path", err)
	}
	return NewError(KindStoreUnavailable, "record store unavailable", err)
}
