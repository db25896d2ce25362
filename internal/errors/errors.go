// Package errors defines the typed error codes this system's components
// raise, following the same small named-constant-plus-constructor idiom the
// reference backend uses for its API errors, generalized from HTTP status
// codes to the retry/abort/skip behaviors this system needs.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure independent of its message, so
// callers can branch with errors.As instead of string matching.
type Code string

const (
	DecodeError    Code = "decode_error"
	UnsupportedFmt Code = "unsupported_format"
	TooLong        Code = "too_long"
	DuplicateSong  Code = "duplicate_song"
	StorageError   Code = "storage_error"
	ProtocolError  Code = "protocol_error"
	Timeout        Code = "timeout"
)

// FingerprintError is the error type every component in this module raises.
// It wraps an optional cause and carries a typed Code so callers can decide
// policy (retry, abort the file, fail the session) without parsing strings.
type FingerprintError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *FingerprintError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FingerprintError) Unwrap() error { return e.Cause }

func New(code Code, message string) *FingerprintError {
	return &FingerprintError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *FingerprintError {
	return &FingerprintError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the Code from err if it is (or wraps) a *FingerprintError,
// returning ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var fe *FingerprintError
	if errors.As(err, &fe) {
		return fe.Code, true
	}
	return "", false
}
