package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failure so handlers can choose a status code.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindDetection
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDetection:
		return "detection"
	case KindUpstream:
		return "upstream"
	default:
		return "unexpected"
	}
}

// StatusCode maps validation and detection failures to 400, everything else to 500.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation, KindDetection:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is; an *Error matches the sentinel of its kind.
var (
	ErrValidation = errors.New("validation error")
	ErrDetection  = errors.New("detection error")
	ErrUpstream   = errors.New("upstream error")
	ErrUnexpected = errors.New("unexpected error")
)

// Error carries the message shown to the client together with its kind and cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrDetection:
		return e.Kind == KindDetection
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrUnexpected:
		return e.Kind == KindUnexpected
	}
	return false
}

func NewValidationError(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

func NewDetectionError(msg string, err error) *Error {
	return &Error{Kind: KindDetection, Message: msg, Err: err}
}

func NewUpstreamError(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func NewUnexpectedError(msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: msg, Err: err}
}

// AsError returns err as an *Error, wrapping anything unclassified as unexpected
// with the original error text as its message.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindUnexpected, Message: err.Error(), Err: err}
}
