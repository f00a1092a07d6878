// Package errors defines the error vocabulary shared by the inbox service,
// the mail bridge and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidStatus = fmt.Errorf("%w: status must be one of unread, read, replied", ErrInvalidInput)
	ErrEmptyUpdate   = fmt.Errorf("%w: status or adminNotes is required", ErrInvalidInput)

	ErrMessageNotFound = errors.New("message not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("rate limit exceeded")

	// ErrStoreUnavailable marks failures talking to the message store.
	// Its text is safe to show clients; the wrapped cause is not.
	ErrStoreUnavailable = errors.New("message store unavailable")

	ErrInternal = errors.New("internal server error")
)

// Codes carried in the "code" field of error envelopes
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeInternalError = "INTERNAL_ERROR"
)

// ValidationError is a rejected input whose message is shown to the caller verbatim
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Validation returns a ValidationError for reason
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsInvalidInput reports whether err is any kind of rejected input
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

type class struct {
	sentinel error
	code     string
	status   int
}

// classes is checked in order; the first sentinel err wraps wins
var classes = []class{
	{ErrMessageNotFound, CodeNotFound, http.StatusNotFound},
	{ErrInvalidInput, CodeInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
	{ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
}

// Classify maps err to its envelope code and HTTP status.
// Anything unrecognised is an internal error.
func Classify(err error) (code string, status int) {
	for _, c := range classes {
		if errors.Is(err, c.sentinel) {
			return c.code, c.status
		}
	}
	return CodeInternalError, http.StatusInternalServerError
}

// Code returns the envelope code for err
func Code(err error) string {
	code, _ := Classify(err)
	return code
}

// PublicMessage is the text a client may see for err. Input errors keep their
// detail; server-side failures collapse to a fixed phrase.
func PublicMessage(err error) string {
	if _, status := Classify(err); status < http.StatusInternalServerError {
		return err.Error()
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return ErrStoreUnavailable.Error()
	}
	return ErrInternal.Error()
}
