// Package errors defines the coded errors reported to tierviz users.
//
// Codes are machine-readable and stable; the API returns them in error
// bodies and the CLI prints the accompanying message:
//   - INVALID_*: rejected input
//   - *_NOT_FOUND: missing scenario, layout or file
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: upstream API trouble
//   - INTERNAL_ERROR: everything else
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", mode)
//	if errors.Is(err, errors.ErrCodeInvalidMode) {
//	    ...
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidMode       Code = "INVALID_MODE"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidScenario   Code = "INVALID_SCENARIO"
	ErrCodeInvalidDataset    Code = "INVALID_DATASET"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeScenarioNotFound Code = "SCENARIO_NOT_FOUND"
	ErrCodeLayoutNotFound   Code = "LAYOUT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain. Context
// cancellation and deadlines map to TIMEOUT; anything else uncoded is
// INTERNAL_ERROR. A nil error has no code.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	return ErrCodeInternal
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to the status the API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidMode, ErrCodeInvalidDimensions,
		ErrCodeInvalidScenario, ErrCodeInvalidDataset:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeScenarioNotFound, ErrCodeLayoutNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
