// Package errors provides standardized domain errors with codes for the
// digitization pipeline.
//
// Usage:
//
//	// In pipeline stages - return typed errors
//	if decodeFailed {
//	    return errors.DecodeFailedf("decode %s: %v", path, err)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrDecodeFailed) {
//	    // drop the frame, keep the job going
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the pipeline.
const (
	CodeDecodeFailed  Code = "DECODE_FAILED"
	CodeOCRFailed     Code = "OCR_FAILED"
	CodeExtractFailed Code = "EXTRACT_FAILED"
	CodeEmptyInput    Code = "EMPTY_INPUT"
	CodeValidation    Code = "VALIDATION"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInternal      Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrDecodeFailed  = &Error{Code: CodeDecodeFailed, Message: "image decode failed"}
	ErrOCRFailed     = &Error{Code: CodeOCRFailed, Message: "text recognition failed"}
	ErrExtractFailed = &Error{Code: CodeExtractFailed, Message: "frame extraction failed"}
	ErrEmptyInput    = &Error{Code: CodeEmptyInput, Message: "empty input"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// DecodeFailed creates a decode failure error.
func DecodeFailed(msg string) *Error {
	return &Error{Code: CodeDecodeFailed, Message: msg}
}

// DecodeFailedf creates a decode failure error with formatted message.
func DecodeFailedf(format string, args ...any) *Error {
	return &Error{Code: CodeDecodeFailed, Message: fmt.Sprintf(format, args...)}
}

// OCRFailed creates a recognition failure error.
func OCRFailed(msg string) *Error {
	return &Error{Code: CodeOCRFailed, Message: msg}
}

// OCRFailedf creates a recognition failure error with formatted message.
func OCRFailedf(format string, args ...any) *Error {
	return &Error{Code: CodeOCRFailed, Message: fmt.Sprintf(format, args...)}
}

// ExtractFailed creates a frame extraction error.
func ExtractFailed(msg string) *Error {
	return &Error{Code: CodeExtractFailed, Message: msg}
}

// ExtractFailedf creates a frame extraction error with formatted message.
func ExtractFailedf(format string, args ...any) *Error {
	return &Error{Code: CodeExtractFailed, Message: fmt.Sprintf(format, args...)}
}

// EmptyInput creates an empty input error.
func EmptyInput(msg string) *Error {
	return &Error{Code: CodeEmptyInput, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
