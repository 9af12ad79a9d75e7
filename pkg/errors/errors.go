package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of failure encountered while scraping
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeStatus     ErrorType = "status"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypePagination ErrorType = "pagination"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a scraper error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without an underlying cause
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error around err. The cause's text is appended to message.
func Wrap(errorType ErrorType, err error, message string) *Error {
	if err == nil {
		return New(errorType, message)
	}
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}

// Status creates a status error for an unexpected HTTP response code
func Status(code int, message string) *Error {
	return &Error{Type: ErrorTypeStatus, Message: message, Code: code}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown if err is not typed
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err (or anything it wraps) is a typed error of errorType
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Code
	}
	return 0
}
