package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeParse means the model answered but nothing structured could be read from it
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeTransport covers failed model, transcription and synthesis calls
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeStorage represents persistence backend errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeInput represents caller mistakes (unknown session, empty conversation)
	ErrorTypeInput ErrorType = "input"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error
}

func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *BaseError) Unwrap() error {
	return e.Err
}

func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ErrNoCredentials is returned by model-backed operations when no API
// credential is configured.
var ErrNoCredentials = NewBaseError(ErrorTypeConfig, "no model API credential configured", nil)

// ErrParseFailed is returned when no JSON could be recovered from a model reply
type ErrParseFailed struct {
	*BaseError
	Reply string
}

func NewParseFailed(reply string, err error) *ErrParseFailed {
	return &ErrParseFailed{
		BaseError: NewBaseError(ErrorTypeParse, "could not parse JSON from model reply", err),
		Reply:     reply,
	}
}

// ErrTransportFailed is returned when a call to an external model service fails
type ErrTransportFailed struct {
	*BaseError
	Operation string
}

func NewTransportFailed(operation string, err error) *ErrTransportFailed {
	return &ErrTransportFailed{
		BaseError: NewBaseError(ErrorTypeTransport, fmt.Sprintf("%s failed", operation), err),
		Operation: operation,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// ErrStorageFailed wraps a backend load or save failure
type ErrStorageFailed struct {
	*BaseError
	Backend string
}

func NewStorageFailed(backend, message string, err error) *ErrStorageFailed {
	return &ErrStorageFailed{
		BaseError: NewBaseError(ErrorTypeStorage, fmt.Sprintf("%s: %s", backend, message), err),
		Backend:   backend,
	}
}

func NewInvalidInput(message string) *BaseError {
	return NewBaseError(ErrorTypeInput, message, nil)
}

// IsErrorType checks if err, or anything it wraps, is of errType
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := typeOf(err); ok && t == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

func typeOf(err error) (ErrorType, bool) {
	switch e := err.(type) {
	case *BaseError:
		return e.Type, true
	case *ErrParseFailed:
		return e.Type, true
	case *ErrTransportFailed:
		return e.Type, true
	case *ErrConfigMissingRequired:
		return e.Type, true
	case *ErrStorageFailed:
		return e.Type, true
	}
	return "", false
}

// IsRecoverable reports whether the caller can carry on with a default
// result: parse and transport failures degrade, the rest do not.
func IsRecoverable(err error) bool {
	return IsErrorType(err, ErrorTypeParse) || IsErrorType(err, ErrorTypeTransport)
}
