package logger

import (
	"errors"
	"fmt"
	"net"
)

type ErrType string

const (
	ErrTypeInvalidConfig    ErrType = "INVALID_CONFIG"
	ErrTypeNetworkError     ErrType = "NETWORK_ERROR"
	ErrTypeTimeout          ErrType = "TIMEOUT"
	ErrTypeRetriesExhausted ErrType = "RETRIES_EXHAUSTED"
	ErrTypeClosed           ErrType = "CLOSED"
	ErrTypeEncode           ErrType = "ENCODE_ERROR"
)

type Error struct {
	Type    ErrType `json:"type"`
	Message string  `json:"message"`
	Err     error   `json:"error,omitempty"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Type so that errors.Is(err, ErrSilent) holds for any
// retries-exhausted error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

var (
	// ErrSilent is reported once when the retry ceiling is reached. The
	// transport keeps accepting records but never reconnects again.
	ErrSilent = &Error{
		Type:    ErrTypeRetriesExhausted,
		Message: "max retries reached, going silent, further logs will be queued but not sent",
	}

	ErrClosed = &Error{
		Type:    ErrTypeClosed,
		Message: "transport is closed",
	}
)

func ErrInvalidConfig(message string) *Error {
	return &Error{
		Type:    ErrTypeInvalidConfig,
		Message: message,
	}
}

func ErrNetworkError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeNetworkError,
		Message: message,
		Err:     err,
	}
}

func ErrTimeout(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeTimeout,
		Message: message,
		Err:     err,
	}
}

func ErrEncode(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeEncode,
		Message: message,
		Err:     err,
	}
}

func classifyNetErr(message string, err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout(message, err)
	}
	return ErrNetworkError(message, err)
}
