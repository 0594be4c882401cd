package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusSuccess is the backend's application-level success sentinel.
const StatusSuccess = "SUCCESS"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// APIError is returned when the backend answers but the call did not succeed:
// either a non-2xx HTTP status or a status sentinel other than StatusSuccess.
type APIError struct {
	StatusCode int    // HTTP status; 0 when the transport succeeded
	Status     string // status sentinel as sent by the server
	Message    string
}

func NewAPIError(code int, status, msg string) *APIError {
	return &APIError{StatusCode: code, Status: status, Message: msg}
}

func (err *APIError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	if err.StatusCode != 0 {
		return fmt.Sprintf("request failed: %d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	if err.Status != "" {
		return "request failed with status " + err.Status
	}
	return "request failed"
}

// IsAPIError reports whether the cause of err is an *APIError.
func IsAPIError(err error) (*APIError, bool) {
	apiErr, ok := errors.Cause(err).(*APIError)
	return apiErr, ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
