// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no bar data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient bars for evaluation"}

	// Configuration errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Order errors
	ErrOrderRejected = &Error{Code: "ORDER_REJECTED", Message: "order rejected by risk guard"}
	ErrOrderFailed   = &Error{Code: "ORDER_FAILED", Message: "order submission failed"}

	// Collaborator errors
	ErrBrokerFailed    = &Error{Code: "BROKER_FAILED", Message: "broker call failed"}
	ErrProviderFailed  = &Error{Code: "PROVIDER_FAILED", Message: "bar provider call failed"}
	ErrPredictorFailed = &Error{Code: "PREDICTOR_FAILED", Message: "predictor call failed"}
	ErrStoreFailed     = &Error{Code: "STORE_FAILED", Message: "signal store call failed"}

	// Invariant violations (programming errors)
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "invalid position transition"}
)
