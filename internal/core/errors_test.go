package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "NO_DATA", Message: "no bar data available"}
	if err.Error() != "[NO_DATA] no bar data available" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	wrapped := WrapError(ErrBrokerFailed, fmt.Errorf("connection refused"))
	want := "[BROKER_FAILED] broker call failed: connection refused"
	if wrapped.Error() != want {
		t.Errorf("got %q, want %q", wrapped.Error(), want)
	}
}

func TestError_Is(t *testing.T) {
	wrapped := WrapError(ErrOrderRejected, fmt.Errorf("notional requires market order"))
	if !errors.Is(wrapped, ErrOrderRejected) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrNoData) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("timeout")
	wrapped := WrapError(ErrProviderFailed, cause)
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}
