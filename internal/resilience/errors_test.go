package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsTransient_ExplicitWrapper(t *testing.T) {
	err := Transient(errors.New("503 from upstream"), 503)
	if !IsTransient(err) {
		t.Error("TransientError should be transient")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsTransient(wrapped) {
		t.Error("wrapped TransientError should stay transient")
	}
}

func TestIsTransient_ConnectionErrors(t *testing.T) {
	for _, err := range []error{
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.ECONNABORTED,
	} {
		if !IsTransient(err) {
			t.Errorf("%v should be transient", err)
		}
	}
}

func TestIsTransient_MessagePatterns(t *testing.T) {
	cases := []string{
		"read tcp: connection reset by peer",
		"dial tcp: i/o timeout",
		"Get \"https://x\": context deadline exceeded",
		"lookup x: no such host",
	}
	for _, msg := range cases {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("%q should be transient", msg)
		}
	}
}

func TestIsTransient_PermanentErrors(t *testing.T) {
	for _, err := range []error{
		nil,
		errors.New("REQUIRED_FIELD_MISSING: LastName"),
		errors.New("invalid request body"),
		context.Canceled,
	} {
		if IsTransient(err) {
			t.Errorf("%v should not be transient", err)
		}
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := Transient(inner, 500)
	if !errors.Is(te, inner) {
		t.Error("Transient should wrap the inner error")
	}
	if te.Error() != "inner" {
		t.Errorf("unexpected message: %q", te.Error())
	}
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !RetryableStatus(code) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422} {
		if RetryableStatus(code) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}
