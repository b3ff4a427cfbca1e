package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestServiceError_NotFound(t *testing.T) {
	err := fmt.Errorf("get 7: %w", &ServiceError{Op: "get", StatusCode: 404})
	if !errors.Is(err, ErrNotFound) {
		t.Error("404 should match ErrNotFound")
	}
	if StatusCode(err) != 404 {
		t.Errorf("StatusCode = %d, want 404", StatusCode(err))
	}

	err = &ServiceError{Op: "get", StatusCode: 500}
	if errors.Is(err, ErrNotFound) {
		t.Error("500 should not match ErrNotFound")
	}
	if got := err.Error(); got != "get: service responded 500 Internal Server Error" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStatusCode_Other(t *testing.T) {
	if got := StatusCode(errors.New("boom")); got != 0 {
		t.Errorf("StatusCode = %d, want 0", got)
	}
	if got := StatusCode(nil); got != 0 {
		t.Errorf("StatusCode(nil) = %d, want 0", got)
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list: %w", &NetworkError{Op: "list", Err: cause})
	if !IsNetwork(err) {
		t.Error("IsNetwork = false")
	}
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if IsValidation(err) {
		t.Error("IsValidation = true for a network error")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "required"},
		{Field: "dueDate", Message: "must be YYYY-MM-DD"},
	}}
	if got := err.Error(); got != "invalid task: title: required; dueDate: must be YYYY-MM-DD" {
		t.Errorf("Error() = %q", got)
	}
	if got := err.Field("title"); got != "required" {
		t.Errorf("Field(title) = %q", got)
	}
	if got := err.Field("status"); got != "" {
		t.Errorf("Field(status) = %q, want empty", got)
	}
	if !IsValidation(fmt.Errorf("submit: %w", err)) {
		t.Error("IsValidation = false for a wrapped ValidationError")
	}
}
