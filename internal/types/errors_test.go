package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorErrorFormat(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeValidationInvalidInput,
		Message: "'name' with required",
	}

	expected := "validation_invalid_input: 'name' with required"
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	appErr := NewAppError(ErrCodeInternalDB, "failed to ensure database", underlying)

	if !errors.Is(appErr, underlying) {
		t.Error("errors.Is should find the underlying error")
	}

	wrapped := fmt.Errorf("bootstrap: %w", appErr)
	var target *AppError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeInternalDB {
		t.Errorf("Code = %q, want %q", target.Code, ErrCodeInternalDB)
	}
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidInput, http.StatusUnprocessableEntity},
		{ErrCodeValidationInvalidJSON, http.StatusUnprocessableEntity},
		{ErrCodeNotFoundDuty, http.StatusNotFound},
		{ErrCodeNotFoundRoute, http.StatusNotFound},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			appErr := &AppError{Code: tt.code}
			if got := appErr.HTTPStatus(); got != tt.want {
				t.Errorf("AppError.HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewAppErrorWithDetails(t *testing.T) {
	details := map[string]any{"field": "name"}
	appErr := NewAppErrorWithDetails(ErrCodeValidationInvalidInput, "missing", nil, details)

	if appErr.Details["field"] != "name" {
		t.Errorf("Details[field] = %v, want name", appErr.Details["field"])
	}
	if appErr.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", appErr.Unwrap())
	}
}
