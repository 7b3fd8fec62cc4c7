package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMode, "unknown mode %q", "pie")

	if err.Code != ErrCodeInvalidMode {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMode)
	}
	if err.Message != `unknown mode "pie"` {
		t.Errorf("Message = %v", err.Message)
	}
	if want := `INVALID_MODE: unknown mode "pie"`; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch scenario %s", "s0020")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "NETWORK_ERROR: fetch scenario s0020: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidInput, true},
		{"different code", New(ErrCodeInvalidInput, "x"), ErrCodeNetwork, false},
		{"wrapped with fmt", fmt.Errorf("ctx: %w", New(ErrCodeLayoutNotFound, "x")), ErrCodeLayoutNotFound, true},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeScenarioNotFound, "x"), ErrCodeScenarioNotFound},
		{"wrapped", fmt.Errorf("a: %w", New(ErrCodeNetwork, "x")), ErrCodeNetwork},
		{"deadline", fmt.Errorf("a: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"plain", errors.New("x"), ErrCodeInternal},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "bad width")); got != "bad width" {
		t.Errorf("UserMessage(coded) = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidMode, http.StatusBadRequest},
		{ErrCodeInvalidDimensions, http.StatusBadRequest},
		{ErrCodeLayoutNotFound, http.StatusNotFound},
		{ErrCodeScenarioNotFound, http.StatusNotFound},
		{ErrCodeNetwork, http.StatusBadGateway},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidMode, ErrCodeInvalidDimensions,
		ErrCodeInvalidScenario, ErrCodeInvalidDataset,
		ErrCodeNotFound, ErrCodeScenarioNotFound, ErrCodeLayoutNotFound, ErrCodeFileNotFound,
		ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited,
		ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate code %s", c)
		}
		seen[c] = true
	}
}
