package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_DefaultsFromCode(t *testing.T) {
	err := New(CodePriceNotFound, WithContext("XYZ in GBP"))

	if err.Message != "Could not query price" {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "XYZ in GBP") {
		t.Errorf("Error() missing context: %q", err.Error())
	}
	if err.ExitCode != ExitFailure {
		t.Errorf("ExitCode = %d, want %d", err.ExitCode, ExitFailure)
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	inner := New(CodeExchangeUnavailable)
	wrapped := Wrap(fmt.Errorf("outer: %w", inner), CodeInternalError, "refresh")

	if wrapped.Code != CodeExchangeUnavailable {
		t.Errorf("Code = %s, want %s", wrapped.Code, CodeExchangeUnavailable)
	}
	if wrapped.Context != "refresh" {
		t.Errorf("Context = %q, want refresh", wrapped.Context)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(CodePriceNotFound, WithContext("a")))
	if !errors.Is(err, New(CodePriceNotFound)) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, New(CodeNotFound)) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"config", New(CodeConfigurationError), ExitConfig},
		{"invalid", New(CodeInvalidInput), ExitUsage},
		{"unavailable", New(CodeExchangeUnavailable), ExitUnavailable},
		{"circuit", New(CodeCircuitOpen), ExitUnavailable},
		{"override", New(CodeInternalError, WithExitCode(7)), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeOf(tt.err); got != tt.want {
				t.Errorf("ExitCodeOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(errors.New("x")); got != CodeUnknownError {
		t.Errorf("GetCode(plain) = %s", got)
	}
	if got := GetCode(New(CodeMalformedPair)); got != CodeMalformedPair {
		t.Errorf("GetCode = %s", got)
	}
}
