package csp

import (
	"errors"
	"testing"
)

// =============================================================================
// Unit Tests: CSPError
// =============================================================================

func TestU_CSPError_Error_WithCode(t *testing.T) {
	err := &CSPError{
		Tool: "cryptcp",
		Op:   "vsignf",
		Code: "0x200001f9",
		Err:  ErrInvalidSignature,
	}

	expected := "cryptcp vsignf [0x200001f9]: invalid signature"
	if err.Error() != expected {
		t.Errorf("CSPError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestU_CSPError_Error_WithoutCode(t *testing.T) {
	err := &CSPError{
		Tool: "certmgr",
		Op:   "list",
		Err:  errors.New("boom"),
	}

	expected := "certmgr list: boom"
	if err.Error() != expected {
		t.Errorf("CSPError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestU_CSPError_Unwrap(t *testing.T) {
	err := &CSPError{Tool: "certmgr", Op: "list", Err: ErrToolFailure}

	if !errors.Is(err, ErrToolFailure) {
		t.Error("errors.Is() should match the underlying sentinel")
	}
}

// =============================================================================
// Unit Tests: result codes
// =============================================================================

func TestU_IsOK(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"0", true},
		{"0x00000000", true},
		{"0X00000000", true},
		{"0x20000133", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsOK(tt.code); got != tt.want {
			t.Errorf("IsOK(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestU_CodeError_KnownCodes(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"0x20000133", ErrChainNotChecked},
		{"0x200001f9", ErrInvalidSignature},
		{"0x2000012d", ErrCertificatesNotFound},
		{"0x200001F9", ErrInvalidSignature}, // case-insensitive
		{"0xdeadbeef", ErrToolFailure},
	}

	for _, tt := range tests {
		err := CodeError("cryptcp", "verify", tt.code, "output")
		if !errors.Is(err, tt.want) {
			t.Errorf("CodeError(%q) = %v, want errors.Is %v", tt.code, err, tt.want)
		}
	}
}

func TestU_CodeError_KeepsOutput(t *testing.T) {
	err := CodeError("cryptcp", "signf", "0x2000012d", "  raw tool output \n")

	if err.Output != "raw tool output" {
		t.Errorf("CodeError() Output = %q, want trimmed raw output", err.Output)
	}
	if err.Code != "0x2000012d" {
		t.Errorf("CodeError() Code = %q, want lowercase code", err.Code)
	}
}
