package csp

import (
	"errors"
	"fmt"
	"strings"
)

// Result codes emitted by the CSP tools. cryptcp prints one of these in a
// trailing "[ErrorCode: ...]" or "[ResultCode: ...]" marker; comparison is
// case-insensitive.
const (
	CodeOK                   = "0x00000000"
	CodeChainNotChecked      = "0x20000133"
	CodeInvalidSignature     = "0x200001f9"
	CodeCertificatesNotFound = "0x2000012d"
)

// Sentinel errors for tool outcomes.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrChainNotChecked indicates the certificate chain could not be verified.
	ErrChainNotChecked = errors.New("certificate chain not checked")

	// ErrInvalidSignature indicates the signature did not verify.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrCertificatesNotFound indicates no certificate matched the request.
	ErrCertificatesNotFound = errors.New("certificates not found")

	// ErrEmptyCertificateList is the certmgr "Empty certificate list" stderr
	// outcome. List operations translate it to an empty result instead of
	// surfacing it.
	ErrEmptyCertificateList = errors.New("empty certificate list")

	// ErrToolFailure indicates the tool failed in a way this wrapper has no
	// dedicated mapping for: unexpected stderr, an unknown result code, or
	// output missing the result-code marker.
	ErrToolFailure = errors.New("tool failure")
)

// CSPError is a failed invocation of one of the external tools, with enough
// context to diagnose it. It supports errors.Is() and errors.As().
type CSPError struct {
	Tool   string // "certmgr" or "cryptcp"
	Op     string // tool operation: "list", "inst", "delete", "signf", "vsignf", "verify"
	Code   string // result code when the tool reported one, lowercase hex
	Output string // raw console output, trimmed
	Err    error  // sentinel or underlying error
}

// Error implements the error interface.
func (e *CSPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Tool, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Tool, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CSPError) Unwrap() error { return e.Err }

// IsOK reports whether code is a success code. cryptcp prints "0" for some
// operations and "0x00000000" for others.
func IsOK(code string) bool {
	switch strings.ToLower(code) {
	case "0", CodeOK:
		return true
	}
	return false
}

// CodeError maps a non-success result code to a *CSPError wrapping the
// matching sentinel. Unknown codes wrap ErrToolFailure.
func CodeError(tool, op, code, output string) *CSPError {
	code = strings.ToLower(code)

	err := ErrToolFailure
	switch code {
	case CodeChainNotChecked:
		err = ErrChainNotChecked
	case CodeInvalidSignature:
		err = ErrInvalidSignature
	case CodeCertificatesNotFound:
		err = ErrCertificatesNotFound
	}

	return &CSPError{
		Tool:   tool,
		Op:     op,
		Code:   code,
		Output: strings.TrimSpace(output),
		Err:    err,
	}
}
