// Package certmgr wraps the CryptoPro CSP certificate store manager binary.
// Every operation is a single synchronous invocation of the external tool;
// the value this package adds is argument formatting and parsing of the
// tool's console output into typed records.
package certmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abakumov/cryptopro-csp/internal/runner"
	"github.com/abakumov/cryptopro-csp/pkg/csp"
)

// DefaultBinary is the certmgr location in a stock CryptoPro CSP
// installation on UNIX platforms.
const DefaultBinary = "/opt/cprocsp/bin/amd64/certmgr"

// DefaultStore is the store certmgr operates on when none is given
// (the current user's personal store).
const DefaultStore = "uMy"

const toolName = "certmgr"

// Manager drives the certmgr binary.
type Manager struct {
	bin    string
	runner runner.Runner
}

// New returns a Manager invoking the given binary through r. An empty bin
// falls back to DefaultBinary; a nil r falls back to local execution.
func New(bin string, r runner.Runner) *Manager {
	if bin == "" {
		bin = DefaultBinary
	}
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Manager{bin: bin, runner: r}
}

// ListOptions narrow a certificate listing.
type ListOptions struct {
	Store      string // certificate store, e.g. "uMy", "uRoot"
	Thumbprint string // SHA-1 thumbprint filter
	DN         string // substring match against subject RDN
	Limit      int    // stop after this many records, 0 = all
}

// InstallOptions describe a certificate installation.
type InstallOptions struct {
	File  string // certificate file to install (required)
	Store string // target store, defaults to DefaultStore
}

// DeleteOptions select certificates to delete. Exactly one of Thumbprint,
// DN or All must be set.
type DeleteOptions struct {
	Thumbprint string
	DN         string
	All        bool
	Store      string
}

// List returns the certificates matching opts. An "Empty certificate list"
// outcome is a normal empty result, not an error.
func (m *Manager) List(ctx context.Context, opts ListOptions) ([]csp.Certificate, error) {
	args := []string{"-list"}
	args = appendOpt(args, "-store", opts.Store)
	args = appendOpt(args, "-thumbprint", opts.Thumbprint)
	args = appendOpt(args, "-dn", opts.DN)

	stdout, err := m.run(ctx, "list", args)
	if err != nil {
		if isEmptyList(err) {
			return nil, nil
		}
		return nil, err
	}

	certs, err := parseCertificates(string(stdout), opts.Limit)
	if err != nil {
		return nil, &csp.CSPError{Tool: toolName, Op: "list", Output: string(stdout), Err: err}
	}
	return certs, nil
}

// Get returns the single certificate with the given thumbprint. The store
// defaults to DefaultStore. A certificate that is not present maps to
// csp.ErrCertificatesNotFound.
func (m *Manager) Get(ctx context.Context, thumbprint, store string) (csp.Certificate, error) {
	if thumbprint == "" {
		return csp.Certificate{}, &csp.CSPError{Tool: toolName, Op: "list", Err: fmt.Errorf("thumbprint is required")}
	}
	if store == "" {
		store = DefaultStore
	}

	certs, err := m.List(ctx, ListOptions{Thumbprint: thumbprint, Store: store})
	if err != nil {
		return csp.Certificate{}, err
	}
	if len(certs) == 0 {
		return csp.Certificate{}, &csp.CSPError{Tool: toolName, Op: "list", Err: csp.ErrCertificatesNotFound}
	}
	return certs[0], nil
}

// Install installs a certificate file into a store.
func (m *Manager) Install(ctx context.Context, opts InstallOptions) error {
	if opts.File == "" {
		return &csp.CSPError{Tool: toolName, Op: "inst", Err: fmt.Errorf("certificate file is required")}
	}
	if opts.Store == "" {
		opts.Store = DefaultStore
	}

	args := []string{"-inst", "-file", opts.File, "-store", opts.Store}
	_, err := m.run(ctx, "inst", args)
	return err
}

// Delete removes certificates from a store.
func (m *Manager) Delete(ctx context.Context, opts DeleteOptions) error {
	selectors := 0
	for _, set := range []bool{opts.Thumbprint != "", opts.DN != "", opts.All} {
		if set {
			selectors++
		}
	}
	if selectors != 1 {
		return &csp.CSPError{Tool: toolName, Op: "delete", Err: fmt.Errorf("exactly one of thumbprint, dn or all must be given")}
	}

	args := []string{"-delete"}
	if opts.All {
		args = append(args, "-all")
	}
	args = appendOpt(args, "-thumbprint", opts.Thumbprint)
	args = appendOpt(args, "-dn", opts.DN)
	args = appendOpt(args, "-store", opts.Store)

	_, err := m.run(ctx, "delete", args)
	return err
}

// run invokes the binary and applies certmgr's stderr convention: any
// output on stderr is a failure, except the "Empty certificate list"
// notice.
func (m *Manager) run(ctx context.Context, op string, args []string) ([]byte, error) {
	stdout, stderr, err := m.runner.Run(ctx, m.bin, args...)
	if err != nil {
		return nil, &csp.CSPError{Tool: toolName, Op: op, Err: err}
	}

	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		if strings.HasPrefix(msg, "Empty certificate list") {
			return nil, &csp.CSPError{Tool: toolName, Op: op, Output: msg, Err: csp.ErrEmptyCertificateList}
		}
		return nil, &csp.CSPError{Tool: toolName, Op: op, Output: msg, Err: fmt.Errorf("%w: %s", csp.ErrToolFailure, msg)}
	}

	return stdout, nil
}

func isEmptyList(err error) bool {
	return errors.Is(err, csp.ErrEmptyCertificateList)
}

func appendOpt(args []string, flag, value string) []string {
	if value == "" {
		return args
	}
	return append(args, flag, value)
}
