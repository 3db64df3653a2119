// Package cryptcp wraps the CryptoPro CSP sign/verify binary. cryptcp
// reports its outcome through a "[ErrorCode: ...]" marker on stdout rather
// than through stderr or the exit status, so every operation here runs the
// tool, extracts that code, and either returns parsed results or the mapped
// error.
package cryptcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/abakumov/cryptopro-csp/internal/runner"
	"github.com/abakumov/cryptopro-csp/pkg/csp"
)

// DefaultBinary is the cryptcp location in a stock CryptoPro CSP
// installation on UNIX platforms.
const DefaultBinary = "/opt/cprocsp/bin/amd64/cryptcp"

const toolName = "cryptcp"

// Tool drives the cryptcp binary.
type Tool struct {
	bin    string
	runner runner.Runner
}

// New returns a Tool invoking the given binary through r. An empty bin
// falls back to DefaultBinary; a nil r falls back to local execution.
func New(bin string, r runner.Runner) *Tool {
	if bin == "" {
		bin = DefaultBinary
	}
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Tool{bin: bin, runner: r}
}

// SignOptions describe a detached signature request.
type SignOptions struct {
	File        string // file to sign (required)
	Thumbprint  string // thumbprint of the signing certificate (required)
	IncludeCert bool   // include the signer certificate in the signature
	Dir         string // signature directory, defaults to the file's directory
}

// VerifyFileOptions describe verification of a detached file signature.
type VerifyFileOptions struct {
	Dir      string // directory holding the signature (required)
	CertFile string // signer certificate file name within Dir (required)
	File     string // signed file name within Dir (required)
	NoChain  bool   // skip chain verification instead of failing on it
	NoRev    bool   // skip revocation checks on the chain
	DN       string // restrict acceptable signers by RDN substring
}

// VerifyMessageOptions describe verification of a signed message.
type VerifyMessageOptions struct {
	CertFile string // signer certificate file path (required)
	File     string // signed message path (required)
	DataFile string // where the extracted content is written (required)
	NoChain  bool
	NoRev    bool
	DN       string
}

// VerifyResult is the outcome of a successful verification.
type VerifyResult struct {
	Signer string // signer identity as reported by the tool
	Code   string // raw result code, lowercase
}

// Sign creates a detached signature for opts.File with the certificate
// identified by opts.Thumbprint and returns the signature file path.
func (t *Tool) Sign(ctx context.Context, opts SignOptions) (string, error) {
	if opts.File == "" || opts.Thumbprint == "" {
		return "", &csp.CSPError{Tool: toolName, Op: "signf", Err: fmt.Errorf("file and thumbprint are required")}
	}

	dir := opts.Dir
	if dir == "" {
		dir = filepath.Dir(opts.File)
	}

	args := []string{"-signf", opts.File}
	if opts.IncludeCert {
		args = append(args, "-cert")
	}
	args = append(args, "-dir", dir, "-thumbprint", opts.Thumbprint)

	if _, err := t.run(ctx, "signf", args); err != nil {
		return "", err
	}

	return filepath.Join(dir, filepath.Base(opts.File)+".sgn"), nil
}

// VerifyFile verifies a detached file signature and returns the signer
// identity reported by the tool.
func (t *Tool) VerifyFile(ctx context.Context, opts VerifyFileOptions) (string, error) {
	if opts.Dir == "" || opts.CertFile == "" || opts.File == "" {
		return "", &csp.CSPError{Tool: toolName, Op: "vsignf", Err: fmt.Errorf("dir, cert file and file are required")}
	}

	args := []string{"-vsignf", filepath.Join(opts.Dir, opts.File)}
	args = appendVerifyFlags(args, opts.NoChain, opts.NoRev, opts.DN)
	args = append(args, "-dir", opts.Dir, "-f", filepath.Join(opts.Dir, opts.CertFile))

	stdout, err := t.run(ctx, "vsignf", args)
	if err != nil {
		return "", err
	}

	signer, ok := extractSigner(stdout)
	if !ok {
		return "", &csp.CSPError{Tool: toolName, Op: "vsignf", Output: stdout, Err: fmt.Errorf("%w: no signer in output", csp.ErrToolFailure)}
	}
	return signer, nil
}

// VerifyMessage verifies a signed message, writes the extracted content to
// opts.DataFile, and returns the signer identity along with the raw result
// code.
func (t *Tool) VerifyMessage(ctx context.Context, opts VerifyMessageOptions) (VerifyResult, error) {
	if opts.CertFile == "" || opts.File == "" || opts.DataFile == "" {
		return VerifyResult{}, &csp.CSPError{Tool: toolName, Op: "verify", Err: fmt.Errorf("cert file, file and data file are required")}
	}

	args := []string{"-verify", opts.File, opts.DataFile}
	args = appendVerifyFlags(args, opts.NoChain, opts.NoRev, opts.DN)
	args = append(args, "-f", opts.CertFile)

	stdout, err := t.run(ctx, "verify", args)
	if err != nil {
		return VerifyResult{}, err
	}

	code, _ := extractResultCode(stdout)
	signer, ok := extractSigner(stdout)
	if !ok {
		return VerifyResult{}, &csp.CSPError{Tool: toolName, Op: "verify", Output: stdout, Err: fmt.Errorf("%w: no signer in output", csp.ErrToolFailure)}
	}
	return VerifyResult{Signer: signer, Code: code}, nil
}

// run invokes the binary and applies cryptcp's result-code convention.
// It returns stdout only when the tool reported success.
func (t *Tool) run(ctx context.Context, op string, args []string) (string, error) {
	stdout, _, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return "", &csp.CSPError{Tool: toolName, Op: op, Err: err}
	}

	out := string(stdout)
	code, ok := extractResultCode(out)
	if !ok {
		return "", &csp.CSPError{Tool: toolName, Op: op, Output: out, Err: fmt.Errorf("%w: no result code in output", csp.ErrToolFailure)}
	}
	if !csp.IsOK(code) {
		return "", csp.CodeError(toolName, op, code, out)
	}

	return out, nil
}

func appendVerifyFlags(args []string, noChain, noRev bool, dn string) []string {
	if noChain {
		args = append(args, "-nochain")
	} else {
		args = append(args, "-errchain")
	}
	if noRev {
		args = append(args, "-norev")
	}
	if dn != "" {
		args = append(args, "-dn", dn)
	}
	return args
}
