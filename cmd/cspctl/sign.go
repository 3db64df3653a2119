package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abakumov/cryptopro-csp/internal/audit"
	"github.com/abakumov/cryptopro-csp/internal/cryptcp"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Create a detached signature with cryptcp",
	Long: `Create a detached signature for a file.

The signing key is selected by the SHA-1 thumbprint of its certificate in
the personal store. The signature is written next to the input file with a
.sgn suffix, or into --dir when given.

Examples:
  # Sign a file, embedding the signer certificate
  cspctl sign --file report.pdf --thumbprint 046255290b0eb1cdd1797d9ab8c81f699e3687f3

  # Write the signature into a different directory
  cspctl sign --file report.pdf --thumbprint 0462... --dir /tmp/out

  # Omit the signer certificate from the signature
  cspctl sign --file report.pdf --thumbprint 0462... --no-cert`,
	RunE: runSign,
}

var (
	signFile       string
	signThumbprint string
	signDir        string
	signNoCert     bool
)

func init() {
	flags := signCmd.Flags()
	flags.StringVar(&signFile, "file", "", "File to sign")
	flags.StringVar(&signThumbprint, "thumbprint", "", "SHA-1 thumbprint of the signing certificate")
	flags.StringVar(&signDir, "dir", "", "Directory for the signature (defaults to the file's directory)")
	flags.BoolVar(&signNoCert, "no-cert", false, "Do not embed the signer certificate in the signature")
}

func runSign(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	sigPath, err := signTool.Sign(ctx, cryptcp.SignOptions{
		File:        signFile,
		Thumbprint:  signThumbprint,
		IncludeCert: !signNoCert,
		Dir:         signDir,
	})
	if err != nil {
		_ = audit.Log(audit.NewEvent(audit.EventSign, audit.ResultFailure).
			WithObject(audit.Object{Type: "signature", Thumbprint: signThumbprint, Path: signFile}).
			WithContext(audit.Context{Tool: "cryptcp", Reason: err.Error()}))
		return err
	}

	if err := audit.Log(audit.NewEvent(audit.EventSign, audit.ResultSuccess).
		WithObject(audit.Object{Type: "signature", Thumbprint: signThumbprint, Path: sigPath}).
		WithContext(audit.Context{Tool: "cryptcp"})); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signature written to %s\n", sigPath)
	return nil
}
