package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abakumov/cryptopro-csp/internal/audit"
	"github.com/abakumov/cryptopro-csp/internal/cli"
	"github.com/abakumov/cryptopro-csp/internal/cryptcp"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify detached signatures with cryptcp",
	Long: `Verify detached signatures.

This command provides:
  - file:    Verify a signature created for a file in a directory
  - message: Verify a signature file against a certificate, extracting the data

Chain checking is on by default; disable it with --nochain when the issuer
chain is not available on this host.

Examples:
  # Verify report.pdf.sgn in /tmp/in against signer.cer
  cspctl verify file --dir /tmp/in --cert signer.cer --file report.pdf

  # Verify a signature file and write the signed data out
  cspctl verify message --cert signer.cer --file report.sgn --data report.pdf`,
}

var verifyFileCmd = &cobra.Command{
	Use:   "file",
	Short: "Verify a detached signature for a file",
	RunE:  runVerifyFile,
}

var (
	verifyFileDir     string
	verifyFileCert    string
	verifyFileName    string
	verifyFileDN      string
	verifyFileNoChain bool
	verifyFileNoRev   bool
)

var verifyMessageCmd = &cobra.Command{
	Use:   "message",
	Short: "Verify a signature file against a certificate",
	RunE:  runVerifyMessage,
}

var (
	verifyMsgCert     string
	verifyMsgFile     string
	verifyMsgData     string
	verifyMsgDN       string
	verifyMsgNoChain  bool
	verifyMsgNoRev    bool
	verifyMsgShowCode bool
)

func init() {
	flags := verifyFileCmd.Flags()
	flags.StringVar(&verifyFileDir, "dir", "", "Directory holding the file and its signature")
	flags.StringVar(&verifyFileCert, "cert", "", "Signer certificate file (relative to --dir)")
	flags.StringVar(&verifyFileName, "file", "", "Signed file name")
	flags.StringVar(&verifyFileDN, "dn", "", "Require the signer DN to match this substring")
	flags.BoolVar(&verifyFileNoChain, "nochain", false, "Skip certificate chain checking")
	flags.BoolVar(&verifyFileNoRev, "norev", false, "Skip revocation checking")

	flags = verifyMessageCmd.Flags()
	flags.StringVar(&verifyMsgCert, "cert", "", "Signer certificate file")
	flags.StringVar(&verifyMsgFile, "file", "", "Signature file to verify")
	flags.StringVar(&verifyMsgData, "data", "", "Path to write the signed data to")
	flags.StringVar(&verifyMsgDN, "dn", "", "Require the signer DN to match this substring")
	flags.BoolVar(&verifyMsgNoChain, "nochain", false, "Skip certificate chain checking")
	flags.BoolVar(&verifyMsgNoRev, "norev", false, "Skip revocation checking")
	flags.BoolVar(&verifyMsgShowCode, "code", false, "Print the raw tool result code")

	verifyCmd.AddCommand(verifyFileCmd)
	verifyCmd.AddCommand(verifyMessageCmd)
}

func runVerifyFile(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	signer, err := signTool.VerifyFile(ctx, cryptcp.VerifyFileOptions{
		Dir:      verifyFileDir,
		CertFile: verifyFileCert,
		File:     verifyFileName,
		DN:       verifyFileDN,
		NoChain:  verifyFileNoChain,
		NoRev:    verifyFileNoRev,
	})
	signedPath := filepath.Join(verifyFileDir, verifyFileName)
	if err != nil {
		_ = audit.Log(audit.NewEvent(audit.EventVerify, audit.ResultFailure).
			WithObject(audit.Object{Type: "signature", Path: signedPath}).
			WithContext(audit.Context{Tool: "cryptcp", Reason: err.Error()}))
		return err
	}

	if err := audit.Log(audit.NewEvent(audit.EventVerify, audit.ResultSuccess).
		WithObject(audit.Object{Type: "signature", Path: signedPath}).
		WithContext(audit.Context{Tool: "cryptcp", Signer: signer})); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signature verification: %s\n", cli.FormatStatus("verified"))
	fmt.Fprintf(out, "  Signer: %s\n", signer)
	return nil
}

func runVerifyMessage(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	result, err := signTool.VerifyMessage(ctx, cryptcp.VerifyMessageOptions{
		CertFile: verifyMsgCert,
		File:     verifyMsgFile,
		DataFile: verifyMsgData,
		DN:       verifyMsgDN,
		NoChain:  verifyMsgNoChain,
		NoRev:    verifyMsgNoRev,
	})
	if err != nil {
		_ = audit.Log(audit.NewEvent(audit.EventVerify, audit.ResultFailure).
			WithObject(audit.Object{Type: "signature", Path: verifyMsgFile}).
			WithContext(audit.Context{Tool: "cryptcp", Reason: err.Error()}))
		return err
	}

	if err := audit.Log(audit.NewEvent(audit.EventVerify, audit.ResultSuccess).
		WithObject(audit.Object{Type: "signature", Path: verifyMsgFile}).
		WithContext(audit.Context{Tool: "cryptcp", Signer: result.Signer, Code: result.Code})); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signature verification: %s\n", cli.FormatStatus("verified"))
	fmt.Fprintf(out, "  Signer: %s\n", result.Signer)
	if verifyMsgShowCode {
		fmt.Fprintf(out, "  Code:   %s\n", result.Code)
	}
	return nil
}
