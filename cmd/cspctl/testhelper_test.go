package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	dir, err := os.MkdirTemp("", "cspctl-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return &testContext{t: t, tempDir: dir}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name, content string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// writeTool writes an executable shell script standing in for a CSP binary.
func (tc *testContext) writeTool(name, script string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		tc.t.Fatalf("Failed to write tool %s: %v", name, err)
	}
	return path
}

// writeConfig writes a config file pointing both tools at the given scripts.
func (tc *testContext) writeConfig(certmgrBin, cryptcpBin string) string {
	tc.t.Helper()
	return tc.writeFile("cspctl.yaml", fmt.Sprintf(
		"certmgr: %s\ncryptcp: %s\nstore: uMy\ntimeout: 30s\n", certmgrBin, cryptcpBin))
}

// echoTranscript builds a script that prints the given transcript on stdout.
func echoTranscript(transcript string) string {
	return fmt.Sprintf("cat <<'EOF'\n%s\nEOF\n", transcript)
}

const testThumbprint = "046255290b0eb1cdd1797d9ab8c81f699e3687f3"

// certmgrListTranscript is a certmgr -list transcript with one certificate.
const certmgrListTranscript = `Certmgr 1.1 (c) "Crypto-Pro", 2007-2021.
program for managing certificates, CRLs and stores

=============================================================================
1-------
Issuer            : CN=Test CA, O=CryptoPro, C=RU
Subject           : CN=Ivanov Ivan, O=Test Org, C=RU
Serial            : 0x017b058e
SHA1 Hash         : 0x` + testThumbprint + `
Not valid before  : 10/01/2024 09:00:00 UTC
Not valid after   : 10/01/2027 09:00:00 UTC
=============================================================================

[ErrorCode: 0x00000000]`

// cryptcpOKTranscript reports a successful sign operation.
const cryptcpOKTranscript = `CryptCP 4.0 (c) "Crypto-Pro", 2003-2021.
Command-line tool for file signature and encryption.

Folder './':
report.pdf... The data will be signed.

[ErrorCode: 0x00000000]`

// cryptcpVerifyTranscript reports a successful verification with a signer.
const cryptcpVerifyTranscript = `CryptCP 4.0 (c) "Crypto-Pro", 2003-2021.
Command-line tool for file signature and encryption.

Signer: Ivanov Ivan, Test Org, RU
The signature is verified.

[ErrorCode: 0x00000000]`

// cryptcpNotFoundTranscript reports that no certificate matched.
const cryptcpNotFoundTranscript = `CryptCP 4.0 (c) "Crypto-Pro", 2003-2021.
Command-line tool for file signature and encryption.

[ErrorCode: 0x2000012D]`
