package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abakumov/cryptopro-csp/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log management",
	Long: `Commands for managing and verifying audit logs.

The audit log provides a tamper-evident record of store changes and
signature operations. Each event is cryptographically chained using
SHA-256 hashes.

Examples:
  # Verify audit log integrity
  cspctl audit verify --log /var/log/cspctl/audit.jsonl

  # Show last 10 events
  cspctl audit tail --log /var/log/cspctl/audit.jsonl -n 10`,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify audit log integrity",
	Long: `Verify the cryptographic hash chain of an audit log file.

Each event in the log contains:
  - hash_prev: SHA-256 hash of the previous event
  - hash: SHA-256 hash of the current event

The chain starts with hash_prev="sha256:genesis" for the first event.

If the chain is broken (events modified, deleted, or inserted),
this command will report the location and nature of the tampering.`,
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent audit events",
	Long:  `Display the most recent audit events from the log file.`,
	RunE:  runAuditTail,
}

var (
	auditLogFile  string
	auditTailNum  int
	auditShowJSON bool
)

func init() {
	auditVerifyCmd.Flags().StringVar(&auditLogFile, "log", "", "Path to audit log file (required)")
	_ = auditVerifyCmd.MarkFlagRequired("log")

	auditTailCmd.Flags().StringVar(&auditLogFile, "log", "", "Path to audit log file (required)")
	_ = auditTailCmd.MarkFlagRequired("log")
	auditTailCmd.Flags().IntVarP(&auditTailNum, "num", "n", 10, "Number of events to show")
	auditTailCmd.Flags().BoolVar(&auditShowJSON, "json", false, "Output as JSON")

	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Verifying audit log: %s\n\n", auditLogFile)

	count, err := audit.VerifyChain(auditLogFile)
	if err != nil {
		fmt.Fprintf(out, "VERIFICATION FAILED\n")
		fmt.Fprintf(out, "  Valid events: %d\n", count)
		fmt.Fprintf(out, "  Error: %s\n", err)
		return fmt.Errorf("audit log verification failed: %w", err)
	}

	fmt.Fprintf(out, "VERIFICATION PASSED\n")
	fmt.Fprintf(out, "  Total events: %d\n", count)
	fmt.Fprintf(out, "  Hash chain: VALID\n")

	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(auditLogFile)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(data) == 0 {
		fmt.Fprintln(out, "Audit log is empty")
		return nil
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	start := 0
	if len(lines) > auditTailNum {
		start = len(lines) - auditTailNum
	}
	lines = lines[start:]

	if auditShowJSON {
		fmt.Fprintln(out, "[")
		for i, line := range lines {
			if i > 0 {
				fmt.Fprintln(out, ",")
			}
			fmt.Fprint(out, line)
		}
		fmt.Fprintln(out, "\n]")
		return nil
	}

	for _, line := range lines {
		var event audit.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			fmt.Fprintf(out, "  [ERROR] %s\n", err)
			continue
		}
		printAuditEvent(out, &event)
	}

	return nil
}

func printAuditEvent(out io.Writer, e *audit.Event) {
	resultMark := "+"
	if e.Result == audit.ResultFailure {
		resultMark = "x"
	}

	fmt.Fprintf(out, "[%s] %s %s\n", e.Timestamp, resultMark, e.EventType)
	fmt.Fprintf(out, "    Actor:  %s@%s\n", e.Actor.ID, e.Actor.Host)

	if e.Object.Type != "" {
		fmt.Fprintf(out, "    Object: %s", e.Object.Type)
		if e.Object.Thumbprint != "" {
			fmt.Fprintf(out, " thumbprint=%s", e.Object.Thumbprint)
		}
		if e.Object.Store != "" {
			fmt.Fprintf(out, " store=%s", e.Object.Store)
		}
		if e.Object.Path != "" {
			fmt.Fprintf(out, " path=%s", e.Object.Path)
		}
		fmt.Fprintln(out)
	}

	if e.Context.Tool != "" || e.Context.Signer != "" || e.Context.Reason != "" {
		fmt.Fprint(out, "    Context:")
		if e.Context.Tool != "" {
			fmt.Fprintf(out, " tool=%s", e.Context.Tool)
		}
		if e.Context.Code != "" {
			fmt.Fprintf(out, " code=%s", e.Context.Code)
		}
		if e.Context.Signer != "" {
			fmt.Fprintf(out, " signer=%s", e.Context.Signer)
		}
		if e.Context.Reason != "" {
			fmt.Fprintf(out, " reason=%s", e.Context.Reason)
		}
		fmt.Fprintln(out)
	}
}
