// Command cspctl drives the CryptoPro CSP console tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abakumov/cryptopro-csp/internal/audit"
	"github.com/abakumov/cryptopro-csp/internal/certmgr"
	"github.com/abakumov/cryptopro-csp/internal/config"
	"github.com/abakumov/cryptopro-csp/internal/cryptcp"
	"github.com/abakumov/cryptopro-csp/internal/logging"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	configPath   string
	auditLogPath string
	verbose      bool
)

// Shared state built by the root pre-run.
var (
	cfg      config.Config
	certMgr  *certmgr.Manager
	signTool *cryptcp.Tool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cspctl",
	Short: "CryptoPro CSP certificate store and signature tool",
	Long: `cspctl wraps the CryptoPro CSP console tools (certmgr and cryptcp)
behind one CLI with typed output and stable error codes.

The CSP binaries stay in charge of all cryptography. cspctl builds their
command lines, parses their console output into structured records, and
maps their hex result codes to meaningful errors.

Examples:
  # List certificates in the personal store
  cspctl cert list

  # Install a certificate from a file
  cspctl cert install --file cert.cer --store uMy

  # Create a detached signature
  cspctl sign --file report.pdf --thumbprint 046255290b0eb1cdd1797d9ab8c81f699e3687f3

  # Verify a detached signature against a certificate file
  cspctl verify file --dir /tmp/in --cert signer.cer --file report.pdf`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init("cspctl", verbose)

		// Check for a config path from the environment if not set via flag
		if configPath == "" {
			configPath = os.Getenv("CSPCTL_CONFIG")
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		r := cfg.Runner()
		certMgr = certmgr.New(cfg.Certmgr, r)
		signTool = cryptcp.New(cfg.Cryptcp, r)

		// Check for audit log path from environment if not set via flag
		if auditLogPath == "" {
			auditLogPath = os.Getenv("CSPCTL_AUDIT_LOG")
		}
		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "",
		"Path to config file (or set CSPCTL_CONFIG env var)")
	flags.StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set CSPCTL_AUDIT_LOG env var)")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug output, including tool command lines")

	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(auditCmd)
}

// opContext bounds a single tool invocation with the configured timeout.
func opContext() (context.Context, context.CancelFunc) {
	if t := cfg.Timeout.Std(); t > 0 {
		return context.WithTimeout(context.Background(), t)
	}
	return context.WithCancel(context.Background())
}

// storeOr falls back to the configured default store.
func storeOr(store string) string {
	if store != "" {
		return store
	}
	return cfg.Store
}
