package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abakumov/cryptopro-csp/internal/audit"
	"github.com/abakumov/cryptopro-csp/internal/certmgr"
	"github.com/abakumov/cryptopro-csp/internal/cli"
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Certificate store operations",
	Long: `Manage certificates in the CSP stores via certmgr.

This command provides:
  - list:    List certificates in a store
  - get:     Show one certificate by thumbprint
  - install: Install a certificate from a file
  - delete:  Delete certificates from a store

Examples:
  # List the personal store
  cspctl cert list --store uMy

  # Filter by subject DN substring
  cspctl cert list --dn "Ivanov"

  # Install a certificate
  cspctl cert install --file cert.cer

  # Delete by thumbprint
  cspctl cert delete --thumbprint 046255290b0eb1cdd1797d9ab8c81f699e3687f3`,
}

var certListCmd = &cobra.Command{
	Use:   "list",
	Short: "List certificates in a store",
	RunE:  runCertList,
}

var (
	certListStore      string
	certListThumbprint string
	certListDN         string
	certListLimit      int
	certListFormat     string
)

var certGetCmd = &cobra.Command{
	Use:   "get <thumbprint>",
	Short: "Show one certificate by thumbprint",
	Args:  cobra.ExactArgs(1),
	RunE:  runCertGet,
}

var certGetStore string

var certInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a certificate from a file",
	RunE:  runCertInstall,
}

var (
	certInstallFile  string
	certInstallStore string
)

var certDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete certificates from a store",
	Long: `Delete certificates from a store.

Exactly one selector is required: --thumbprint, --dn or --all.`,
	RunE: runCertDelete,
}

var (
	certDeleteThumbprint string
	certDeleteDN         string
	certDeleteAll        bool
	certDeleteStore      string
)

func init() {
	flags := certListCmd.Flags()
	flags.StringVar(&certListStore, "store", "", "Certificate store (defaults to the configured store)")
	flags.StringVar(&certListThumbprint, "thumbprint", "", "Filter by SHA-1 thumbprint")
	flags.StringVar(&certListDN, "dn", "", "Filter by subject DN substring")
	flags.IntVar(&certListLimit, "limit", 0, "Return at most this many certificates (0 = all)")
	flags.StringVar(&certListFormat, "format", "table", "Output format: table or plain")

	certGetCmd.Flags().StringVar(&certGetStore, "store", "", "Certificate store (defaults to the configured store)")

	flags = certInstallCmd.Flags()
	flags.StringVar(&certInstallFile, "file", "", "Certificate file to install")
	flags.StringVar(&certInstallStore, "store", "", "Target store (defaults to the configured store)")

	flags = certDeleteCmd.Flags()
	flags.StringVar(&certDeleteThumbprint, "thumbprint", "", "Delete the certificate with this thumbprint")
	flags.StringVar(&certDeleteDN, "dn", "", "Delete certificates matching this DN substring")
	flags.BoolVar(&certDeleteAll, "all", false, "Delete every certificate in the store")
	flags.StringVar(&certDeleteStore, "store", "", "Certificate store (defaults to the configured store)")

	certCmd.AddCommand(certListCmd)
	certCmd.AddCommand(certGetCmd)
	certCmd.AddCommand(certInstallCmd)
	certCmd.AddCommand(certDeleteCmd)
}

func runCertList(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	certs, err := certMgr.List(ctx, certmgr.ListOptions{
		Store:      storeOr(certListStore),
		Thumbprint: certListThumbprint,
		DN:         certListDN,
		Limit:      certListLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(certs) == 0 {
		fmt.Fprintln(out, "No certificates found.")
		return nil
	}

	switch certListFormat {
	case "table":
		cli.WriteCertificateTable(out, certs, time.Now())
	case "plain":
		for i, cert := range certs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			cli.WriteCertificateDetails(out, cert, time.Now())
		}
	default:
		return fmt.Errorf("unknown format %q (want table or plain)", certListFormat)
	}
	return nil
}

func runCertGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	cert, err := certMgr.Get(ctx, args[0], storeOr(certGetStore))
	if err != nil {
		return err
	}

	cli.WriteCertificateDetails(cmd.OutOrStdout(), cert, time.Now())
	return nil
}

func runCertInstall(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	store := storeOr(certInstallStore)
	err := certMgr.Install(ctx, certmgr.InstallOptions{
		File:  certInstallFile,
		Store: store,
	})
	if err != nil {
		_ = audit.Log(audit.NewEvent(audit.EventCertInstalled, audit.ResultFailure).
			WithObject(audit.Object{Type: "certificate", Path: certInstallFile, Store: store}).
			WithContext(audit.Context{Tool: "certmgr", Reason: err.Error()}))
		return err
	}

	if err := audit.Log(audit.NewEvent(audit.EventCertInstalled, audit.ResultSuccess).
		WithObject(audit.Object{Type: "certificate", Path: certInstallFile, Store: store}).
		WithContext(audit.Context{Tool: "certmgr"})); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Certificate installed to %s\n", store)
	return nil
}

func runCertDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	store := storeOr(certDeleteStore)
	err := certMgr.Delete(ctx, certmgr.DeleteOptions{
		Thumbprint: certDeleteThumbprint,
		DN:         certDeleteDN,
		All:        certDeleteAll,
		Store:      store,
	})
	if err != nil {
		_ = audit.Log(audit.NewEvent(audit.EventCertDeleted, audit.ResultFailure).
			WithObject(audit.Object{Type: "certificate", Thumbprint: certDeleteThumbprint, Store: store}).
			WithContext(audit.Context{Tool: "certmgr", Reason: err.Error()}))
		return err
	}

	if err := audit.Log(audit.NewEvent(audit.EventCertDeleted, audit.ResultSuccess).
		WithObject(audit.Object{Type: "certificate", Thumbprint: certDeleteThumbprint, Store: store}).
		WithContext(audit.Context{Tool: "certmgr"})); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Certificate(s) deleted from %s\n", store)
	return nil
}
