package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/abakumov/cryptopro-csp/pkg/csp"
)

const timeFormat = "2006-01-02 15:04:05 MST"

// CertificateStatus classifies a certificate against the given instant.
func CertificateStatus(cert csp.Certificate, now time.Time) string {
	switch {
	case now.Before(cert.NotBefore):
		return "pending"
	case now.After(cert.NotAfter):
		return "expired"
	default:
		return "valid"
	}
}

// WriteCertificateTable renders certificates as a table, one row per
// certificate.
func WriteCertificateTable(w io.Writer, certs []csp.Certificate, now time.Time) {
	table := tablewriter.NewTable(w)
	table.Header("#", "Thumbprint", "Subject", "Issuer", "Expires", "Status")

	var rows [][]string
	for i, cert := range certs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			cert.Thumbprint,
			subjectLabel(cert.Subject),
			subjectLabel(cert.Issuer),
			cert.NotAfter.Format("2006-01-02"),
			FormatStatus(CertificateStatus(cert, now)),
		})
	}

	table.Bulk(rows)
	table.Render()
}

// WriteCertificateDetails prints the full record of a single certificate.
func WriteCertificateDetails(w io.Writer, cert csp.Certificate, now time.Time) {
	fmt.Fprintf(w, "Thumbprint:  %s\n", cert.Thumbprint)
	fmt.Fprintf(w, "Serial:      %s\n", cert.Serial)
	fmt.Fprintf(w, "Subject:     %s\n", cert.Subject)
	fmt.Fprintf(w, "Issuer:      %s\n", cert.Issuer)
	fmt.Fprintf(w, "Not Before:  %s\n", cert.NotBefore.Format(timeFormat))
	fmt.Fprintf(w, "Not After:   %s\n", cert.NotAfter.Format(timeFormat))
	fmt.Fprintf(w, "Status:      %s\n", FormatStatus(CertificateStatus(cert, now)))
}

// subjectLabel prefers the CN attribute and falls back to the whole name.
func subjectLabel(dn csp.DN) string {
	if cn := dn.Get("CN"); cn != "" {
		return cn
	}
	return dn.String()
}
