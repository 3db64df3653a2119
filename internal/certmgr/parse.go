package certmgr

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/abakumov/cryptopro-csp/pkg/csp"
)

// certmgr separates records with numbered dashed headers ("1-------").
var recordSep = regexp.MustCompile(`\d+-{7}`)

// timeLayout matches certmgr validity timestamps, day first:
// "06/09/2014 09:01:19 UTC".
const timeLayout = "02/01/2006 15:04:05 UTC"

// Field keys after normalisation (lowercased, spaces to underscores).
const (
	fieldSHA1Hash       = "sha1_hash"
	fieldSerial         = "serial"
	fieldNotValidBefore = "not_valid_before"
	fieldNotValidAfter  = "not_valid_after"
	fieldIssuer         = "issuer"
	fieldSubject        = "subject"
)

// parseCertificates converts a certmgr -list transcript into certificate
// records. Text before the first record header (the banner and the "====="
// rule) is ignored. When limit > 0, parsing stops after that many records.
func parseCertificates(text string, limit int) ([]csp.Certificate, error) {
	chunks := recordSep.Split(text, -1)
	if len(chunks) < 2 {
		return nil, nil
	}

	var certs []csp.Certificate
	for i, chunk := range chunks[1:] {
		fields := parseRecord(chunk)

		cert, err := makeCertificate(fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		certs = append(certs, cert)

		if limit > 0 && len(certs) == limit {
			break
		}
	}

	return certs, nil
}

// parseRecord collects the "key : value" lines of one record. A line
// starting with "==" closes the record body; blank lines and lines without
// a colon are skipped.
func parseRecord(chunk string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(chunk, "\n") {
		if strings.HasPrefix(line, "==") {
			break
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		k, v := normalizeField(key, val)
		if k == "" {
			continue
		}
		fields[k] = v
	}
	return fields
}

// normalizeField turns a raw "SHA1 Hash" / " 0x0462..." pair into
// ("sha1_hash", "0462..."). Hash and serial values lose the 0x prefix
// certmgr prints.
func normalizeField(key, val string) (string, string) {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
	v := strings.TrimSpace(val)

	if k == fieldSHA1Hash || k == fieldSerial {
		v = strings.ReplaceAll(v, "0x", "")
	}

	return k, v
}

func makeCertificate(fields map[string]string) (csp.Certificate, error) {
	for _, required := range []string{
		fieldSHA1Hash, fieldSerial,
		fieldNotValidBefore, fieldNotValidAfter,
		fieldIssuer, fieldSubject,
	} {
		if _, ok := fields[required]; !ok {
			return csp.Certificate{}, fmt.Errorf("missing field %q", required)
		}
	}

	notBefore, err := time.Parse(timeLayout, fields[fieldNotValidBefore])
	if err != nil {
		return csp.Certificate{}, fmt.Errorf("parsing %s: %w", fieldNotValidBefore, err)
	}
	notAfter, err := time.Parse(timeLayout, fields[fieldNotValidAfter])
	if err != nil {
		return csp.Certificate{}, fmt.Errorf("parsing %s: %w", fieldNotValidAfter, err)
	}

	return csp.Certificate{
		Thumbprint: fields[fieldSHA1Hash],
		Serial:     fields[fieldSerial],
		NotBefore:  notBefore,
		NotAfter:   notAfter,
		Issuer:     csp.NewDN(fields[fieldIssuer]),
		Subject:    csp.NewDN(fields[fieldSubject]),
	}, nil
}
