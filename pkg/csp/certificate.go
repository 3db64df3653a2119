// Package csp provides the public types and errors shared by the CryptoPro
// CSP tool wrappers. The actual cryptography is performed by the external
// certmgr and cryptcp binaries; this package only models what their console
// output describes.
package csp

import (
	"strings"
	"time"
)

// Certificate is a single certificate record as reported by certmgr -list.
type Certificate struct {
	// Thumbprint is the SHA-1 hash of the certificate, hex without the
	// 0x prefix certmgr prints.
	Thumbprint string

	// Serial is the certificate serial number, hex without the 0x prefix.
	Serial string

	NotBefore time.Time
	NotAfter  time.Time

	Issuer  DN
	Subject DN
}

// ValidAt reports whether the certificate validity interval covers t.
func (c Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.NotBefore) && !t.After(c.NotAfter)
}

// DN is a distinguished name as printed by the CSP tools, e.g.
// "CN=Test User, O=CRYPTO-PRO LLC, C=RU". The raw line is kept verbatim;
// attribute access parses it on demand.
type DN struct {
	raw string
}

// NewDN wraps a raw distinguished-name line.
func NewDN(raw string) DN {
	return DN{raw: raw}
}

// String returns the raw line exactly as the tool printed it.
func (d DN) String() string { return d.raw }

// Attributes splits the DN into key/value pairs. Items without an "="
// (or with more than one, as happens with quoted organisation names the
// tools print unescaped) keep everything after the first "=" as the value.
// Malformed items are skipped, matching the tolerant behaviour callers
// expect from certmgr output.
func (d DN) Attributes() map[string]string {
	attrs := make(map[string]string)
	for _, item := range strings.Split(d.raw, ", ") {
		key, val, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		attrs[key] = val
	}
	return attrs
}

// Get returns the value of a single DN attribute, or "" when absent.
func (d DN) Get(key string) string {
	return d.Attributes()[key]
}
