package certmgr

import (
	"strings"
	"testing"
	"time"
)

// listTranscript is a certmgr -list console transcript with two records,
// as the UNIX build of the tool prints it.
const listTranscript = `Certmgr 1.1 (c) "Crypto-Pro", 2007-2018.
program for managing certificates, CRLs and stores

=============================================================================
1-------
Issuer              : E=ca@example.ru, C=RU, L=Moscow, O=CRYPTO-PRO LLC, CN=CRYPTO-PRO Test Center 2
Subject             : CN=Test User, O=Test Org, C=RU
Serial              : 0x120012AB34CD56EF
SHA1 Hash           : 0x046255290b0eb1cdd1797d9ab8c81f699e3687f3
SubjKeyID           : 7f4b1a9e33c120aa51b2cc7e0d9f4a6633b0c5d1
Signature Algorithm : GOST R 34.11/34.10-2001
PublicKey Algorithm : GOST R 34.10-2001 (512 bits)
Not valid before    : 06/06/2014 08:51:19 UTC
Not valid after     : 06/09/2014 09:01:19 UTC
PrivateKey Link     : Yes
Container           : HDIMAGE\\te-09300.000\A693
Provider Name       : Crypto-Pro GOST R 34.10-2001 KC1 CSP
Provider Info       : ProvType: 75, KeySpec: 1, Flags: 0x0
2-------
Issuer              : CN=Root CA, O=Example, C=RU
Subject             : CN=Second User, O=Example, C=RU
Serial              : 0x00AB
SHA1 Hash           : 0xaabbccddeeff00112233445566778899aabbccdd
Not valid before    : 01/01/2020 00:00:00 UTC
Not valid after     : 31/12/2030 23:59:59 UTC
=============================================================================

[ErrorCode: 0x00000000]
`

// =============================================================================
// Unit Tests: transcript parsing
// =============================================================================

func TestU_ParseCertificates_Fields(t *testing.T) {
	certs, err := parseCertificates(listTranscript, 0)
	if err != nil {
		t.Fatalf("parseCertificates() error = %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("parseCertificates() returned %d records, want 2", len(certs))
	}

	first := certs[0]
	if first.Thumbprint != "046255290b0eb1cdd1797d9ab8c81f699e3687f3" {
		t.Errorf("Thumbprint = %q, want the hash without 0x", first.Thumbprint)
	}
	if first.Serial != "120012AB34CD56EF" {
		t.Errorf("Serial = %q, want the serial without 0x", first.Serial)
	}

	wantBefore := time.Date(2014, 6, 6, 8, 51, 19, 0, time.UTC)
	if !first.NotBefore.Equal(wantBefore) {
		t.Errorf("NotBefore = %v, want %v", first.NotBefore, wantBefore)
	}
	wantAfter := time.Date(2014, 9, 6, 9, 1, 19, 0, time.UTC)
	if !first.NotAfter.Equal(wantAfter) {
		t.Errorf("NotAfter = %v, want %v", first.NotAfter, wantAfter)
	}

	if got := first.Subject.Get("CN"); got != "Test User" {
		t.Errorf("Subject CN = %q, want %q", got, "Test User")
	}
	if got := first.Issuer.Get("O"); got != "CRYPTO-PRO LLC" {
		t.Errorf("Issuer O = %q, want %q", got, "CRYPTO-PRO LLC")
	}
}

func TestU_ParseCertificates_SecondRecord(t *testing.T) {
	certs, err := parseCertificates(listTranscript, 0)
	if err != nil {
		t.Fatalf("parseCertificates() error = %v", err)
	}

	second := certs[1]
	if second.Thumbprint != "aabbccddeeff00112233445566778899aabbccdd" {
		t.Errorf("Thumbprint = %q", second.Thumbprint)
	}
	if got := second.Subject.Get("CN"); got != "Second User" {
		t.Errorf("Subject CN = %q, want %q", got, "Second User")
	}
}

func TestU_ParseCertificates_Limit(t *testing.T) {
	certs, err := parseCertificates(listTranscript, 1)
	if err != nil {
		t.Fatalf("parseCertificates() error = %v", err)
	}
	if len(certs) != 1 {
		t.Errorf("parseCertificates(limit=1) returned %d records, want 1", len(certs))
	}
}

func TestU_ParseCertificates_NoRecords(t *testing.T) {
	certs, err := parseCertificates("Certmgr 1.1 (c) banner only\n", 0)
	if err != nil {
		t.Fatalf("parseCertificates() error = %v", err)
	}
	if len(certs) != 0 {
		t.Errorf("parseCertificates() returned %d records, want 0", len(certs))
	}
}

func TestU_ParseCertificates_MissingField(t *testing.T) {
	broken := strings.ReplaceAll(listTranscript, "SHA1 Hash", "Some Hash")

	_, err := parseCertificates(broken, 0)
	if err == nil {
		t.Fatal("parseCertificates() error = nil, want missing-field error")
	}
	if !strings.Contains(err.Error(), "record 1") {
		t.Errorf("error %q should name the offending record", err)
	}
	if !strings.Contains(err.Error(), "sha1_hash") {
		t.Errorf("error %q should name the missing field", err)
	}
}

func TestU_ParseCertificates_BadDate(t *testing.T) {
	broken := strings.ReplaceAll(listTranscript, "06/06/2014 08:51:19 UTC", "2014-06-06T08:51:19Z")

	_, err := parseCertificates(broken, 0)
	if err == nil {
		t.Fatal("parseCertificates() error = nil, want date parse error")
	}
	if !strings.Contains(err.Error(), "not_valid_before") {
		t.Errorf("error %q should name the date field", err)
	}
}

func TestU_NormalizeField(t *testing.T) {
	tests := []struct {
		key, val  string
		wantKey   string
		wantValue string
	}{
		{"SHA1 Hash           ", " 0x0462", "sha1_hash", "0462"},
		{"Serial              ", " 0x00AB", "serial", "00AB"},
		{"Not valid before    ", " 06/06/2014 08:51:19 UTC", "not_valid_before", "06/06/2014 08:51:19 UTC"},
		{"PrivateKey Link     ", " Yes", "privatekey_link", "Yes"},
	}

	for _, tt := range tests {
		k, v := normalizeField(tt.key, tt.val)
		if k != tt.wantKey || v != tt.wantValue {
			t.Errorf("normalizeField(%q, %q) = (%q, %q), want (%q, %q)",
				tt.key, tt.val, k, v, tt.wantKey, tt.wantValue)
		}
	}
}

// Provider Info values contain their own colons; only the first colon on a
// line separates key from value.
func TestU_ParseRecord_ColonInValue(t *testing.T) {
	fields := parseRecord("\nProvider Info       : ProvType: 75, KeySpec: 1, Flags: 0x0\n")

	if got := fields["provider_info"]; got != "ProvType: 75, KeySpec: 1, Flags: 0x0" {
		t.Errorf("provider_info = %q", got)
	}
}
