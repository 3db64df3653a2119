package cryptcp

import (
	"regexp"
	"strings"
)

// cryptcp closes every run with "[ErrorCode: 0x...]"; some builds print
// "[ResultCode: ...]" instead.
var resultCodeRe = regexp.MustCompile(`\[(?:ErrorCode|ResultCode): (.+)\]`)

// On successful verification the signer identity is printed on its own
// "Signer: ..." line.
var signerRe = regexp.MustCompile(`Signer: (.*)`)

// extractResultCode returns the first result code in the output,
// lowercased for comparison against the csp code constants.
func extractResultCode(out string) (string, bool) {
	m := resultCodeRe.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// extractSigner returns the signer identity line, if present.
func extractSigner(out string) (string, bool) {
	m := signerRe.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
