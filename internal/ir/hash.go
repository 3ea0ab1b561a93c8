package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainState   = "vibe/state/v1"
	DomainRuleSet = "vibe/ruleset/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateDigest returns the digest of an encoded state snapshot.
func StateDigest(encoded []byte) string {
	return hashWithDomain(DomainState, encoded)
}

// RuleSetDigest returns the digest of an encoded rule set.
func RuleSetDigest(encoded []byte) string {
	return hashWithDomain(DomainRuleSet, encoded)
}

// NormalizeID canonicalises an identifier (account, act, rule id) typed by
// a human: NFC normalisation and surrounding whitespace removed.
func NormalizeID(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
