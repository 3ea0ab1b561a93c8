package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestsAreDomainSeparated(t *testing.T) {
	data := []byte(`{"a":1}`)

	assert.Len(t, StateDigest(data), 64)
	assert.Equal(t, StateDigest(data), StateDigest(data))
	assert.NotEqual(t, StateDigest(data), RuleSetDigest(data))
}

func TestNormalizeID(t *testing.T) {
	// "e" + combining acute accent composes to a single code point.
	assert.Equal(t, "caf\u00e9", NormalizeID("  cafe\u0301 "))
	assert.Equal(t, "USER_AUDIT_A", NormalizeID("USER_AUDIT_A"))
}
