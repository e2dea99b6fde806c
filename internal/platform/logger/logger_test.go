package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"refresh_token", "abc",
		"email", "cook@example.com",
		"title", "Tarte Tatin",
	})

	assert.Equal(t, []interface{}{
		"password", "[REDACTED]",
		"refresh_token", "[REDACTED]",
		"email", "[REDACTED]",
		"title", "Tarte Tatin",
	}, out)
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "6f1c2a9e-0000-4000-8000-000000000001"})

	hashed, ok := out[1].(string)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"), hashed)
	assert.Len(t, hashed, len("hash:")+12)
}

func TestSanitizeKVsRedactsJWTLookingValues(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	out := sanitizeKVs([]interface{}{"header", jwt})
	assert.Equal(t, "[REDACTED]", out[1])
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"title", "Soup", "orphan"})
	assert.Equal(t, []interface{}{"title", "Soup", "orphan"}, out)
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	assert.NoError(t, err)
	log.Info("discarded", "k", "v")
	log.With("service", "X").Warn("still discarded")
}
