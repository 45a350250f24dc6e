package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	tok, err := NewSessionToken(30)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), tok.Raw)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), tok.Exp, time.Minute)

	other, err := NewSessionToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)
}

func TestNewOTPCodeIsSixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), code)
	}
}

func TestOTPCodeHashRoundTrip(t *testing.T) {
	hash, err := HashOTPCode("123456", 4) // low cost keeps the test fast
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.True(t, VerifyOTPCode(hash, "123456"))
	assert.False(t, VerifyOTPCode(hash, "654321"))
}
