package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	assert.Error(t, err)

	_, err = NewCodec([]byte{})
	assert.Error(t, err)
}

func TestCodec_IssueVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	token, err := codec.Issue(42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
}

func TestCodec_VerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewCodec([]byte("secret-a"))
	require.NoError(t, err)
	verifier, err := NewCodec([]byte("secret-b"))
	require.NoError(t, err)

	token, err := issuer.Issue(42, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_VerifyRejectsTampering(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	token, err := codec.Issue(42, time.Hour)
	require.NoError(t, err)

	// Flip one character of the payload.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = codec.Verify(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_VerifyRejectsExpired(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	token, err := codec.Issue(42, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_VerifyRejectsGarbage(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}
