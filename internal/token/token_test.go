package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewCodec([]byte("test_secret"))

	raw, err := codec.Issue("u1", "alice", "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "alice@x.com", claims.Email)
	require.Equal(t, TTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	codec := NewCodec([]byte("test_secret")).WithClock(func() time.Time { return now })

	raw, err := codec.Issue("u1", "alice", "alice@x.com")
	require.NoError(t, err)

	// still fine just before the TTL elapses
	now = now.Add(59 * time.Minute)
	_, err = codec.Verify(raw)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := NewCodec([]byte("right_secret")).Issue("u1", "alice", "alice@x.com")
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong_secret")).Verify(raw)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewCodec([]byte("test_secret"))

	for _, raw := range []string{"", "garbage", "not.a.jwt"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, ErrMalformedToken, "input %q", raw)
	}
}
