package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, username string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		Username: username,
		Email:    username + "@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return raw
}

func TestLoginThenLoggedIn(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	require.False(t, store.LoggedIn())

	tok := signTestToken(t, "alice", time.Hour)
	require.NoError(t, store.Login(tok))
	require.True(t, store.LoggedIn())
	require.Equal(t, tok, store.Token())

	profile, err := store.Profile()
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)
}

func TestLogoutClearsSession(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	require.NoError(t, store.Login(signTestToken(t, "alice", time.Hour)))
	require.True(t, store.LoggedIn())

	require.NoError(t, store.Logout())
	require.False(t, store.LoggedIn())
	require.Equal(t, "", store.Token())
}

func TestExpiredTokenIsLoggedOut(t *testing.T) {
	now := time.Now()
	store := NewStore(NewMemoryStorage(), WithClock(func() time.Time { return now }))

	require.NoError(t, store.Login(signTestToken(t, "alice", time.Hour)))
	require.True(t, store.LoggedIn())

	now = now.Add(61 * time.Minute)
	require.False(t, store.LoggedIn())
}

// A corrupted slot must degrade to logged-out, never panic.
func TestMalformedTokenFailsSafe(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(tokenKey, "not.a.jwt"))

	store := NewStore(storage)
	require.False(t, store.LoggedIn())
}

func TestOnChangeHookFires(t *testing.T) {
	var fired int
	store := NewStore(NewMemoryStorage(), WithOnChange(func() { fired++ }))

	require.NoError(t, store.Login(signTestToken(t, "alice", time.Hour)))
	require.Equal(t, 1, fired)

	require.NoError(t, store.Logout())
	require.Equal(t, 2, fired)
}

func TestFileStorageRoundTrip(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Get(tokenKey)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Set(tokenKey, "value"))
	got, err := storage.Get(tokenKey)
	require.NoError(t, err)
	require.Equal(t, "value", got)

	require.NoError(t, storage.Delete(tokenKey))
	_, err = storage.Get(tokenKey)
	require.ErrorIs(t, err, ErrNotFound)

	// deleting an empty slot is not an error
	require.NoError(t, storage.Delete(tokenKey))
}
