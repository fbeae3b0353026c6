// Package session owns the client's one stored credential. Nothing else is
// supposed to touch the storage slot directly; the Store is the narrow
// interface over it.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenKey is the fixed storage slot, same name the web client used.
const tokenKey = "id_token"

// Claims is the client-side view of the credential payload, decoded without
// signature verification. The local expiry check is advisory only; the
// server remains the authority.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type Store struct {
	storage Storage
	// onChange runs after Login and Logout, the stand-in for the web
	// client's hard redirect to the root view: the host drops any state
	// tied to the previous session.
	onChange func()
	now      func() time.Time
}

type Option func(*Store)

// WithOnChange registers the hook invoked after a session change.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithClock overrides the store clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the stored credential, or "" when logged out.
func (s *Store) Token() string {
	tok, err := s.storage.Get(tokenKey)
	if err != nil {
		return ""
	}
	return tok
}

// LoggedIn reports whether a credential is stored and not locally expired.
// A malformed stored token counts as logged out; a corrupted session must
// never take the client down, it only forces re-authentication.
func (s *Store) LoggedIn() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}

	claims, err := decodeUnverified(tok)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}

	return claims.ExpiresAt.After(s.now())
}

// Profile returns the decoded payload of the stored credential.
func (s *Store) Profile() (*Claims, error) {
	return decodeUnverified(s.Token())
}

// Login stores the credential and triggers the session-change hook.
func (s *Store) Login(token string) error {
	if err := s.storage.Set(tokenKey, token); err != nil {
		return err
	}
	s.fireChange()
	return nil
}

// Logout clears the slot and triggers the session-change hook.
func (s *Store) Logout() error {
	if err := s.storage.Delete(tokenKey); err != nil {
		return err
	}
	s.fireChange()
	return nil
}

func (s *Store) fireChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

func decodeUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
