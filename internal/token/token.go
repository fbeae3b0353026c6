package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long an issued credential stays valid. The session is meant to
// be short-lived; an expired token simply stops being accepted, there is no
// revocation path.
const TTL = time.Hour

var (
	ErrMalformedToken = errors.New("token is malformed")
	ErrBadSignature   = errors.New("token signature is invalid")
	ErrExpiredToken   = errors.New("token is expired")
)

// Claims is the signed payload of a session credential. Verify returns it
// exactly as it was issued, nothing is re-derived.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Codec mints and verifies session credentials with a single shared HS256
// secret. Both operations are pure functions of their inputs plus the secret
// and the clock, so a Codec is safe to share across requests.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// WithClock overrides the codec clock, used by tests to move time forward.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) Issue(subjectID, username, email string) (string, error) {
	issued := c.now()
	claims := Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformedToken
		}
	}

	if !t.Valid {
		return nil, ErrMalformedToken
	}

	return claims, nil
}
