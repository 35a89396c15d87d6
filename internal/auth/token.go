package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is the single failure value for any token or session problem.
var ErrUnauthenticated = errors.New("could not validate credentials")

type TokenOption func(*tokenClock)

type tokenClock struct {
	now func() time.Time
}

// WithClock replaces time.Now when stamping or checking expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(c *tokenClock) { c.now = now }
}

func newClock(opts []TokenOption) tokenClock {
	c := tokenClock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// TokenIssuer signs HS256 access tokens carrying sub and exp.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  tokenClock
}

func NewTokenIssuer(secret string, ttl time.Duration, opts ...TokenOption) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: newClock(opts)}
}

// TTL is the validity window of issued tokens.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

func (i *TokenIssuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	now := i.clock.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// TokenVerifier checks signature and expiry and returns the token subject.
// Tokens signed with any of the previous secrets are still accepted.
type TokenVerifier struct {
	keys  jwt.VerificationKeySet
	clock tokenClock
}

func NewTokenVerifier(secret string, previous []string, opts ...TokenOption) *TokenVerifier {
	keys := jwt.VerificationKeySet{Keys: []jwt.VerificationKey{[]byte(secret)}}
	for _, p := range previous {
		if p != "" {
			keys.Keys = append(keys.Keys, []byte(p))
		}
	}
	return &TokenVerifier{keys: keys, clock: newClock(opts)}
}

func (v *TokenVerifier) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return v.keys, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.clock.now),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}
