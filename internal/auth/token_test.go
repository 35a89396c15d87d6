package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixed(at time.Time) func() time.Time { return func() time.Time { return at } }

func TestToken_RoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", 30*time.Minute, WithClock(fixed(t0)))
	ver := NewTokenVerifier("secret", nil, WithClock(fixed(t0.Add(time.Minute))))

	tok, err := iss.Issue("alice")
	require.NoError(t, err)

	sub, err := ver.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestToken_ExpiryBoundary(t *testing.T) {
	iss := NewTokenIssuer("secret", 30*time.Minute, WithClock(fixed(t0)))
	tok, err := iss.Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenVerifier("secret", nil, WithClock(fixed(t0.Add(30*time.Minute-time.Second)))).Verify(tok)
	assert.NoError(t, err, "token must be valid just before exp")

	_, err = NewTokenVerifier("secret", nil, WithClock(fixed(t0.Add(30*time.Minute)))).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated, "token must be rejected at exp")

	_, err = NewTokenVerifier("secret", nil, WithClock(fixed(t0.Add(31*time.Minute)))).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestToken_WrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("secret", time.Hour, WithClock(fixed(t0))).Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenVerifier("other", nil, WithClock(fixed(t0))).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

const b64url = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// replaceAt swaps the character at i for its neighbour in the base64url alphabet.
func replaceAt(tok string, i int) string {
	c := b64url[strings.IndexByte(b64url, tok[i])^1]
	return tok[:i] + string(c) + tok[i+1:]
}

func TestToken_Tampered(t *testing.T) {
	tok, err := NewTokenIssuer("secret", time.Hour, WithClock(fixed(t0))).Issue("alice")
	require.NoError(t, err)
	ver := NewTokenVerifier("secret", nil, WithClock(fixed(t0)))

	// includes the last character, whose low bits are padding
	sig := strings.LastIndex(tok, ".") + 1
	for i := sig; i < len(tok); i++ {
		_, err := ver.Verify(replaceAt(tok, i))
		assert.ErrorIs(t, err, ErrUnauthenticated, "signature char %d altered", i-sig)
	}

	_, err = ver.Verify(replaceAt(tok, 0))
	assert.ErrorIs(t, err, ErrUnauthenticated, "header altered")
}

func TestToken_PreviousSecretAccepted(t *testing.T) {
	tok, err := NewTokenIssuer("old", time.Hour, WithClock(fixed(t0))).Issue("alice")
	require.NoError(t, err)

	sub, err := NewTokenVerifier("new", []string{"old"}, WithClock(fixed(t0))).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	_, err = NewTokenVerifier("new", nil, WithClock(fixed(t0))).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestToken_RejectsBadClaims(t *testing.T) {
	ver := NewTokenVerifier("secret", nil, WithClock(fixed(t0)))
	sign := func(m jwt.SigningMethod, claims jwt.Claims, key any) string {
		s, err := jwt.NewWithClaims(m, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(t0.Add(time.Hour))

	cases := map[string]string{
		"missing sub": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: exp}, []byte("secret")),
		"missing exp": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}, []byte("secret")),
		"HS512":       sign(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}, []byte("secret")),
		"alg none":    sign(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}, jwt.UnsafeAllowNoneSignatureType),
		"garbage":     "not.a.token",
		"empty":       "",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ver.Verify(tok)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestTokenIssuer_EmptySubject(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Issue("")
	assert.Error(t, err)
}
