package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret", time.Hour, clock)

	token, expiresAt, err := issuer.Issue("u-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), expiresAt)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	const ttl = 2 * time.Hour
	cases := []struct {
		name    string
		elapsed time.Duration
		expired bool
	}{
		{name: "just issued", elapsed: 0},
		{name: "half way", elapsed: time.Hour},
		{name: "one second before expiry", elapsed: ttl - time.Second},
		{name: "exactly at expiry", elapsed: ttl, expired: true},
		{name: "after expiry", elapsed: ttl + time.Minute, expired: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := newFakeClock()
			issuer := newTestIssuer(t, "secret", ttl, clock)
			token, _, err := issuer.Issue("u-1", "alice")
			require.NoError(t, err)

			clock.Advance(tc.elapsed)
			_, err = issuer.Verify(token)
			if tc.expired {
				assert.ErrorIs(t, err, ErrTokenExpired)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTokenIssuer_FractionalIssueTime(t *testing.T) {
	const ttl = 2 * time.Hour
	issuedAt := time.Unix(1_700_000_000, 700_000_000)
	exp := time.Unix(1_700_000_000, 0).Add(ttl)

	cases := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{name: "at issue time", at: issuedAt},
		{name: "300ms before expiry", at: exp.Add(-300 * time.Millisecond)},
		{name: "1ns before expiry", at: exp.Add(-time.Nanosecond)},
		{name: "exactly at expiry", at: exp, expired: true},
		{name: "after expiry", at: exp.Add(400 * time.Millisecond), expired: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := newFakeClock()
			clock.Set(issuedAt)
			issuer := newTestIssuer(t, "secret", ttl, clock)

			token, expiresAt, err := issuer.Issue("u-1", "alice")
			require.NoError(t, err)
			assert.True(t, exp.Equal(expiresAt), "expiresAt %s", expiresAt)

			clock.Set(tc.at)
			claims, err := issuer.Verify(token)
			if tc.expired {
				assert.ErrorIs(t, err, ErrTokenExpired)
				return
			}
			require.NoError(t, err)
			assert.True(t, expiresAt.Equal(claims.ExpiresAt.Time))
			assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
		})
	}
}

func TestTokenIssuer_DifferentSecret(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret-a", time.Hour, clock)
	other := newTestIssuer(t, "secret-b", time.Hour, clock)

	for _, username := range []string{"alice", "bob", "x"} {
		token, _, err := other.Issue("u-"+username, username)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenBadSignature)
	}
}

func TestTokenIssuer_BadSignatureWinsOverExpiry(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret-a", time.Hour, clock)
	other := newTestIssuer(t, "secret-b", time.Hour, clock)

	token, _, err := other.Issue("u-1", "alice")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret", time.Hour, clock)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:   "u-1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret", time.Hour, clock)

	for _, raw := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", raw)
		assert.True(t, IsTokenInvalid(err))
	}
}

func TestTokenIssuer_MissingIdentityClaims(t *testing.T) {
	clock := newFakeClock()
	issuer := newTestIssuer(t, "secret", time.Hour, clock)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenIssuer_MissingExpiry(t *testing.T) {
	issuer := newTestIssuer(t, "secret", time.Hour, newFakeClock())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1", Username: "alice"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer(nil, time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer([]byte("secret"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.TTL())
}
