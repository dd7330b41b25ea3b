package auth

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/auth-api/internal/users"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestIssuer(t *testing.T, secret string, ttl time.Duration, clock *fakeClock) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer([]byte(secret), ttl)
	require.NoError(t, err)
	if clock != nil {
		issuer.now = clock.Now
	}
	return issuer
}

func newTestService(t *testing.T, store users.Store, clock *fakeClock) *Service {
	t.Helper()
	svc, err := NewService(store, NewBcryptHasher(bcrypt.MinCost), newTestIssuer(t, "test-secret", DefaultTokenTTL, clock), ServiceOptions{})
	require.NoError(t, err)
	return svc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
