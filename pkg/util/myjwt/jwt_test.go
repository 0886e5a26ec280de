package myjwt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NotifyLink/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRevocations struct {
	mu   sync.Mutex
	ids  map[string]time.Duration
	fail error
}

func newMemRevocations() *memRevocations {
	return &memRevocations{ids: map[string]time.Duration{}}
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	_, ok := m.ids[id]
	return ok, nil
}

func (m *memRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = ttl
	return nil
}

func newTestManager(store RevocationStore) *Manager {
	return NewManager(config.JwtConfig{Key: "secret", ExpireHours: 2, Issuer: "notifylink"}, store)
}

func TestGenerateAndVerify(t *testing.T) {
	m := newTestManager(nil)
	tok, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)

	claims, err := m.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.SubjectID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "notifylink", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_Rejects(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	_, err := m.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = m.Verify(ctx, "a.b.c")
	assert.Error(t, err)

	other := NewManager(config.JwtConfig{Key: "other", Issuer: "notifylink"}, nil)
	tok, err := other.GenerateToken("u1", "alice")
	require.NoError(t, err)
	_, err = m.Verify(ctx, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	foreign := NewManager(config.JwtConfig{Key: "secret", Issuer: "someone-else"}, nil)
	tok, err = foreign.GenerateToken("u1", "alice")
	require.NoError(t, err)
	_, err = m.Verify(ctx, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(nil)
	tok, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_MissingSubject(t *testing.T) {
	m := newTestManager(nil)
	tok, err := m.GenerateToken("", "ghost")
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestSubjectIDFallsBackToSub(t *testing.T) {
	c := &CustomClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: " u9 "}}
	assert.Equal(t, "u9", c.SubjectID())

	var nilClaims *CustomClaims
	assert.Equal(t, "", nilClaims.SubjectID())
}

func TestEmptyKey(t *testing.T) {
	m := NewManager(config.JwtConfig{}, nil)
	_, err := m.GenerateToken("u1", "alice")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = m.Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestRevoke(t *testing.T) {
	store := newMemRevocations()
	m := newTestManager(store)
	ctx := context.Background()

	tok, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)
	claims, err := m.Verify(ctx, tok)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, claims))
	ttl := store.ids[claims.ID]
	assert.True(t, ttl > time.Hour && ttl <= 2*time.Hour, "ttl %s", ttl)

	_, err = m.Verify(ctx, tok)
	assert.ErrorIs(t, err, ErrRevokedToken)

	store.fail = errors.New("redis down")
	fresh, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)
	_, err = m.Verify(ctx, fresh)
	assert.EqualError(t, err, "redis down")
}

func TestRevoke_WithoutStore(t *testing.T) {
	m := newTestManager(nil)
	assert.NoError(t, m.Revoke(context.Background(), &CustomClaims{}))
}
