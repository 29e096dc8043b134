package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-agenda/internal/testutil"
	"contact-agenda/pkg/jwt"
	"contact-agenda/pkg/session"
)

func newManager() (*session.Manager, *testutil.MemoryCache) {
	store := testutil.NewMemoryCache()
	return session.NewManager(jwt.NewManager("secret"), store, time.Hour, "secret"), store
}

func TestManager_CreateResolve(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()
	userID := uuid.New()

	token, err := m.Create(ctx, userID, "pbkdf2$old")
	require.NoError(t, err)

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.NotEqual(t, "pbkdf2$old", got.AuthHash)
	assert.True(t, m.Verify(got, "pbkdf2$old"))
}

func TestManager_VerifyRejectsChangedPassword(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	token, err := m.Create(ctx, uuid.New(), "hash-before")
	require.NoError(t, err)

	rec, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, m.Verify(rec, "hash-after"))
	assert.False(t, m.Verify(rec, ""))
}

func TestManager_AuthHashDependsOnSecret(t *testing.T) {
	ctx := context.Background()
	a := session.NewManager(jwt.NewManager("secret"), testutil.NewMemoryCache(), time.Hour, "one")
	b := session.NewManager(jwt.NewManager("secret"), testutil.NewMemoryCache(), time.Hour, "two")

	token, err := a.Create(ctx, uuid.New(), "same-hash")
	require.NoError(t, err)
	rec, err := a.Resolve(ctx, token)
	require.NoError(t, err)

	assert.True(t, a.Verify(rec, "same-hash"))
	assert.False(t, b.Verify(rec, "same-hash"))
}

func TestManager_DestroyEndsSession(t *testing.T) {
	m, store := newManager()
	ctx := context.Background()

	token, err := m.Create(ctx, uuid.New(), "")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, m.Destroy(ctx, token))
	assert.Equal(t, 0, store.Len())

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_ResolveRejectsForeignToken(t *testing.T) {
	m, _ := newManager()
	other := session.NewManager(jwt.NewManager("other"), testutil.NewMemoryCache(), time.Hour, "other")

	token, err := other.Create(context.Background(), uuid.New(), "")
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestManager_DestroyIgnoresGarbage(t *testing.T) {
	m, _ := newManager()
	assert.NoError(t, m.Destroy(context.Background(), "garbage"))
}
