package session

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"contact-agenda/pkg/cache"
	"contact-agenda/pkg/jwt"
)

// ErrSessionNotFound means the token is valid but its server side record is gone
// (logged out, expired or evicted).
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Record is what the cache holds per session.
// AuthHash binds the session to the password it was opened with.
type Record struct {
	UserID    uuid.UUID `json:"user_id"`
	AuthHash  string    `json:"auth_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager establishes, resolves and terminates login sessions.
// The cookie carries a signed token; the session itself lives in the cache so
// that logout is effective immediately.
type Manager struct {
	tokens *jwt.Manager
	store  cache.Cache
	ttl    time.Duration
	key    [32]byte
}

// NewManager derives the auth hash key from secret.
func NewManager(tokens *jwt.Manager, store cache.Cache, ttl time.Duration, secret string) *Manager {
	return &Manager{tokens: tokens, store: store, ttl: ttl, key: blake3.Sum256([]byte("session-auth:" + secret))}
}

// TTL is the lifetime of a new session and of its cookie.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for userID and returns the signed cookie value.
// passwordHash is the user's current stored hash; see Verify.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, passwordHash string) (string, error) {
	sessionID := uuid.NewString()

	rec := Record{UserID: userID, AuthHash: m.authHash(passwordHash), CreatedAt: time.Now().UTC()}
	if err := m.store.Set(ctx, keyPrefix+sessionID, rec, m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	token, err := m.tokens.GenerateSessionToken(sessionID, userID, m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, keyPrefix+sessionID)
		return "", err
	}
	return token, nil
}

// Resolve returns the session record bound to token.
func (m *Manager) Resolve(ctx context.Context, token string) (*Record, error) {
	claims, err := m.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil, err
	}

	var rec Record
	found, err := m.store.Get(ctx, keyPrefix+claims.SessionID, &rec)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found || rec.UserID.String() != claims.UserID {
		return nil, ErrSessionNotFound
	}

	return &rec, nil
}

// Verify reports whether rec was opened with passwordHash. A password
// change makes every older session of the user fail this check.
func (m *Manager) Verify(rec *Record, passwordHash string) bool {
	return subtle.ConstantTimeCompare([]byte(rec.AuthHash), []byte(m.authHash(passwordHash))) == 1
}

// Destroy removes the session referenced by token. Invalid tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	claims, err := m.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, keyPrefix+claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) authHash(passwordHash string) string {
	h, err := blake3.NewKeyed(m.key[:])
	if err != nil {
		panic("session: blake3 keyed hash: " + err.Error())
	}
	_, _ = h.Write([]byte(passwordHash))
	return hex.EncodeToString(h.Sum(nil))
}
