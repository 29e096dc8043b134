package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret")
	userID := uuid.New()

	token, err := m.GenerateSessionToken("sid-1", userID, time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, err := NewManager("one").GenerateSessionToken("sid", uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewManager("two").ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionToken_Expired(t *testing.T) {
	m := NewManager("secret")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateSessionToken("sid", uuid.New(), time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	_, err := NewManager("secret").ValidateSessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
