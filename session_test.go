package notes_test

import (
	"testing"
	"time"

	notes "github.com/goliatone/go-notes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionObjectGetters(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	expires := now.Add(time.Hour)

	session := &notes.SessionObject{
		UserID:         userID.String(),
		Email:          "test@example.com",
		Issuer:         "test-issuer",
		IssuedAt:       &now,
		ExpirationDate: &expires,
	}

	assert.Equal(t, userID.String(), session.GetUserID())
	assert.Equal(t, "test@example.com", session.GetEmail())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, &now, session.GetIssuedAt())
	assert.Equal(t, &expires, session.GetExpiration())

	parsed, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestSessionObjectGetUserUUIDInvalid(t *testing.T) {
	session := &notes.SessionObject{UserID: "not-a-uuid"}

	_, err := session.GetUserUUID()
	assert.Error(t, err)
}

func TestHasUserUUID(t *testing.T) {
	assert.True(t, notes.HasUserUUID(&notes.SessionObject{UserID: uuid.New().String()}))
	assert.False(t, notes.HasUserUUID(&notes.SessionObject{UserID: "not-a-uuid"}))
	assert.False(t, notes.HasUserUUID(nil))
}

func TestSessionObjectString(t *testing.T) {
	session := notes.SessionObject{
		UserID: "user-1",
		Email:  "test@example.com",
		Issuer: "test-issuer",
	}

	out := session.String()
	assert.Contains(t, out, "user=user-1")
	assert.Contains(t, out, "email=test@example.com")
	assert.Contains(t, out, "iss=test-issuer")
}
