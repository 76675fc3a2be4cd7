package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadpulse/internal/identity"
)

func TestNewSessionID(t *testing.T) {
	first := identity.NewSessionID()
	second := identity.NewSessionID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestIsRegistered(t *testing.T) {
	userID := uint(5)

	assert.True(t, identity.Identity{UserID: &userID}.IsRegistered())
	assert.False(t, identity.Identity{SessionID: "guest-abc"}.IsRegistered())
}

func TestLabel(t *testing.T) {
	userID := uint(5)

	assert.Equal(t, "Registered User", identity.Identity{UserID: &userID}.Label())
	assert.Equal(t, "Guest User", identity.Identity{SessionID: "guest-abc"}.Label())
}
