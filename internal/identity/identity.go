// Package identity resolves who performed a request: a registered user from
// the authenticated session, or an anonymous guest tracked by a browser cookie.
package identity

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
)

// SessionCookieName is the cookie carrying a guest's tracking id.
const SessionCookieName = "_lpsid"

// guestCookieTTL bounds how long a guest id persists. Long enough to correlate
// repeat visits, short enough that stale ids age out.
const guestCookieTTL = 365 * 24 * time.Hour

// Identity is the actor behind a request, exactly one variant populated:
// a registered user id, or a guest session id.
type Identity struct {
	UserID    *uint
	SessionID string
}

// IsRegistered reports whether the identity belongs to a registered user.
func (i Identity) IsRegistered() bool {
	return i.UserID != nil
}

// Label renders the identity for admin display without exposing raw ids.
func (i Identity) Label() string {
	if i.IsRegistered() {
		return "Registered User"
	}
	return "Guest User"
}

// NewSessionID mints a fresh guest tracking id.
func NewSessionID() string {
	return uuid.NewString()
}

// Resolve determines the acting identity for a request. An authenticated user
// always wins over a guest cookie; otherwise the existing guest cookie is
// reused, and a new one is minted and set on the response when absent.
func Resolve(ctx *cartridge.Context) Identity {
	if ctx.Session != nil {
		if userID, ok := ctx.Session.GetUserID(ctx.Ctx); ok {
			return Identity{UserID: &userID}
		}
	}

	if sid := ctx.Ctx.Cookies(SessionCookieName); sid != "" {
		return Identity{SessionID: sid}
	}

	sid := NewSessionID()
	ctx.Ctx.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(guestCookieTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return Identity{SessionID: sid}
}
