package middleware

// identity.go holds helpers for reading what the guards stored in the echo
// context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// CurrentPrincipal returns the principal attached by AccessGuard or
// RefreshGuard, or nil on unguarded routes.
func CurrentPrincipal(c echo.Context) *model.Principal {
	p, _ := c.Get(CtxPrincipal).(*model.Principal)
	return p
}

// userID returns the authenticated principal id, or "anon" when the request
// is not authenticated.  Used for rate limit keys.
func userID(c echo.Context) string {
	if p := CurrentPrincipal(c); p != nil && p.ID != "" {
		return p.ID
	}
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
