package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// RequireRole returns a middleware that lets the request through only when
// the principal attached by a guard has one of roles.  It must be mounted
// after AccessGuard; a request without a principal is a 401, a principal
// with another role is a 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := CurrentPrincipal(c)
			if p == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgMissing})
			}
			if !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
