package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/furniture-catalog/internal/handler"
)

// RegisterPrincipals registers the user and admin management endpoints.
// Every route requires a valid access token and the admin role.
func RegisterPrincipals(api *echo.Group, users, admins *handler.PrincipalHandler, g Guards) {
	for prefix, h := range map[string]*handler.PrincipalHandler{"users": users, "admins": admins} {
		grp := api.Group(prefix, g.admin()...)
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.DELETE("/:id", h.Delete)
	}
}
