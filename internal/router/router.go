package router // package router defines how HTTP routes are registered for the API

import (
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/furniture-catalog/internal/handler"
	"github.com/iliyamo/furniture-catalog/internal/middleware"
	"github.com/iliyamo/furniture-catalog/internal/model"
)

// Guards holds the auth middleware shared by the route groups.
type Guards struct {
	Access  echo.MiddlewareFunc // valid access token
	Refresh echo.MiddlewareFunc // valid refresh token, role unchanged
	Limit   echo.MiddlewareFunc // rate limit for the credential endpoints
}

// admin is the middleware chain for admin-only routes.
func (g Guards) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Access, middleware.RequireRole(model.RoleAdmin)}
}

// RegisterRoutes registers the unauthenticated infrastructure routes:
// health, Prometheus metrics and the uploaded images.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, uploadDir string) {
	e.GET("/healthz", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static("/"+filepath.Base(uploadDir), uploadDir)
}

// RegisterAuth registers the auth routes on api.  register, login and
// refresh are rate limited; refresh is the only route behind the refresh
// guard.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, g Guards) {
	auth := api.Group("auth")
	auth.POST("/register", a.Register, g.Limit)
	auth.POST("/login", a.Login, g.Limit)
	auth.POST("/refresh", a.Refresh, g.Limit, g.Refresh)

	auth.GET("/me", a.Me, g.Access)

	admin := auth.Group("", g.admin()...)
	admin.POST("/register-admin", a.RegisterAdmin)
	admin.PATCH("/users/:id", a.ChangeRole)
	admin.GET("/admin/users", a.ListUsers)
}
