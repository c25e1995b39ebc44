package middleware // middleware provides the auth guards and shared request processing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/metrics"
	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/service"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

// Context keys set by the guards.
const (
	CtxPrincipal = "principal"
	CtxUserID    = "user_id"
	CtxRole      = "role"
)

// Rejection messages returned in the {"error": ...} body.
const (
	msgMissing = "missing credential"
	msgExpired = "credential expired"
	msgInvalid = "invalid credential"
)

// TokenVerifier checks a raw token of the given kind.
type TokenVerifier interface {
	Verify(raw string, kind utils.TokenKind) (*utils.Claims, error)
}

// PrincipalResolver loads the principal named by verified claims.
type PrincipalResolver interface {
	Resolve(ctx context.Context, c *utils.Claims) (*model.Principal, error)
	ResolveRefresh(ctx context.Context, c *utils.Claims) (*model.Principal, error)
}

// AccessGuard validates a Bearer access token, resolves the principal it
// names and stores it in the context under CtxPrincipal.  Handlers can also
// read c.Get("user_id") and c.Get("role").  Credential failures are a 401,
// a store failure while resolving is a 500; in both cases the wrapped
// handler is not called.
func AccessGuard(tokens TokenVerifier, resolver PrincipalResolver, log logrus.FieldLogger) echo.MiddlewareFunc {
	return guard("access", utils.AccessToken, tokens, resolver.Resolve, log)
}

// RefreshGuard is AccessGuard for refresh tokens: it verifies against the
// refresh secret and also requires the stored role to match the token's
// role.  It is only mounted on the refresh endpoint.
func RefreshGuard(tokens TokenVerifier, resolver PrincipalResolver, log logrus.FieldLogger) echo.MiddlewareFunc {
	return guard("refresh", utils.RefreshToken, tokens, resolver.ResolveRefresh, log)
}

type resolveFunc func(ctx context.Context, c *utils.Claims) (*model.Principal, error)

func guard(name string, kind utils.TokenKind, tokens TokenVerifier, resolve resolveFunc, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return reject(c, name, "missing", msgMissing)
			}

			claims, err := tokens.Verify(raw, kind)
			if errors.Is(err, utils.ErrTokenExpired) {
				return reject(c, name, "expired", msgExpired)
			}
			if err != nil {
				return reject(c, name, "invalid", msgInvalid)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			p, err := resolve(ctx, claims)
			switch {
			case errors.Is(err, service.ErrPrincipalNotFound), errors.Is(err, service.ErrRoleMismatch):
				return reject(c, name, "unresolved", msgInvalid)
			case err != nil:
				metrics.GuardRejections.WithLabelValues(name, "store").Inc()
				log.WithError(err).WithFields(logrus.Fields{"guard": name, "principal_id": claims.ID}).
					Error("resolve principal")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			c.Set(CtxPrincipal, p)
			c.Set(CtxUserID, p.ID)
			c.Set(CtxRole, p.Role)
			return next(c)
		}
	}
}

func bearer(h string) (string, bool) {
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(h[len(prefix):])
	return raw, raw != ""
}

func reject(c echo.Context, guard, reason, msg string) error {
	metrics.GuardRejections.WithLabelValues(guard, reason).Inc()
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}
