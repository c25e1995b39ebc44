package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/middleware"
	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/service"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

// Response headers duplicating the issued tokens.
const (
	HeaderAccessToken  = "x-auth-token"
	HeaderRefreshToken = "x-refresh-token"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts *service.Accounts
	Roles    *service.RoleService
	Tokens   *utils.TokenCodec
	Users    repository.PrincipalStore
	Log      logrus.FieldLogger
}

func NewAuthHandler(accounts *service.Accounts, roles *service.RoleService, tokens *utils.TokenCodec, users repository.PrincipalStore, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Roles: roles, Tokens: tokens, Users: users, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" form:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" form:"password" validate:"required,min=5,max=255"`
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" form:"password" validate:"required,min=5,max=255"`
}

type changeRoleReq struct {
	Role string `json:"role" form:"role" validate:"required"`
}

type tokenResp struct {
	model.Summary
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// issue signs a fresh pair for p and writes the token response.
func (h *AuthHandler) issue(c echo.Context, status int, p *model.Principal) error {
	access, refresh, err := h.Tokens.IssuePair(p)
	if err != nil {
		return serverError(c, h.Log, err, "issue tokens")
	}
	c.Response().Header().Set(HeaderAccessToken, access.Token)
	c.Response().Header().Set(HeaderRefreshToken, refresh.Token)
	return c.JSON(status, tokenResp{
		Summary:      p.Summary(),
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	})
}

// Register: create a user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, model.KindUser)
}

// RegisterAdmin: create an admin.  Mounted behind the admin role guard.
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	return h.register(c, model.KindAdmin)
}

func (h *AuthHandler) register(c echo.Context, kind model.Kind) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Accounts.Register(ctx, kind, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": kind.String() + " already registered"})
		}
		return serverError(c, h.Log, err, "register "+kind.String())
	}
	h.Log.WithFields(logrus.Fields{"principal_id": p.ID, "kind": kind.String()}).Info("principal registered")
	return h.issue(c, http.StatusCreated, p)
}

// Login: verify credentials against admins, then users, and return a pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Accounts.Authenticate(ctx, utils.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return serverError(c, h.Log, err, "login")
	}
	return h.issue(c, http.StatusOK, p)
}

// Refresh: the refresh guard already resolved the principal; issue a new
// pair for it.
func (h *AuthHandler) Refresh(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
	}
	return h.issue(c, http.StatusOK, p)
}

// ChangeRole: PATCH /auth/users/:id, admin only.  Promoting to admin moves
// the user record into the admins collection.
func (h *AuthHandler) ChangeRole(c echo.Context) error {
	var req changeRoleReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	sum, err := h.Roles.ChangeRole(ctx, c.Param("id"), model.Role(req.Role))
	switch {
	case err == nil:
		h.Log.WithFields(logrus.Fields{
			"principal_id": sum.ID,
			"role":         sum.Role,
			"by":           middleware.CurrentPrincipal(c).ID,
		}).Info("role changed")
		return c.JSON(http.StatusOK, sum)
	case errors.Is(err, service.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "an admin with this email already exists"})
	}
	return serverError(c, h.Log, err, "change role")
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credential"})
	}
	return c.JSON(http.StatusOK, p.Summary())
}

// ListUsers: GET /auth/admin/users, every user without password hashes.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list users")
	}
	return c.JSON(http.StatusOK, users)
}
