package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/service"
)

// PrincipalHandler serves the admin-only CRUD endpoints of one principal
// collection: /users or /admins.
type PrincipalHandler struct {
	Kind     model.Kind
	Store    repository.PrincipalStore
	Accounts *service.Accounts
	Log      logrus.FieldLogger
}

func NewPrincipalHandler(kind model.Kind, stores *repository.Stores, accounts *service.Accounts, log logrus.FieldLogger) *PrincipalHandler {
	return &PrincipalHandler{Kind: kind, Store: stores.For(kind), Accounts: accounts, Log: log}
}

type updatePrincipalReq struct {
	Name     string `json:"name" form:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" form:"password" validate:"omitempty,min=5,max=255"`
}

func (h *PrincipalHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list "+h.Kind.Collection())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PrincipalHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Store.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, h.Kind.String())
	}
	return c.JSON(http.StatusOK, p)
}

// Update replaces name and email; the password changes only when given.
func (h *PrincipalHandler) Update(c echo.Context) error {
	var req updatePrincipalReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Accounts.UpdateProfile(ctx, h.Kind, c.Param("id"), service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return storeFailure(c, h.Log, err, h.Kind.String())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PrincipalHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	id := c.Param("id")
	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return storeFailure(c, h.Log, err, h.Kind.String())
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		return storeFailure(c, h.Log, err, h.Kind.String())
	}
	return c.JSON(http.StatusOK, p)
}
