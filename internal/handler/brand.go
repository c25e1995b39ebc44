package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// BrandHandler serves /brands.
type BrandHandler struct {
	Brands repository.BrandStore
	Log    logrus.FieldLogger
}

func NewBrandHandler(stores *repository.Stores, log logrus.FieldLogger) *BrandHandler {
	return &BrandHandler{Brands: stores.Brands, Log: log}
}

type brandReq struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

func (h *BrandHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, err := h.Brands.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list brands")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BrandHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	b, err := h.Brands.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "brand")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BrandHandler) Create(c echo.Context) error {
	var req brandReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	b := &model.Brand{Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description)}
	if err := h.Brands.Create(ctx, b); err != nil {
		return storeFailure(c, h.Log, err, "brand")
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BrandHandler) Update(c echo.Context) error {
	var req brandReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	b, err := h.Brands.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "brand")
	}
	b.Name = strings.TrimSpace(req.Name)
	b.Description = strings.TrimSpace(req.Description)
	if err := h.Brands.Update(ctx, b); err != nil {
		return storeFailure(c, h.Log, err, "brand")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BrandHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Brands.Delete(ctx, c.Param("id")); err != nil {
		return storeFailure(c, h.Log, err, "brand")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "brand deleted"})
}
