package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// CategoryHandler serves /category.  Reads are public, writes admin only.
type CategoryHandler struct {
	Categories repository.CategoryStore
	Files      ImageStore
	Images     ImageReleaser
	Log        logrus.FieldLogger
}

func NewCategoryHandler(stores *repository.Stores, files ImageStore, images ImageReleaser, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{Categories: stores.Categories, Files: files, Images: images, Log: log}
}

type categoryReq struct {
	Name string `json:"name" form:"name" validate:"required,min=2,max=100"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	items, err := h.Categories.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list categories")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "category")
	}
	return c.JSON(http.StatusOK, cat)
}

// nameTaken reports whether another category already uses name.
func (h *CategoryHandler) nameTaken(ctx context.Context, name, selfID string) (bool, error) {
	other, err := h.Categories.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return other.ID != selfID, nil
}

// Create: POST /category, multipart with "name" and an optional "image".
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	name := strings.TrimSpace(req.Name)
	ctx, cancel := requestCtx(c)
	defer cancel()

	taken, err := h.nameTaken(ctx, name, "")
	if err != nil {
		return serverError(c, h.Log, err, "category name lookup")
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "this category name already exists"})
	}

	img, err := upload(c, h.Files)
	if err != nil {
		return serverError(c, h.Log, err, "store category image")
	}
	cat := &model.Category{Name: name, Image: img}
	if err := h.Categories.Create(ctx, cat); err != nil {
		h.Images.ReleaseAsync(img, "")
		return storeFailure(c, h.Log, err, "category")
	}
	return c.JSON(http.StatusCreated, cat)
}

// Update: PUT /category/:id.  A new image replaces the old one, which is
// deleted after the update when nothing else uses it.
func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	name := strings.TrimSpace(req.Name)
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "category")
	}
	taken, err := h.nameTaken(ctx, name, cat.ID)
	if err != nil {
		return serverError(c, h.Log, err, "category name lookup")
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "this category name already exists"})
	}

	img, err := upload(c, h.Files)
	if err != nil {
		return serverError(c, h.Log, err, "store category image")
	}
	old := cat.Image
	cat.Name = name
	if img != "" {
		cat.Image = img
	}
	if err := h.Categories.Update(ctx, cat); err != nil {
		if img != old {
			h.Images.ReleaseAsync(img, "")
		}
		return storeFailure(c, h.Log, err, "category")
	}
	if old != cat.Image {
		h.Images.ReleaseAsync(old, cat.ID)
	}
	return c.JSON(http.StatusOK, cat)
}

// Delete: DELETE /category/:id, then release its image.
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "category")
	}
	if err := h.Categories.Delete(ctx, cat.ID); err != nil {
		return storeFailure(c, h.Log, err, "category")
	}
	h.Images.ReleaseAsync(cat.Image, cat.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
