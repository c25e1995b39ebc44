package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// ProductHandler serves /products.  Create and update take multipart forms
// so an image can travel with the record.
type ProductHandler struct {
	Stores *repository.Stores
	Files  ImageStore
	Images ImageReleaser
	Log    logrus.FieldLogger
}

func NewProductHandler(stores *repository.Stores, files ImageStore, images ImageReleaser, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{Stores: stores, Files: files, Images: images, Log: log}
}

// productInput is the validated product state after a form is applied.
type productInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
	OldPrice    float64 `json:"oldprice" validate:"gte=0"`
	Count       int     `json:"count" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
	Material    string  `json:"material" validate:"max=255"`
	CategoryID  string  `json:"category" validate:"required"`
	BrandID     string  `json:"brand" validate:"required"`
}

func inputOf(p *model.Product) productInput {
	return productInput{
		Name:        p.Name,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Count:       p.Count,
		Description: p.Description,
		Material:    p.Material,
		CategoryID:  p.CategoryID,
		BrandID:     p.BrandID,
	}
}

func (in productInput) applyTo(p *model.Product) {
	p.Name = in.Name
	p.Price = in.Price
	p.OldPrice = in.OldPrice
	p.Count = in.Count
	p.Description = in.Description
	p.Material = in.Material
	p.CategoryID = in.CategoryID
	p.BrandID = in.BrandID
}

// readForm overlays the non-empty form values onto in.  Empty values keep
// what in already holds, which makes updates partial.
func readForm(c echo.Context, in *productInput) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(c.FormValue(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v := strings.TrimSpace(c.FormValue(key))
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%q must be a number", key)
		}
		*dst = f
		return nil
	}

	str("name", &in.Name)
	str("description", &in.Description)
	str("material", &in.Material)
	str("category", &in.CategoryID)
	str("brand", &in.BrandID)
	if err := num("price", &in.Price); err != nil {
		return err
	}
	if err := num("oldprice", &in.OldPrice); err != nil {
		return err
	}
	if v := strings.TrimSpace(c.FormValue("count")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q must be an integer", "count")
		}
		in.Count = n
	}
	return nil
}

// references loads the category and brand a product points at.  A missing
// one is reported as a 404-worthy error naming it.
func (h *ProductHandler) references(ctx context.Context, in productInput) (*model.Category, *model.Brand, string, error) {
	cat, err := h.Stores.Categories.GetByID(ctx, in.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, "category", err
	}
	if err != nil {
		return nil, nil, "", err
	}
	brand, err := h.Stores.Brands.GetByID(ctx, in.BrandID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, "brand", err
	}
	if err != nil {
		return nil, nil, "", err
	}
	return cat, brand, "", nil
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	products, err := h.Stores.Products.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list products")
	}
	cats, err := h.Stores.Categories.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list categories")
	}
	brands, err := h.Stores.Brands.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list brands")
	}
	catByID := make(map[string]*model.Category, len(cats))
	for _, cat := range cats {
		catByID[cat.ID] = cat
	}
	brandByID := make(map[string]*model.Brand, len(brands))
	for _, b := range brands {
		brandByID[b.ID] = b
	}

	out := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, p.View(catByID[p.CategoryID], brandByID[p.BrandID]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Stores.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusOK, h.view(ctx, p))
}

// view populates p's category and brand; a reference that no longer
// resolves is left nil.
func (h *ProductHandler) view(ctx context.Context, p *model.Product) model.ProductView {
	cat, err := h.Stores.Categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		cat = nil
	}
	brand, err := h.Stores.Brands.GetByID(ctx, p.BrandID)
	if err != nil {
		brand = nil
	}
	return p.View(cat, brand)
}

// Create: POST /products.  Category and brand must exist.
func (h *ProductHandler) Create(c echo.Context) error {
	var in productInput
	if err := readForm(c, &in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := c.Validate(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, brand, missing, err := h.references(ctx, in)
	if missing != "" {
		return storeFailure(c, h.Log, err, missing)
	}
	if err != nil {
		return serverError(c, h.Log, err, "load product references")
	}

	img, err := upload(c, h.Files)
	if err != nil {
		return serverError(c, h.Log, err, "store product image")
	}
	p := &model.Product{Image: img}
	in.applyTo(p)
	if err := h.Stores.Products.Create(ctx, p); err != nil {
		h.Images.ReleaseAsync(img, "")
		return storeFailure(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusCreated, p.View(cat, brand))
}

// Update: PUT /products/:id.  Fields left empty keep their value.  The image
// comes from an uploaded file or, without one, from an "image" form value
// naming an already stored file.  The replaced image is released after the
// update is saved.
func (h *ProductHandler) Update(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Stores.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "product")
	}
	in := inputOf(p)
	if err := readForm(c, &in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := c.Validate(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	cat, brand, missing, err := h.references(ctx, in)
	if missing != "" {
		return storeFailure(c, h.Log, err, missing)
	}
	if err != nil {
		return serverError(c, h.Log, err, "load product references")
	}

	img, err := upload(c, h.Files)
	if err != nil {
		return serverError(c, h.Log, err, "store product image")
	}
	if img == "" {
		if ref := strings.TrimSpace(c.FormValue("image")); ref != "" {
			if canon, err := h.Files.Canonical(ref); err == nil {
				img = canon
			}
		}
	}

	old := p.Image
	in.applyTo(p)
	if img != "" {
		p.Image = img
	}
	if err := h.Stores.Products.Update(ctx, p); err != nil {
		if img != "" && img != old {
			h.Images.ReleaseAsync(img, "")
		}
		return storeFailure(c, h.Log, err, "product")
	}
	if old != p.Image {
		h.Images.ReleaseAsync(old, p.ID)
	}
	return c.JSON(http.StatusOK, p.View(cat, brand))
}

// Delete: DELETE /products/:id, then release its image.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	p, err := h.Stores.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeFailure(c, h.Log, err, "product")
	}
	if err := h.Stores.Products.Delete(ctx, p.ID); err != nil {
		return storeFailure(c, h.Log, err, "product")
	}
	h.Images.ReleaseAsync(p.Image, p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
