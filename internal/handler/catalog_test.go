package handler_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

func (a *testApp) fileExists(name string) bool {
	_, err := os.Stat(filepath.Join(a.uploads, name))
	return err == nil
}

func (a *testApp) createCategory(t *testing.T, token, name, image string) model.Category {
	t.Helper()
	rec := a.multipart(t, http.MethodPost, "category", token, map[string]string{"name": name}, image)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c model.Category
	decode(t, rec, &c)
	return c
}

func (a *testApp) createBrand(t *testing.T, token, name string) model.Brand {
	t.Helper()
	rec := a.json(http.MethodPost, "brands", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b model.Brand
	decode(t, rec, &b)
	return b
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "Alice Smith", "a@x.com", "secret1")

	rec := app.multipart(t, http.MethodPost, "category", "", map[string]string{"name": "Sofas"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = app.multipart(t, http.MethodPost, "category", alice.AccessToken, map[string]string{"name": "Sofas"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.json(http.MethodDelete, "brands/any", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// reads are public
	assert.Equal(t, http.StatusOK, app.json(http.MethodGet, "category", "", nil).Code)
	assert.Equal(t, http.StatusOK, app.json(http.MethodGet, "products", "", nil).Code)
}

func TestCategoryLifecycle(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)

	cat := app.createCategory(t, admin, "Sofas", "sofa.png")
	assert.Equal(t, "uploads/sofa.png", cat.Image)
	assert.True(t, app.fileExists("sofa.png"))

	rec := app.multipart(t, http.MethodPost, "category", admin, map[string]string{"name": "sofas"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code, "names are unique ignoring case")

	rec = app.json(http.MethodGet, "category/"+cat.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sofas")

	// replacing the image removes the old file
	rec = app.multipart(t, http.MethodPut, "category/"+cat.ID, admin, map[string]string{"name": "Big Sofas"}, "sofa2.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app.images.Wait()
	assert.False(t, app.fileExists("sofa.png"))
	assert.True(t, app.fileExists("sofa2.png"))

	rec = app.json(http.MethodDelete, "category/"+cat.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "category deleted")
	app.images.Wait()
	assert.False(t, app.fileExists("sofa2.png"))

	assert.Equal(t, http.StatusNotFound, app.json(http.MethodGet, "category/"+cat.ID, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.json(http.MethodDelete, "category/"+cat.ID, admin, nil).Code)
}

func TestSharedImageSurvivesUntilLastReference(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)

	first := app.createCategory(t, admin, "Sofas", "shared.png")
	second := app.createCategory(t, admin, "Couches", "shared.png")
	require.Equal(t, first.Image, second.Image)

	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "category/"+first.ID, admin, nil).Code)
	app.images.Wait()
	assert.True(t, app.fileExists("shared.png"), "second category still uses it")

	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "category/"+second.ID, admin, nil).Code)
	app.images.Wait()
	assert.False(t, app.fileExists("shared.png"))
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)
	cat := app.createCategory(t, admin, "Chairs", "chairs.png")
	brand := app.createBrand(t, admin, "Oakline")

	fields := map[string]string{
		"name":     "Dining Chair",
		"price":    "120.5",
		"oldprice": "150",
		"count":    "4",
		"material": "oak",
		"category": cat.ID,
		"brand":    brand.ID,
	}

	bad := map[string]string{}
	for k, v := range fields {
		bad[k] = v
	}
	bad["price"] = "cheap"
	assert.Equal(t, http.StatusBadRequest, app.multipart(t, http.MethodPost, "products", admin, bad, "").Code)

	bad["price"] = "10"
	bad["category"] = "missing"
	rec := app.multipart(t, http.MethodPost, "products", admin, bad, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "category not found")

	// the product reuses the category's image file
	rec = app.multipart(t, http.MethodPost, "products", admin, fields, "chairs.png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view model.ProductView
	decode(t, rec, &view)
	assert.Equal(t, "Dining Chair", view.Name)
	assert.Equal(t, 120.5, view.Price)
	require.NotNil(t, view.Category)
	assert.Equal(t, cat.ID, view.Category.ID)
	require.NotNil(t, view.Brand)
	assert.Equal(t, "uploads/chairs.png", view.Image)

	// partial update keeps untouched fields
	rec = app.form(http.MethodPut, "products/"+view.ID, admin, url.Values{"count": {"9"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.ProductView
	decode(t, rec, &updated)
	assert.Equal(t, 9, updated.Count)
	assert.Equal(t, "Dining Chair", updated.Name)
	assert.Equal(t, "uploads/chairs.png", updated.Image)

	rec = app.json(http.MethodGet, "products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.ProductView
	decode(t, rec, &list)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Brand)
	assert.Equal(t, "Oakline", list[0].Brand.Name)

	// deleting the category leaves the file for the product
	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "category/"+cat.ID, admin, nil).Code)
	app.images.Wait()
	assert.True(t, app.fileExists("chairs.png"))

	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "products/"+view.ID, admin, nil).Code)
	app.images.Wait()
	assert.False(t, app.fileExists("chairs.png"))
}

func TestProductImageReferenceIsCanonical(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)
	sofas := app.createCategory(t, admin, "Sofas", "a.png")
	lamps := app.createCategory(t, admin, "Lamps", "")
	brand := app.createBrand(t, admin, "Oakline")

	rec := app.multipart(t, http.MethodPost, "products", admin, map[string]string{
		"name": "Floor Lamp", "price": "40", "category": lamps.ID, "brand": brand.ID,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view model.ProductView
	decode(t, rec, &view)

	rec = app.form(http.MethodPut, "products/"+view.ID, admin, url.Values{"image": {"/uploads/a.png"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.ProductView
	decode(t, rec, &updated)
	assert.Equal(t, sofas.Image, updated.Image, "stored in the same form as the category's reference")

	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "category/"+sofas.ID, admin, nil).Code)
	app.images.Wait()
	assert.True(t, app.fileExists("a.png"), "the product still references the file")

	require.Equal(t, http.StatusOK, app.json(http.MethodDelete, "products/"+view.ID, admin, nil).Code)
	app.images.Wait()
	assert.False(t, app.fileExists("a.png"))
}

func TestBrandCRUD(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)

	b := app.createBrand(t, admin, "Oakline")
	rec := app.json(http.MethodPut, "brands/"+b.ID, admin, map[string]string{"name": "Oakline Co", "description": "solid wood"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Oakline Co")

	assert.Equal(t, http.StatusBadRequest, app.json(http.MethodPost, "brands", admin, map[string]string{"name": "x"}).Code)

	rec = app.json(http.MethodDelete, "brands/"+b.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "brand deleted")
	assert.Equal(t, http.StatusNotFound, app.json(http.MethodGet, "brands/"+b.ID, "", nil).Code)
}
