package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

func TestCreateRejectsExistingID(t *testing.T) {
	ctx := context.Background()
	stores := New()

	first := &model.Principal{ID: "p-1", Name: "Alice", Email: "a@x.com"}
	require.NoError(t, stores.Users.Create(ctx, first))
	err := stores.Users.Create(ctx, &model.Principal{ID: "p-1", Name: "Bob", Email: "b@x.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	kept, err := stores.Users.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", kept.Name)

	require.NoError(t, stores.Categories.Create(ctx, &model.Category{ID: "c-1", Name: "Sofas"}))
	assert.ErrorIs(t, stores.Categories.Create(ctx, &model.Category{ID: "c-1", Name: "Tables"}), repository.ErrConflict)

	require.NoError(t, stores.Brands.Create(ctx, &model.Brand{ID: "b-1", Name: "Acme"}))
	assert.ErrorIs(t, stores.Brands.Create(ctx, &model.Brand{ID: "b-1", Name: "Other"}), repository.ErrConflict)

	require.NoError(t, stores.Products.Create(ctx, &model.Product{ID: "x-1", Name: "Chair"}))
	assert.ErrorIs(t, stores.Products.Create(ctx, &model.Product{ID: "x-1", Name: "Desk"}), repository.ErrConflict)
}

func TestCreateGeneratesID(t *testing.T) {
	ctx := context.Background()
	stores := New()
	a := &model.Principal{Name: "Alice", Email: " A@X.com "}
	b := &model.Principal{Name: "Bob", Email: "b@x.com"}
	require.NoError(t, stores.Admins.Create(ctx, a))
	require.NoError(t, stores.Admins.Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, model.RoleAdmin, a.Role)
}
