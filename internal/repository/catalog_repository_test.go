package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

func TestCategoryRepoCreateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(sqlmock.AnyArg(), "Sofas", "uploads/sofa.png", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := NewCategoryRepo(db)
	c := &model.Category{Name: " Sofas ", Image: "uploads/sofa.png"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID)

	err = repo.Create(context.Background(), &model.Category{Name: "sofas"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepoGetByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "name", "image", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(name) = LOWER(?)")).WithArgs("sofas").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c-1", "Sofas", "", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(name) = LOWER(?)")).WithArgs("tables").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewCategoryRepo(db)
	c, err := repo.GetByName(context.Background(), " sofas ")
	require.NoError(t, err)
	assert.Equal(t, "c-1", c.ID)

	_, err = repo.GetByName(context.Background(), "tables")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByImage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE image = ? AND id <> ?")).
		WithArgs("uploads/sofa.png", "c-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE image = ? AND id <> ?")).
		WithArgs("uploads/sofa.png", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	stores := NewMySQLStores(db)
	n, err := stores.Categories.CountByImage(context.Background(), "uploads/sofa.png", "c-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = stores.Products.CountByImage(context.Background(), "uploads/sofa.png", "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewProductRepo(db)
	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoresFor(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stores := NewMySQLStores(db)
	assert.Same(t, stores.Users, stores.For(model.KindUser))
	assert.Same(t, stores.Admins, stores.For(model.KindAdmin))
}
