package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// CategoryRepo encapsulates all queries related to categories.  Names are
// unique; the column collation makes the comparison case-insensitive.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category and fills ID and timestamps.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	c.CreatedAt, c.UpdatedAt = now, now
	const q = "INSERT INTO categories (id, name, image, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, c.ID, strings.TrimSpace(c.Name), c.Image, c.CreatedAt, c.UpdatedAt); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetByID fetches a category by its ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	const q = "SELECT id, name, image, created_at, updated_at FROM categories WHERE id = ?"
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

// GetByName fetches a category by name, ignoring case.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	const q = "SELECT id, name, image, created_at, updated_at FROM categories WHERE LOWER(name) = LOWER(?) LIMIT 1"
	return scanCategory(r.db.QueryRowContext(ctx, q, strings.TrimSpace(name)))
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	const q = "SELECT id, name, image, created_at, updated_at FROM categories ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update stores the name and image of c.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = "UPDATE categories SET name = ?, image = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, strings.TrimSpace(c.Name), c.Image, c.UpdatedAt, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return affected(res)
}

// Delete removes the category.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

// CountByImage counts categories using path, skipping excludeID.
func (r *CategoryRepo) CountByImage(ctx context.Context, path, excludeID string) (int64, error) {
	const q = "SELECT COUNT(*) FROM categories WHERE image = ? AND id <> ?"
	var n int64
	err := r.db.QueryRowContext(ctx, q, path, excludeID).Scan(&n)
	return n, err
}

func scanCategory(row *sql.Row) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
