package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// BrandRepo persists brands in the 'brands' table.
type BrandRepo struct {
	db *sql.DB
}

func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Create(ctx context.Context, b *model.Brand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	b.CreatedAt, b.UpdatedAt = now, now
	const q = "INSERT INTO brands (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, b.ID, b.Name, b.Description, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *BrandRepo) GetByID(ctx context.Context, id string) (*model.Brand, error) {
	const q = "SELECT id, name, description, created_at, updated_at FROM brands WHERE id = ?"
	var b model.Brand
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BrandRepo) List(ctx context.Context) ([]*model.Brand, error) {
	const q = "SELECT id, name, description, created_at, updated_at FROM brands ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Brand{}
	for rows.Next() {
		b := new(model.Brand)
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BrandRepo) Update(ctx context.Context, b *model.Brand) error {
	b.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = "UPDATE brands SET name = ?, description = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, b.Name, b.Description, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *BrandRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM brands WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}
