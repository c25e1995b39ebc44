package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// ProductRepo persists products in the 'products' table.  Category and
// brand references are plain ids; existence is checked by the handler.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = "id, name, price, old_price, count, description, material, category_id, brand_id, image, updated_at"

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = "INSERT INTO products (" + productColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Price, p.OldPrice, p.Count, p.Description,
		p.Material, p.CategoryID, p.BrandID, p.Image, p.UpdatedAt)
	return err
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	const q = "SELECT " + productColumns + " FROM products WHERE id = ?"
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context) ([]*model.Product, error) {
	const q = "SELECT " + productColumns + " FROM products ORDER BY updated_at DESC, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE products SET name = ?, price = ?, old_price = ?, count = ?, description = ?,
	           material = ?, category_id = ?, brand_id = ?, image = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Price, p.OldPrice, p.Count, p.Description,
		p.Material, p.CategoryID, p.BrandID, p.Image, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

// CountByImage counts products using path, skipping excludeID.
func (r *ProductRepo) CountByImage(ctx context.Context, path, excludeID string) (int64, error) {
	const q = "SELECT COUNT(*) FROM products WHERE image = ? AND id <> ?"
	var n int64
	err := r.db.QueryRowContext(ctx, q, path, excludeID).Scan(&n)
	return n, err
}

func scanProduct(s rowScanner) (*model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.Price, &p.OldPrice, &p.Count, &p.Description,
		&p.Material, &p.CategoryID, &p.BrandID, &p.Image, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
