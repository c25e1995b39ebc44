package repository

import (
	"context"
	"database/sql"
)

// NewMySQLStores wires every MySQL repository around one connection pool.
func NewMySQLStores(db *sql.DB) *Stores {
	return &Stores{
		Users:      NewUserRepo(db),
		Admins:     NewAdminRepo(db),
		Categories: NewCategoryRepo(db),
		Brands:     NewBrandRepo(db),
		Products:   NewProductRepo(db),
		Close:      func(context.Context) error { return db.Close() },
	}
}
