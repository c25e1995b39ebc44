package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates one table per collection.  users and admins share the
// same layout so that a principal can be copied between them verbatim.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)      NOT NULL PRIMARY KEY,
		name          VARCHAR(50)   NOT NULL,
		email         VARCHAR(255)  NOT NULL,
		password_hash VARCHAR(1024) NOT NULL,
		role          VARCHAR(16)   NOT NULL DEFAULT 'user',
		created_at    DATETIME      NOT NULL,
		updated_at    DATETIME      NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            CHAR(36)      NOT NULL PRIMARY KEY,
		name          VARCHAR(50)   NOT NULL,
		email         VARCHAR(255)  NOT NULL,
		password_hash VARCHAR(1024) NOT NULL,
		role          VARCHAR(16)   NOT NULL DEFAULT 'admin',
		created_at    DATETIME      NOT NULL,
		updated_at    DATETIME      NOT NULL,
		UNIQUE KEY uq_admins_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		image      VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME     NOT NULL,
		updated_at DATETIME     NOT NULL,
		UNIQUE KEY uq_categories_name (name),
		KEY idx_categories_image (image)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS brands (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT         NOT NULL,
		created_at  DATETIME     NOT NULL,
		updated_at  DATETIME     NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		price       DOUBLE       NOT NULL,
		old_price   DOUBLE       NOT NULL,
		count       INT          NOT NULL DEFAULT 0,
		description TEXT         NOT NULL,
		material    VARCHAR(255) NOT NULL,
		category_id CHAR(36)     NOT NULL,
		brand_id    CHAR(36)     NOT NULL,
		image       VARCHAR(512) NOT NULL DEFAULT '',
		updated_at  DATETIME     NOT NULL,
		KEY idx_products_image (image),
		KEY idx_products_category (category_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.  Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
