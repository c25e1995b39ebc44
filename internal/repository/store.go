package repository

import (
	"context"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// PrincipalStore persists one principal collection (users or admins).
type PrincipalStore interface {
	Create(ctx context.Context, p *model.Principal) error
	GetByID(ctx context.Context, id string) (*model.Principal, error)
	GetByEmail(ctx context.Context, email string) (*model.Principal, error)
	List(ctx context.Context) ([]*model.Principal, error)
	Update(ctx context.Context, p *model.Principal) error
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists catalog categories.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
	ImageCounter
}

// BrandStore persists brands.
type BrandStore interface {
	Create(ctx context.Context, b *model.Brand) error
	GetByID(ctx context.Context, id string) (*model.Brand, error)
	List(ctx context.Context) ([]*model.Brand, error)
	Update(ctx context.Context, b *model.Brand) error
	Delete(ctx context.Context, id string) error
}

// ProductStore persists products.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	ImageCounter
}

// ImageCounter counts live records whose image equals path.  A non-empty
// excludeID leaves that record out of the count.
type ImageCounter interface {
	CountByImage(ctx context.Context, path, excludeID string) (int64, error)
}

// Stores bundles every collection of one backend.
type Stores struct {
	Users      PrincipalStore
	Admins     PrincipalStore
	Categories CategoryStore
	Brands     BrandStore
	Products   ProductStore

	// Close releases the backend connection; nil when there is nothing to release.
	Close func(ctx context.Context) error
}

// For returns the principal store bound to kind.
func (s *Stores) For(kind model.Kind) PrincipalStore {
	if kind == model.KindAdmin {
		return s.Admins
	}
	return s.Users
}
