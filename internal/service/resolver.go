// Package service holds the auth and catalog rules that sit between the
// HTTP handlers and the stores: principal resolution, account management,
// role escalation and the image reference tracker.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

var (
	// ErrPrincipalNotFound means the token names a principal that no longer
	// exists in the collection selected by its role.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrRoleMismatch means a refresh token's role no longer matches the
	// stored record, e.g. after a role change.
	ErrRoleMismatch = errors.New("principal role mismatch")
)

// Resolver turns verified token claims into the stored principal.
type Resolver struct {
	stores *repository.Stores
}

func NewResolver(stores *repository.Stores) *Resolver {
	return &Resolver{stores: stores}
}

// Resolve looks the principal up in the collection bound to the claim's
// role: admins for "admin", users otherwise.
func (r *Resolver) Resolve(ctx context.Context, c *utils.Claims) (*model.Principal, error) {
	p, err := r.stores.For(model.KindForRole(c.Role)).GetByID(ctx, c.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve principal %s: %w", c.ID, err)
	}
	return p, nil
}

// ResolveRefresh is Resolve plus the role consistency check applied to
// refresh tokens.
func (r *Resolver) ResolveRefresh(ctx context.Context, c *utils.Claims) (*model.Principal, error) {
	p, err := r.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	if p.Role != c.Role {
		return nil, ErrRoleMismatch
	}
	return p, nil
}
