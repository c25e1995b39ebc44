package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password; callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Accounts creates, authenticates and edits principals.
type Accounts struct {
	stores     *repository.Stores
	bcryptCost int
}

func NewAccounts(stores *repository.Stores, bcryptCost int) *Accounts {
	return &Accounts{stores: stores, bcryptCost: bcryptCost}
}

// Register stores a new principal of the given kind with a hashed password.
// Users always start with the "user" role.
func (a *Accounts) Register(ctx context.Context, kind model.Kind, name, email, password string) (*model.Principal, error) {
	store := a.stores.For(kind)
	email = utils.NormalizeEmail(email)
	if _, err := store.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", kind, err)
	}

	hash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := &model.Principal{Name: name, Email: email, PasswordHash: hash, Role: model.RoleUser}
	if kind == model.KindAdmin {
		p.Role = model.RoleAdmin
	}
	if err := store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate checks email and password, looking in admins first and then
// users.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*model.Principal, error) {
	for _, kind := range []model.Kind{model.KindAdmin, model.KindUser} {
		p, err := a.stores.For(kind).GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", kind, err)
		}
		if !utils.VerifyPassword(p.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		return p, nil
	}
	return nil, ErrInvalidCredentials
}

// ProfileUpdate carries the editable fields of a principal.  An empty
// Password keeps the stored hash.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile edits name, email and optionally the password of the
// principal id in kind's collection.
func (a *Accounts) UpdateProfile(ctx context.Context, kind model.Kind, id string, u ProfileUpdate) (*model.Principal, error) {
	store := a.stores.For(kind)
	p, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = u.Name
	p.Email = utils.NormalizeEmail(u.Email)
	if u.Password != "" {
		hash, err := utils.HashPassword(u.Password, a.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		p.PasswordHash = hash
	}
	if err := store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureAdmin creates the bootstrap admin unless one with the same email
// exists.  The boolean reports whether a record was created.
func (a *Accounts) EnsureAdmin(ctx context.Context, name, email, password string) (*model.Principal, bool, error) {
	existing, err := a.stores.Admins.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	p, err := a.Register(ctx, model.KindAdmin, name, email, password)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
