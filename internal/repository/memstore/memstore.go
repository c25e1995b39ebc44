// Package memstore keeps every collection in process memory.  It backs the
// "memory" store driver for local runs and is the store used by service and
// handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

// New returns empty in-memory Stores.
func New() *repository.Stores {
	return &repository.Stores{
		Users:      NewPrincipals(model.KindUser),
		Admins:     NewPrincipals(model.KindAdmin),
		Categories: &Categories{items: map[string]model.Category{}},
		Brands:     &Brands{items: map[string]model.Brand{}},
		Products:   &Products{items: map[string]model.Product{}},
	}
}

// Principals stores one principal collection.
type Principals struct {
	mu    sync.RWMutex
	kind  model.Kind
	items map[string]model.Principal
}

func NewPrincipals(kind model.Kind) *Principals {
	return &Principals{kind: kind, items: map[string]model.Principal{}}
}

func (s *Principals) Create(_ context.Context, p *model.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, ok := s.items[p.ID]; ok {
		return repository.ErrConflict
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	for _, it := range s.items {
		if it.Email == p.Email {
			return repository.ErrEmailExists
		}
	}
	p.Kind = s.kind
	if s.kind == model.KindAdmin {
		p.Role = model.RoleAdmin
	} else if p.Role == "" {
		p.Role = model.RoleUser
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.items[p.ID] = *p
	return nil
}

func (s *Principals) GetByID(_ context.Context, id string) (*model.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Principals) GetByEmail(_ context.Context, email string) (*model.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range s.items {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Principals) List(_ context.Context) ([]*model.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Principal, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Principals) Update(_ context.Context, p *model.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	for id, it := range s.items {
		if id != p.ID && it.Email == p.Email {
			return repository.ErrEmailExists
		}
	}
	p.Kind = s.kind
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = *p
	return nil
}

func (s *Principals) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Categories stores categories; names are unique ignoring case.
type Categories struct {
	mu    sync.RWMutex
	items map[string]model.Category
}

func (s *Categories) Create(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Name = strings.TrimSpace(c.Name)
	for _, it := range s.items {
		if strings.EqualFold(it.Name, c.Name) {
			return repository.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if _, ok := s.items[c.ID]; ok {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.items[c.ID] = *c
	return nil
}

func (s *Categories) GetByID(_ context.Context, id string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Categories) GetByName(_ context.Context, name string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, c := range s.items {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Categories) List(_ context.Context) ([]*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Category, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Categories) Update(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Name = strings.TrimSpace(c.Name)
	for id, it := range s.items {
		if id != c.ID && strings.EqualFold(it.Name, c.Name) {
			return repository.ErrConflict
		}
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.items[c.ID] = *c
	return nil
}

func (s *Categories) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Categories) CountByImage(_ context.Context, path, excludeID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for id, c := range s.items {
		if id != excludeID && c.Image == path {
			n++
		}
	}
	return n, nil
}

// Brands stores brands.
type Brands struct {
	mu    sync.RWMutex
	items map[string]model.Brand
}

func (s *Brands) Create(_ context.Context, b *model.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	} else if _, ok := s.items[b.ID]; ok {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.items[b.ID] = *b
	return nil
}

func (s *Brands) GetByID(_ context.Context, id string) (*model.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Brands) List(_ context.Context) ([]*model.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Brand, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Brands) Update(_ context.Context, b *model.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.items[b.ID] = *b
	return nil
}

func (s *Brands) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Products stores products.
type Products struct {
	mu    sync.RWMutex
	items map[string]model.Product
}

func (s *Products) Create(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, ok := s.items[p.ID]; ok {
		return repository.ErrConflict
	}
	p.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = *p
	return nil
}

func (s *Products) GetByID(_ context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Products) List(_ context.Context) ([]*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Products) Update(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = *p
	return nil
}

func (s *Products) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Products) CountByImage(_ context.Context, path, excludeID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for id, p := range s.items {
		if id != excludeID && p.Image == path {
			n++
		}
	}
	return n, nil
}
