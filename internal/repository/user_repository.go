package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// PrincipalRepo mirrors either the 'users' or the 'admins' table.  Both
// tables share the same columns; kind decides which one is queried.
type PrincipalRepo struct {
	DB   *sql.DB
	kind model.Kind
}

func NewUserRepo(db *sql.DB) *PrincipalRepo  { return &PrincipalRepo{DB: db, kind: model.KindUser} }
func NewAdminRepo(db *sql.DB) *PrincipalRepo { return &PrincipalRepo{DB: db, kind: model.KindAdmin} }

const principalColumns = "id,name,email,password_hash,role,created_at,updated_at"

func (r *PrincipalRepo) table() string { return r.kind.Collection() }

// Create inserts the principal.  An empty ID is filled with a new uuid so
// that role escalation can carry an existing ID across tables.
func (r *PrincipalRepo) Create(ctx context.Context, p *model.Principal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Email = normalizeEmail(p.Email)
	p.Kind = r.kind
	if r.kind == model.KindAdmin {
		p.Role = model.RoleAdmin
	} else if p.Role == "" {
		p.Role = model.RoleUser
	}
	now := time.Now().UTC().Truncate(time.Second)
	p.CreatedAt, p.UpdatedAt = now, now

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?,?,?,?,?,?,?)", r.table(), principalColumns)
	_, err := r.DB.ExecContext(ctx, q, p.ID, p.Name, p.Email, p.PasswordHash, string(p.Role), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a principal by id.
func (r *PrincipalRepo) GetByID(ctx context.Context, id string) (*model.Principal, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id=? LIMIT 1", principalColumns, r.table())
	return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

// GetByEmail fetches a principal by normalized email.
func (r *PrincipalRepo) GetByEmail(ctx context.Context, email string) (*model.Principal, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE email=? LIMIT 1", principalColumns, r.table())
	return r.scanOne(r.DB.QueryRowContext(ctx, q, normalizeEmail(email)))
}

// List returns every principal ordered by creation time.
func (r *PrincipalRepo) List(ctx context.Context) ([]*model.Principal, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id", principalColumns, r.table())
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Principal{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes name, email, password hash and role.  It returns
// ErrNotFound when no row has the given id.
func (r *PrincipalRepo) Update(ctx context.Context, p *model.Principal) error {
	p.Email = normalizeEmail(p.Email)
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	q := fmt.Sprintf("UPDATE %s SET name=?, email=?, password_hash=?, role=?, updated_at=? WHERE id=?", r.table())
	res, err := r.DB.ExecContext(ctx, q, p.Name, p.Email, p.PasswordHash, string(p.Role), p.UpdatedAt, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return affected(res)
}

// Delete removes the principal with the given id.
func (r *PrincipalRepo) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id=?", r.table())
	res, err := r.DB.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return affected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PrincipalRepo) scanOne(row *sql.Row) (*model.Principal, error) {
	p, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PrincipalRepo) scan(s rowScanner) (*model.Principal, error) {
	var (
		p    model.Principal
		role string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = model.Role(role)
	p.Kind = r.kind
	return &p, nil
}

// affected maps a zero row count to ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
