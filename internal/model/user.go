package model

import "time"

// Role is the value carried in a principal record and in the token "role"
// claim.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Kind identifies which collection a principal lives in.  A principal is
// either a User or an Admin; each kind is bound to exactly one collection
// and callers never branch on raw role strings to pick a store.
type Kind uint8

const (
	KindUser Kind = iota + 1
	KindAdmin
)

// KindForRole maps a role claim to the collection that must hold the
// principal.  Admin tokens resolve against admins, everything else against
// users.
func KindForRole(r Role) Kind {
	if r == RoleAdmin {
		return KindAdmin
	}
	return KindUser
}

// Collection returns the table / collection name backing the kind.
func (k Kind) Collection() string {
	switch k {
	case KindAdmin:
		return "admins"
	default:
		return "users"
	}
}

func (k Kind) String() string {
	if k == KindAdmin {
		return "admin"
	}
	return "user"
}

// Principal represents a user or admin record.  Both collections share the
// same shape; Kind records where the row was loaded from.
//
// Fields:
//  ID           – application generated identifier (uuid), immutable.
//  Name         – display name, 3..50 characters.
//  Email        – unique within its collection.
//  PasswordHash – bcrypt hash, never serialized.
//  Role         – "user" or "admin"; always "admin" for KindAdmin.
//  Kind         – collection the record belongs to.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Principal struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         Role      `json:"role" bson:"role"`
	Kind         Kind      `json:"-" bson:"-"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Summary is the public view of a principal with the password hash removed.
type Summary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (p *Principal) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }
