// Package repository defines the persistence contracts used by the catalog
// and auth layers together with the MySQL implementation. The sentinel
// values below are shared by every backend so that handlers can map them to
// HTTP statuses without knowing which store is configured.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id, email or name matches no
// record. Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a principal is saved with an email that
// already exists in the same collection.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a unique attribute (a category name, or a
// record id already in use) is taken. Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
