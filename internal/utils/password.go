package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the salt rounds used for existing records.
const DefaultBcryptCost = 10

// HashPassword returns a salted bcrypt hash using the given cost.  A cost
// outside bcrypt's accepted range falls back to DefaultBcryptCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NormalizeEmail lower-cases and trims an email before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
