package utils // package utils provides the token codec and password hashing helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/furniture-catalog/internal/model"
)

// TokenKind selects the secret and lifetime used for a token.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, wrong secrets, wrong token kinds
	// and anything that does not parse.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenConfig carries the signing material for both token kinds.  It is
// built once from process configuration and handed to NewTokenCodec.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration // reference lifetime: 50 minutes
	RefreshTTL    time.Duration // reference lifetime: 7 days
}

// Claims is the payload embedded in both token kinds.
type Claims struct {
	ID    string     `json:"_id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Use   TokenKind  `json:"tu"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token string along with its expiry.
type IssuedToken struct {
	Token string
	Exp   time.Time
}

// TokenCodec signs and verifies access and refresh tokens.  It holds no
// mutable state and is safe for concurrent use.
type TokenCodec struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenCodec builds a codec using the wall clock.
func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the codec reading time from now.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *tc
	cp.now = now
	return &cp
}

func (tc *TokenCodec) material(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case AccessToken:
		return []byte(tc.cfg.AccessSecret), tc.cfg.AccessTTL, nil
	case RefreshToken:
		return []byte(tc.cfg.RefreshSecret), tc.cfg.RefreshTTL, nil
	}
	return nil, 0, fmt.Errorf("unknown token kind %q", kind)
}

// Issue builds and signs an HS256 JWT for p.  Expiry is relative to the
// codec clock, so identical inputs at the same instant yield the same token.
func (tc *TokenCodec) Issue(p *model.Principal, kind TokenKind) (IssuedToken, error) {
	secret, ttl, err := tc.material(kind)
	if err != nil {
		return IssuedToken{}, err
	}
	now := tc.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := Claims{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
		Use:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Exp: exp}, nil
}

// IssuePair issues an access and a refresh token for p.
func (tc *TokenCodec) IssuePair(p *model.Principal) (access, refresh IssuedToken, err error) {
	if access, err = tc.Issue(p, AccessToken); err != nil {
		return
	}
	refresh, err = tc.Issue(p, RefreshToken)
	return
}

// Verify parses raw with the secret for kind.  Expiry is reported as
// ErrTokenExpired only when the signature checks out; every other failure
// is ErrTokenInvalid.
func (tc *TokenCodec) Verify(raw string, kind TokenKind) (*Claims, error) {
	secret, _, err := tc.material(kind)
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Use != kind || claims.ID == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
