// Package token mints and validates the portal's bearer credentials.
//
// Access tokens are short-lived and carry an embedded expiry. Refresh tokens
// are signed with a distinct secret and carry no expiry at all: they stay
// valid until the identity logs out and the stored session is cleared.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campushub/portal-auth/identity"
)

var (
	// ErrMissingSecret is a configuration failure. Issuing tokens without a
	// secret would produce credentials nothing can verify, so construction
	// refuses and startup must abort.
	ErrMissingSecret = errors.New("signing secret not configured")

	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the fixed payload embedded in both token classes.
type Claims struct {
	jwt.RegisteredClaims
	IdentityID string            `json:"identityId"`
	Username   string            `json:"username"`
	Role       identity.RoleType `json:"role"`
}

// Issuer signs and verifies tokens with HS256. It is stateless apart from the
// two process-wide secrets, which are read-only after construction.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

// WithNowFunc sets the clock used for issued-at and expiry claims
// (primarily for testing).
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(accessSecret, refreshSecret string, options ...IssuerOption) (*Issuer, error) {
	if accessSecret == "" {
		return nil, errors.Wrap(ErrMissingSecret, "access token")
	}
	if refreshSecret == "" {
		return nil, errors.Wrap(ErrMissingSecret, "refresh token")
	}

	issuer := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		nowFunc:       time.Now,
	}

	for _, opt := range options {
		opt(issuer)
	}

	return issuer, nil
}

// IssueAccess mints a signed access token for the identity, expiring at
// now + ttl.
func (i *Issuer) IssueAccess(ident *identity.Identity, ttl time.Duration) (string, error) {
	now := i.nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		IdentityID: ident.ID,
		Username:   ident.Username,
		Role:       ident.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueAccess] SignedString")
	}
	return signed, nil
}

// IssueRefresh mints a signed refresh token for the identity. The token has
// no embedded expiry.
func (i *Issuer) IssueRefresh(ident *identity.Identity) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(i.nowFunc()),
			ID:       uuid.New().String(),
		},
		IdentityID: ident.ID,
		Username:   ident.Username,
		Role:       ident.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueRefresh] SignedString")
	}
	return signed, nil
}

// ParseAccess verifies an access token's signature and expiry and returns its
// claims.
func (i *Issuer) ParseAccess(raw string) (*Claims, error) {
	return i.parse(raw, i.accessSecret)
}

// ParseRefresh verifies a refresh token's signature and returns its claims.
func (i *Issuer) ParseRefresh(raw string) (*Claims, error) {
	return i.parse(raw, i.refreshSecret)
}

func (i *Issuer) parse(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.nowFunc))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
