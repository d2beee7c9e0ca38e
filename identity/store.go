package identity

import (
	"context"
	"errors"
)

var ErrIdentityNotFound = errors.New("identity not found")

// Store persists Identity records and their embedded session state.
//
// Session writes replace the whole triple atomically with respect to a single
// record. The store provides no cross-operation locking: concurrent writers
// for the same identity race under last-write-wins, and callers must treat
// the store, not a token's own signature, as the source of truth for
// revocation.
type Store interface {
	Upsert(ctx context.Context, ident *Identity) error
	GetByUsername(ctx context.Context, username string) (*Identity, error)

	// SaveSession overwrites the identity's session fields.
	SaveSession(ctx context.Context, identityID string, session Session) error

	// FindByRefreshToken returns the identity whose session holds the given
	// refresh token, or ErrIdentityNotFound.
	FindByRefreshToken(ctx context.Context, refreshToken string) (*Identity, error)

	// ClearByAccessToken clears all session fields of the identity whose
	// session holds the given access token and returns the identity as it
	// was before the clear, or ErrIdentityNotFound.
	ClearByAccessToken(ctx context.Context, accessToken string) (*Identity, error)
}
