// Package credentials verifies username/password pairs against stored
// identity records. Verification is side-effect-free with respect to session
// state.
package credentials

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campushub/portal-auth/identity"
)

// AuthenticationError marks a credential rejection whose reason is safe to
// forward to the caller verbatim. Anything else a Verifier returns is an
// internal failure and must not reach the caller.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

var (
	ErrUnknownUsername = &AuthenticationError{Reason: "user not found"}
	ErrWrongPassword   = &AuthenticationError{Reason: "wrong password"}
)

type Verifier interface {
	Verify(ctx context.Context, username, password string) (*identity.Identity, error)
}

var _ Verifier = (*StoreVerifier)(nil)

// StoreVerifier checks credentials against identities held in a Store.
type StoreVerifier struct {
	store identity.Store
}

func NewStoreVerifier(store identity.Store) *StoreVerifier {
	return &StoreVerifier{store: store}
}

func (v *StoreVerifier) Verify(ctx context.Context, username, password string) (*identity.Identity, error) {
	ident, err := v.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return nil, ErrUnknownUsername
		}
		return nil, errors.Wrap(err, "[StoreVerifier.Verify] GetByUsername")
	}

	if !identity.CheckPasswordHash(password, ident.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return ident, nil
}
