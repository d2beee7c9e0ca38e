// Package session implements the portal's session lifecycle: verifying a
// login, minting the access/refresh credential pair, renewing expired access
// tokens, and tearing a session down on logout.
package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-auth/credentials"
	"github.com/campushub/portal-auth/identity"
	"github.com/campushub/portal-auth/token"
)

// DefaultAccessTokenTTL matches what the portal clients expect.
const DefaultAccessTokenTTL = 24 * time.Hour

// Grant is the credential bundle returned by Login and RefreshAccess.
type Grant struct {
	AccessToken  string
	RefreshToken string
	IdentityID   string
	Username     string
	Name         string
	Role         identity.RoleType
	ExpiresIn    time.Duration
	ExpiryDate   time.Time
}

// Coordinator orchestrates the Login, RefreshAccess and Logout flows by
// composing a credential verifier, a token issuer and a session store.
//
// A session moves between three states: logged out (all session fields
// absent), active (access token still valid) and access-expired (refresh
// token present, expiry passed). Refresh tokens themselves never expire
// unless an opt-in TTL is configured; logout is the only other revocation
// path.
type Coordinator struct {
	verifier   credentials.Verifier
	issuer     *token.Issuer
	store      identity.Store
	accessTTL  time.Duration
	refreshTTL time.Duration // zero keeps refresh tokens valid until logout
	nowTime    func() time.Time
	log        zerolog.Logger
}

type CoordinatorOption func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

func WithAccessTokenTTL(ttl time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.accessTTL = ttl
	}
}

// WithRefreshTokenTTL bounds the age of accepted refresh tokens. Zero, the
// default, preserves the unbounded lifetime the portal clients rely on.
func WithRefreshTokenTTL(ttl time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.refreshTTL = ttl
	}
}

func WithLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

func NewCoordinator(verifier credentials.Verifier, issuer *token.Issuer, store identity.Store, options ...CoordinatorOption) (*Coordinator, error) {
	if verifier == nil {
		return nil, errors.New("[NewCoordinator] verifier is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewCoordinator] issuer is required")
	}
	if store == nil {
		return nil, errors.New("[NewCoordinator] store is required")
	}

	coordinator := &Coordinator{
		verifier:  verifier,
		issuer:    issuer,
		store:     store,
		accessTTL: DefaultAccessTokenTTL,
		nowTime:   time.Now,
		log:       zerolog.Nop(),
	}

	for _, opt := range options {
		opt(coordinator)
	}

	return coordinator, nil
}

// Login verifies the credentials and mints a fresh access token. If the
// identity's current session already holds a refresh token it is reused
// unchanged, so other contexts holding it are not invalidated; otherwise a
// new one is minted. The resulting session replaces whatever was stored.
func (c *Coordinator) Login(ctx context.Context, username, password string) (*Grant, error) {
	ident, err := c.verifier.Verify(ctx, username, password)
	if err != nil {
		var authErr *credentials.AuthenticationError
		if stderrors.As(err, &authErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Coordinator.Login] Verify")
	}

	accessToken, err := c.issuer.IssueAccess(ident, c.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, "[Coordinator.Login] IssueAccess")
	}

	refreshToken := ident.Session.RefreshToken
	if refreshToken == "" {
		refreshToken, err = c.issuer.IssueRefresh(ident)
		if err != nil {
			return nil, errors.Wrap(err, "[Coordinator.Login] IssueRefresh")
		}
	}

	sess := identity.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiryDate:   c.nowTime().Add(c.accessTTL),
	}
	if err := c.store.SaveSession(ctx, ident.ID, sess); err != nil {
		return nil, errors.Wrap(err, "[Coordinator.Login] SaveSession")
	}

	c.log.Info().Str("username", ident.Username).Msg("logged in")
	return c.grant(ident, sess), nil
}

// RefreshAccess exchanges a refresh token for a valid access token. While the
// stored access token has not expired it is returned unchanged with no store
// write; a still-valid token is not reissued merely because a refresh was
// requested. After expiry a new access token is minted and persisted, leaving
// the refresh token untouched.
func (c *Coordinator) RefreshAccess(ctx context.Context, refreshToken string) (*Grant, error) {
	ident, err := c.store.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if stderrors.Is(err, identity.ErrIdentityNotFound) {
			return nil, ErrUnknownRefreshToken
		}
		c.log.Error().Err(err).Msg("refresh token lookup failed")
		return nil, ErrRefreshFailed
	}

	if c.refreshTTL > 0 {
		claims, err := c.issuer.ParseRefresh(refreshToken)
		if err != nil || c.nowTime().Sub(claims.IssuedAt.Time) > c.refreshTTL {
			return nil, ErrUnknownRefreshToken
		}
	}

	sess := ident.Session
	if sess.Active(c.nowTime()) {
		return c.grant(ident, sess), nil
	}

	accessToken, err := c.issuer.IssueAccess(ident, c.accessTTL)
	if err != nil {
		c.log.Error().Err(err).Str("username", ident.Username).Msg("access token renewal failed")
		return nil, ErrRefreshFailed
	}

	sess.AccessToken = accessToken
	sess.ExpiryDate = c.nowTime().Add(c.accessTTL)
	if err := c.store.SaveSession(ctx, ident.ID, sess); err != nil {
		c.log.Error().Err(err).Str("username", ident.Username).Msg("session save failed during renewal")
		return nil, ErrRefreshFailed
	}

	c.log.Info().Str("username", ident.Username).Msg("access token renewed")
	return c.grant(ident, sess), nil
}

// Logout clears the session holding the given access token. A token that
// matches no stored session yields ErrUnknownAccessToken, which callers
// should treat as already-logged-out.
func (c *Coordinator) Logout(ctx context.Context, accessToken string) error {
	ident, err := c.store.ClearByAccessToken(ctx, accessToken)
	if err != nil {
		if stderrors.Is(err, identity.ErrIdentityNotFound) {
			return ErrUnknownAccessToken
		}
		c.log.Error().Err(err).Msg("session clear failed")
		return ErrLogoutFailed
	}

	c.log.Info().Str("username", ident.Username).Msg("logged out")
	return nil
}

// Authenticate validates a bearer access token for request authorization.
// The signature alone is not enough: the store is the source of truth for
// revocation, so the token must also match the stored session.
func (c *Coordinator) Authenticate(ctx context.Context, accessToken string) (*identity.Identity, error) {
	claims, err := c.issuer.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrUnknownAccessToken
	}

	ident, err := c.store.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, ErrUnknownAccessToken
	}
	if ident.Session.AccessToken != accessToken {
		return nil, ErrUnknownAccessToken
	}

	return ident, nil
}

func (c *Coordinator) grant(ident *identity.Identity, sess identity.Session) *Grant {
	return &Grant{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		IdentityID:   ident.ID,
		Username:     ident.Username,
		Name:         ident.Name,
		Role:         ident.Role,
		ExpiresIn:    c.accessTTL,
		ExpiryDate:   sess.ExpiryDate,
	}
}
