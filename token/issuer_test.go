package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-auth/identity"
	"github.com/campushub/portal-auth/token"
)

const (
	accessSecret  = "access-secret-1"
	refreshSecret = "refresh-secret-1"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testIdentity() *identity.Identity {
	return &identity.Identity{
		ID:       "id-1",
		Username: "alice",
		Role:     identity.RoleStudent,
	}
}

func newTestIssuer(t *testing.T) (*token.Issuer, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)}
	issuer, err := token.NewIssuer(accessSecret, refreshSecret, token.WithNowFunc(clock.Now))
	require.NoError(t, err)
	return issuer, clock
}

func TestNewIssuer_RequiresSecrets(t *testing.T) {
	_, err := token.NewIssuer("", refreshSecret)
	require.ErrorIs(t, err, token.ErrMissingSecret)

	_, err = token.NewIssuer(accessSecret, "")
	require.ErrorIs(t, err, token.ErrMissingSecret)
}

func TestIssueAndParseAccess_RoundTrip(t *testing.T) {
	issuer, clock := newTestIssuer(t)

	raw, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(raw)
	require.NoError(t, err)
	require.Equal(t, "id-1", claims.IdentityID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, identity.RoleStudent, claims.Role)
	require.Equal(t, clock.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)
}

func TestParseAccess_Expired(t *testing.T) {
	issuer, clock := newTestIssuer(t)

	raw, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = issuer.ParseAccess(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestParseAccess_WrongSecret(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	other, err := token.NewIssuer("different-secret", refreshSecret)
	require.NoError(t, err)

	raw, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = other.ParseAccess(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssueRefresh_NoEmbeddedExpiry(t *testing.T) {
	issuer, clock := newTestIssuer(t)

	raw, err := issuer.IssueRefresh(testIdentity())
	require.NoError(t, err)

	claims, err := issuer.ParseRefresh(raw)
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)

	// Refresh tokens outlive any clock advance.
	clock.Advance(10 * 365 * 24 * time.Hour)
	_, err = issuer.ParseRefresh(raw)
	require.NoError(t, err)
}

func TestParse_RejectsCrossClassTokens(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	accessRaw, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)
	_, err = issuer.ParseRefresh(accessRaw)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	refreshRaw, err := issuer.IssueRefresh(testIdentity())
	require.NoError(t, err)
	_, err = issuer.ParseAccess(refreshRaw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssueAccess_UniqueTokens(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	first, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)
	second, err := issuer.IssueAccess(testIdentity(), time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
