package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-auth/identity"
	"github.com/campushub/portal-auth/identity/inmemory"
)

func testIdentity() *identity.Identity {
	return &identity.Identity{
		Username:     "alice",
		Name:         "Alice Liddell",
		Role:         identity.RoleStudent,
		PasswordHash: "hash",
	}
}

func testSession() identity.Session {
	return identity.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiryDate:   time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_AssignsID(t *testing.T) {
	store := inmemory.New()
	ident := testIdentity()

	require.NoError(t, store.Upsert(context.Background(), ident))
	require.NotEmpty(t, ident.ID)

	found, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, ident.ID, found.ID)
}

func TestGetByUsername_NotFound(t *testing.T) {
	store := inmemory.New()

	_, err := store.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestGetByUsername_ReturnsCopy(t *testing.T) {
	store := inmemory.New()
	require.NoError(t, store.Upsert(context.Background(), testIdentity()))

	found, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	found.Session.AccessToken = "mutated"

	again, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, again.Session.AccessToken)
}

func TestSaveSession_OverwritesTriple(t *testing.T) {
	store := inmemory.New()
	ident := testIdentity()
	require.NoError(t, store.Upsert(context.Background(), ident))

	require.NoError(t, store.SaveSession(context.Background(), ident.ID, testSession()))

	replacement := identity.Session{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiryDate:   time.Date(2024, 9, 3, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveSession(context.Background(), ident.ID, replacement))

	found, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, replacement, found.Session)
}

func TestSaveSession_UnknownIdentity(t *testing.T) {
	store := inmemory.New()

	err := store.SaveSession(context.Background(), "no-such-id", testSession())
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestFindByRefreshToken(t *testing.T) {
	store := inmemory.New()
	ident := testIdentity()
	require.NoError(t, store.Upsert(context.Background(), ident))
	require.NoError(t, store.SaveSession(context.Background(), ident.ID, testSession()))

	found, err := store.FindByRefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "alice", found.Username)

	_, err = store.FindByRefreshToken(context.Background(), "no-such-token")
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestFindByRefreshToken_EmptyNeverMatches(t *testing.T) {
	store := inmemory.New()
	require.NoError(t, store.Upsert(context.Background(), testIdentity()))

	// The stored identity has no refresh token; an empty lookup must not
	// match it.
	_, err := store.FindByRefreshToken(context.Background(), "")
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestClearByAccessToken(t *testing.T) {
	store := inmemory.New()
	ident := testIdentity()
	require.NoError(t, store.Upsert(context.Background(), ident))

	sess := testSession()
	require.NoError(t, store.SaveSession(context.Background(), ident.ID, sess))

	prior, err := store.ClearByAccessToken(context.Background(), "access-1")
	require.NoError(t, err)
	require.Equal(t, sess, prior.Session)

	found, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, found.Session.AccessToken)
	require.Empty(t, found.Session.RefreshToken)
	require.True(t, found.Session.ExpiryDate.IsZero())

	_, err = store.ClearByAccessToken(context.Background(), "access-1")
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestClearByAccessToken_EmptyNeverMatches(t *testing.T) {
	store := inmemory.New()
	require.NoError(t, store.Upsert(context.Background(), testIdentity()))

	_, err := store.ClearByAccessToken(context.Background(), "")
	require.ErrorIs(t, err, identity.ErrIdentityNotFound)
}
