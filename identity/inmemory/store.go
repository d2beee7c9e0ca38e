// Package inmemory provides a map-backed identity.Store. It backs the server
// in development when no database is configured and the test fixtures.
package inmemory

import (
	"context"
	"sync"

	"github.com/campushub/portal-auth/identity"
	"github.com/google/uuid"
)

var _ identity.Store = (*Store)(nil)

type Store struct {
	lock       sync.RWMutex
	identities map[string]*identity.Identity // keyed by identity ID
	usernames  map[string]string             // username -> identity ID
}

func New() *Store {
	return &Store{
		identities: make(map[string]*identity.Identity),
		usernames:  make(map[string]string),
	}
}

func (s *Store) Upsert(ctx context.Context, ident *identity.Identity) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if ident.ID == "" {
		ident.ID = uuid.New().String()
	}
	if existing, ok := s.identities[ident.ID]; ok && existing.Username != ident.Username {
		delete(s.usernames, existing.Username)
	}
	stored := *ident
	s.identities[stored.ID] = &stored
	s.usernames[stored.Username] = stored.ID
	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, identity.ErrIdentityNotFound
	}
	ident := *s.identities[id]
	return &ident, nil
}

func (s *Store) SaveSession(ctx context.Context, identityID string, session identity.Session) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	ident, ok := s.identities[identityID]
	if !ok {
		return identity.ErrIdentityNotFound
	}
	ident.Session = session
	return nil
}

func (s *Store) FindByRefreshToken(ctx context.Context, refreshToken string) (*identity.Identity, error) {
	if refreshToken == "" {
		return nil, identity.ErrIdentityNotFound
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, ident := range s.identities {
		if ident.Session.RefreshToken == refreshToken {
			found := *ident
			return &found, nil
		}
	}
	return nil, identity.ErrIdentityNotFound
}

func (s *Store) ClearByAccessToken(ctx context.Context, accessToken string) (*identity.Identity, error) {
	if accessToken == "" {
		return nil, identity.ErrIdentityNotFound
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	for _, ident := range s.identities {
		if ident.Session.AccessToken == accessToken {
			prior := *ident
			ident.Session.Clear()
			return &prior, nil
		}
	}
	return nil, identity.ErrIdentityNotFound
}
