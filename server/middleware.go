package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/campushub/portal-auth/identity"
)

type contextKey string

const identityContextKey contextKey = "identity"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		}
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
			}
		}()
		next(w, r)
	}
}

// AuthMiddleware validates the bearer access token against both its
// signature and the stored session, and places the identity on the request
// context.
func (s *Server) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := bearerToken(r)
		if accessToken == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing access token")
			return
		}

		ident, err := s.sessions.Authenticate(r.Context(), accessToken)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, ident)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole gates a route on the authenticated identity's role. It must run
// after AuthMiddleware.
func RequireRole(roles ...identity.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromContext(r.Context())
			if ident == nil {
				writeJSONError(w, http.StatusUnauthorized, "missing access token")
				return
			}
			for _, role := range roles {
				if ident.Role == role {
					next(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "insufficient role")
		}
	}
}

// IdentityFromContext returns the identity placed on the context by
// AuthMiddleware, or nil.
func IdentityFromContext(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityContextKey).(*identity.Identity)
	return ident
}

// bearerToken extracts the access token from the Authorization header, or
// from the legacy Secret-Token header the portal clients send.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get("Secret-Token")
}
