package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/campushub/portal-auth/credentials"
	"github.com/campushub/portal-auth/session"
)

const contentTypeJSON = "application/json; charset=utf-8"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// grantResponse is the credential bundle the portal clients consume.
// ExpiresIn and ExpiryDate are in milliseconds / epoch milliseconds.
type grantResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	ExpiresIn    int64  `json:"expiresIn"`
	ExpiryDate   int64  `json:"expiryDate"`
	Message      string `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newGrantResponse(grant *session.Grant, message string) grantResponse {
	return grantResponse{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ID:           grant.IdentityID,
		Username:     grant.Username,
		Name:         grant.Name,
		Role:         string(grant.Role),
		ExpiresIn:    grant.ExpiresIn.Milliseconds(),
		ExpiryDate:   grant.ExpiryDate.UnixMilli(),
		Message:      message,
	}
}

// LoginHandler processes a credential login and returns the full credential
// bundle. Bad credentials surface as 404 with the verifier's reason.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		grant, err := s.sessions.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			var authErr *credentials.AuthenticationError
			if errors.As(err, &authErr) {
				writeJSONError(w, http.StatusNotFound, authErr.Reason)
				return
			}
			log.Error().Err(err).Msg("login failed")
			writeJSONError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}

		writeJSON(w, http.StatusOK, newGrantResponse(grant, "Logged in Successfully"))
	}
}

// RefreshHandler exchanges a refresh token for a valid access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		grant, err := s.sessions.RefreshAccess(r.Context(), req.RefreshToken)
		if err != nil {
			if errors.Is(err, session.ErrUnknownRefreshToken) {
				writeJSONError(w, http.StatusNotFound, err.Error())
				return
			}
			log.Error().Err(err).Msg("refresh failed")
			writeJSONError(w, http.StatusInternalServerError, session.ErrRefreshFailed.Error())
			return
		}

		writeJSON(w, http.StatusOK, newGrantResponse(grant, ""))
	}
}

// LogoutHandler clears the session matching the supplied access token. An
// already-cleared token yields 404, which clients treat as logged out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := bearerToken(r)
		if accessToken == "" {
			writeJSONError(w, http.StatusBadRequest, "missing access token")
			return
		}

		if err := s.sessions.Logout(r.Context(), accessToken); err != nil {
			if errors.Is(err, session.ErrUnknownAccessToken) {
				writeJSONError(w, http.StatusNotFound, err.Error())
				return
			}
			log.Error().Err(err).Msg("logout failed")
			writeJSONError(w, http.StatusInternalServerError, session.ErrLogoutFailed.Error())
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "User Logged Out!"})
	}
}

// MeHandler returns the authenticated identity's summary fields.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromContext(r.Context())
		if ident == nil {
			writeJSONError(w, http.StatusUnauthorized, "missing access token")
			return
		}
		writeJSON(w, http.StatusOK, ident)
	}
}

// PingHandler is a minimal role-gated probe for staff tooling.
func (s *Server) PingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Message: "pong"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
