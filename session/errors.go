package session

import "errors"

// Caller-visible failures. Handlers map the not-found pair to HTTP 404 and
// treat them as "log in again"; the generic failures carry fixed messages so
// persistence detail never leaks past the logs.
var (
	// ErrUnknownRefreshToken: RefreshAccess was given a refresh token no
	// stored session matches.
	ErrUnknownRefreshToken = errors.New("user not found")

	// ErrUnknownAccessToken: Logout or Authenticate was given an access
	// token no stored session matches. For Logout, callers should treat
	// this as already-logged-out.
	ErrUnknownAccessToken = errors.New("user doesn't exist")

	ErrRefreshFailed = errors.New("failed to generate refresh token")
	ErrLogoutFailed  = errors.New("failed to logout")
)
