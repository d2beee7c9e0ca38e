package identity

import "time"

// Session is the stored credential triple for one Identity.
//
// AccessToken and ExpiryDate are set and cleared together. RefreshToken
// survives access-token renewals and is cleared only by logout.
type Session struct {
	AccessToken  string    `json:"accessToken,omitempty" bson:"access_token,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty" bson:"refresh_token,omitempty"`
	ExpiryDate   time.Time `json:"expiryDate,omitempty" bson:"expiry_date,omitempty"`
}

// Active reports whether the session holds an access token that is still
// valid at the given instant.
func (s Session) Active(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiryDate)
}

// Clear resets all three credential fields to absent.
func (s *Session) Clear() {
	*s = Session{}
}
