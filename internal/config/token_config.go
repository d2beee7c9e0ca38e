package config

import (
	"os"
	"time"
)

type TokenConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenSecret() string {
	return GetEnv("SECRET", "")
}

func (Tokens) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_SECRET", "")
}

// GetAccessTokenTTL defaults to a day, which is what the portal clients
// expect.
func (Tokens) GetAccessTokenTTL() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL", 24*time.Hour)
}

// GetRefreshTokenTTL defaults to zero: refresh tokens stay valid until
// logout. Setting REFRESH_TOKEN_TTL opts in to bounding their lifetime.
func (Tokens) GetRefreshTokenTTL() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL", 0)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
