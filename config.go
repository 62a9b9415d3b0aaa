package authcore

import (
	"errors"
	"strings"
	"time"

	"github.com/veloraweb/authcore/session"
)

// JWTConfig holds the signing parameters for access tokens.
type JWTConfig struct {
	// Secret is the HS256 signing key, loaded once at process start.
	Secret []byte
	Issuer string
	// Leeway tolerated when validating exp/iat. At most two minutes.
	Leeway time.Duration
}

// SessionConfig holds the cookie transport contract and the refresh
// policy window.
type SessionConfig struct {
	CookieName string
	// RefreshThreshold is the window before expiry within which
	// ValidateSession replaces the token.
	RefreshThreshold time.Duration
	// CookieSecure marks issued cookies Secure; disable only for local
	// plain-HTTP development.
	CookieSecure bool
}

// PasswordConfig holds the bcrypt cost. Zero selects the library default.
type PasswordConfig struct {
	Cost int
}

// MetricsConfig toggles Prometheus collectors.
type MetricsConfig struct {
	Enabled bool
}

// Config is the immutable engine configuration. Construct with
// [DefaultConfig] and override fields before [Builder.Build]; the engine
// keeps its own clone and never reads ambient global state.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Metrics  MetricsConfig
}

// DefaultConfig returns the reference configuration: midnight-expiry
// tokens, the access_token cookie, a two-hour refresh window.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer: "authcore",
			Leeway: 30 * time.Second,
		},
		Session: SessionConfig{
			CookieName:       session.DefaultCookieName,
			RefreshThreshold: session.DefaultRefreshThreshold,
			CookieSecure:     true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT.Secret is required")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway must be between 0 and 2m")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session.CookieName is required")
	}
	if c.Session.RefreshThreshold <= 0 {
		return errors.New("Session.RefreshThreshold must be positive")
	}
	if c.Session.RefreshThreshold >= 24*time.Hour {
		return errors.New("Session.RefreshThreshold must be shorter than a day")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.JWT.Secret = cloneBytes(c.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
