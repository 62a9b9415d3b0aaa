package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie that carries the access token for
// browser clients.
const DefaultCookieName = "access_token"

// NewCookie builds the access-token cookie. The cookie's Expires matches
// the token's own expiry so the browser discards it no later than the
// token stops validating.
func NewCookie(name, token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that instructs the browser to drop the
// access token. Clearing the cookie does not invalidate the token value
// itself; a copy presented via the Authorization header keeps working
// until its natural expiry.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
