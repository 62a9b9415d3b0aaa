package flows

import (
	"time"

	"github.com/veloraweb/authcore/session"
	"github.com/veloraweb/authcore/token"
)

// RefreshOutcome describes what the refresh coordinator decided for the
// presented token. Refresh failures never become request-level errors;
// the worst outcome is "no refresh performed".
type RefreshOutcome struct {
	Refreshed bool
	NewToken  string
	ExpiresAt time.Time
	Err       error
}

// RefreshDeps captures the refresh decision dependencies.
type RefreshDeps struct {
	ParseToken       func(string) (*token.Claims, error)
	IssueToken       func(subject string) (string, time.Time, error)
	Now              func() time.Time
	RefreshThreshold time.Duration
}

// RunRefresh decides whether the presented token is a refresh candidate
// and mints the replacement when it is. An absent, undecodable, or
// already expired token yields no refresh: refresh only extends a valid
// credential, it never repairs an invalid one.
func RunRefresh(tokenStr string, deps RefreshDeps) RefreshOutcome {
	if tokenStr == "" {
		return RefreshOutcome{}
	}

	claims, err := deps.ParseToken(tokenStr)
	if err != nil {
		return RefreshOutcome{}
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return RefreshOutcome{}
	}

	expiresAt := claims.ExpiresAt.Time
	if !session.NeedsRefresh(expiresAt, deps.Now(), deps.RefreshThreshold) {
		return RefreshOutcome{ExpiresAt: expiresAt}
	}

	newToken, newExpiry, err := deps.IssueToken(claims.Subject)
	if err != nil {
		// Minting failed; the current token is still valid, so report no
		// change rather than failing the request.
		return RefreshOutcome{ExpiresAt: expiresAt, Err: err}
	}

	return RefreshOutcome{
		Refreshed: true,
		NewToken:  newToken,
		ExpiresAt: newExpiry,
	}
}
