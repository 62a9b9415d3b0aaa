package session

import "time"

// DefaultRefreshThreshold is the window before expiry within which a valid
// token becomes eligible for silent replacement.
const DefaultRefreshThreshold = 2 * time.Hour

// MidnightExpiry returns the start of the next UTC calendar day after now.
// Tokens always expire there rather than after a rolling TTL, forcing a
// daily re-login: a token minted at 23:59 UTC lives one minute.
func MidnightExpiry(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
}

// NeedsRefresh reports whether a token expiring at expiresAt should be
// replaced. Only soon-to-expire, still-valid tokens qualify; an already
// expired token must fail authentication instead of being refreshed.
func NeedsRefresh(expiresAt, now time.Time, threshold time.Duration) bool {
	remaining := expiresAt.Sub(now)
	return remaining > 0 && remaining < threshold
}
