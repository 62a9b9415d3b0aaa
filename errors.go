package authcore

import "errors"

var (
	// ErrUnauthenticated means no credential was presented at all.
	ErrUnauthenticated = errors.New("no authentication token provided")
	// ErrInvalidCredentials covers a malformed or badly signed token, a
	// token without a subject, and a wrong email/password pair at login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired means the token verified but its expiry is in the
	// past. Kept distinct from ErrInvalidCredentials so clients can
	// re-login automatically only on expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound means the token's subject no longer resolves to a
	// user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrInactiveUser means the resolved user exists but is deactivated.
	ErrInactiveUser = errors.New("inactive user")
	// ErrForbidden means the user is authenticated but lacks the role the
	// handler requires.
	ErrForbidden = errors.New("not enough permissions")
	// ErrStoreUnavailable means the user lookup itself failed. Kept
	// distinct from ErrUserNotFound so a storage outage is not mistaken
	// for a wave of invalid logins.
	ErrStoreUnavailable = errors.New("user store unavailable")
)
