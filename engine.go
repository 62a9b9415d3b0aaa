package authcore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/veloraweb/authcore/internal/flows"
	"github.com/veloraweb/authcore/password"
	"github.com/veloraweb/authcore/session"
	"github.com/veloraweb/authcore/token"
)

// Engine is the stateless session core. All fields are fixed at Build
// time; concurrent requests share it without coordination because token
// minting and verification touch no mutable state and the only external
// resource is the read-only user lookup.
type Engine struct {
	config       Config
	tokenManager *token.Manager
	passwordHash *password.Hasher
	userStore    UserStore
	metrics      *metrics
	logger       *zap.Logger
	now          func() time.Time
	sources      []TokenSource
}

// CookieName returns the configured transport cookie name.
func (e *Engine) CookieName() string {
	return e.config.Session.CookieName
}

// CookieSecure reports whether issued cookies carry the Secure flag.
func (e *Engine) CookieSecure() bool {
	return e.config.Session.CookieSecure
}

// Hasher exposes the credential hashing boundary for callers that create
// accounts (server bootstrap, fixtures).
func (e *Engine) Hasher() *password.Hasher {
	return e.passwordHash
}

// Login verifies an email/password pair and mints an access token
// expiring at the next UTC midnight. The failure message for an unknown
// email and a wrong password is identical so callers cannot probe which
// identities exist; only a deactivated account is reported as such.
func (e *Engine) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	if email == "" || secret == "" {
		e.metrics.loginOutcome(outcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	user, err := e.userStore.GetByEmail(ctx, email)
	if err != nil {
		e.metrics.loginOutcome(outcomeStoreUnavailable)
		e.logger.Warn("user lookup failed during login", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if user == nil {
		e.metrics.loginOutcome(outcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	if !e.passwordHash.Verify(secret, user.PasswordHash) {
		e.metrics.loginOutcome(outcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		e.metrics.loginOutcome(outcomeInactive)
		return nil, ErrInactiveUser
	}

	tok, expiresAt, err := e.issueToken(user.Email)
	if err != nil {
		e.metrics.loginOutcome(outcomeError)
		return nil, err
	}

	e.metrics.loginOutcome(outcomeSuccess)
	e.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", expiresAt),
	)

	return &LoginResult{
		Token:     tok,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	}, nil
}

// Authenticate locates a token on the request (header before cookie) and
// runs the full authentication chain. It is the precondition guard for
// every protected handler.
func (e *Engine) Authenticate(ctx context.Context, r *http.Request) (*UserRecord, error) {
	tok, _ := extractToken(r, e.sources)
	return e.AuthenticateToken(ctx, tok)
}

// AuthenticateToken runs the strictly ordered authentication chain on an
// already extracted token. Each stage short-circuits with its own error
// kind; the order itself is a contract and must not change.
func (e *Engine) AuthenticateToken(ctx context.Context, tokenStr string) (*UserRecord, error) {
	result := flows.RunAuthenticate(ctx, tokenStr, flows.AuthDeps{
		ParseToken: e.tokenManager.Parse,
		LookupUser: func(ctx context.Context, email string) (any, bool, error) {
			user, err := e.userStore.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, err
			}
			return user, user != nil, nil
		},
		IsActive: func(u any) bool {
			return u.(*UserRecord).Active
		},
	})

	switch result.Failure {
	case flows.AuthFailureNone:
		e.metrics.authnOutcome(outcomeSuccess)
		return result.User.(*UserRecord), nil
	case flows.AuthFailureNoToken:
		e.metrics.authnOutcome(outcomeNoToken)
		return nil, ErrUnauthenticated
	case flows.AuthFailureDecode, flows.AuthFailureNoSubject:
		e.metrics.authnOutcome(outcomeInvalid)
		return nil, ErrInvalidCredentials
	case flows.AuthFailureExpired:
		e.metrics.authnOutcome(outcomeExpired)
		return nil, ErrTokenExpired
	case flows.AuthFailureLookup:
		e.metrics.authnOutcome(outcomeStoreUnavailable)
		e.logger.Warn("user lookup failed during authentication", zap.Error(result.Err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, result.Err)
	case flows.AuthFailureUserNotFound:
		e.metrics.authnOutcome(outcomeUserNotFound)
		return nil, ErrUserNotFound
	case flows.AuthFailureInactive:
		e.metrics.authnOutcome(outcomeInactive)
		return nil, ErrInactiveUser
	default:
		return nil, ErrInvalidCredentials
	}
}

// AuthenticateAdmin authenticates and then requires the admin role. The
// role check runs only after the token and user standing verified, so a
// Forbidden answer already implies a valid session.
func (e *Engine) AuthenticateAdmin(ctx context.Context, r *http.Request) (*UserRecord, error) {
	user, err := e.Authenticate(ctx, r)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		e.metrics.authnOutcome(outcomeForbidden)
		return nil, ErrForbidden
	}
	return user, nil
}

// CheckAuth is the non-erroring probe for UIs that want the session
// status without triggering a login redirect. Any failure collapses to
// "not authenticated".
func (e *Engine) CheckAuth(ctx context.Context, r *http.Request) AuthCheck {
	tok, ok := extractToken(r, e.sources)
	if !ok {
		return AuthCheck{}
	}

	if _, err := e.AuthenticateToken(ctx, tok); err != nil {
		return AuthCheck{}
	}

	claims, err := e.tokenManager.Parse(tok)
	if err != nil || claims.ExpiresAt == nil {
		return AuthCheck{Authenticated: true}
	}
	expires := claims.ExpiresAt.Time
	return AuthCheck{Authenticated: true, ExpiresAt: &expires}
}

// ValidateSession authenticates the request and, when the presented
// token is inside the refresh window, mints a replacement with a fresh
// midnight expiry for the caller to write back into the cookie. Refresh
// is best-effort: a token that fails to decode or is already expired is
// simply not refreshed, never repaired, and the old token stays valid
// until its own expiry.
func (e *Engine) ValidateSession(ctx context.Context, r *http.Request) (*SessionValidation, error) {
	user, err := e.Authenticate(ctx, r)
	if err != nil {
		return nil, err
	}

	summary := user.Summary()
	tok, ok := extractToken(r, e.sources)
	if !ok {
		// Authenticated by some other presented credential; nothing to
		// refresh.
		e.metrics.refreshOutcome(outcomeSkipped)
		return &SessionValidation{Valid: true, User: &summary}, nil
	}

	outcome := flows.RunRefresh(tok, flows.RefreshDeps{
		ParseToken:       e.tokenManager.Parse,
		IssueToken:       e.issueToken,
		Now:              e.now,
		RefreshThreshold: e.config.Session.RefreshThreshold,
	})
	if outcome.Err != nil {
		e.logger.Warn("token refresh failed, keeping current token", zap.Error(outcome.Err))
	}

	if !outcome.Refreshed {
		e.metrics.refreshOutcome(outcomeNotNeeded)
		return &SessionValidation{
			Valid:     true,
			ExpiresAt: outcome.ExpiresAt,
			User:      &summary,
		}, nil
	}

	e.metrics.refreshOutcome(outcomeRefreshed)
	e.logger.Info("session token refreshed",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", outcome.ExpiresAt),
	)

	return &SessionValidation{
		Valid:          true,
		TokenRefreshed: true,
		NewToken:       outcome.NewToken,
		ExpiresAt:      outcome.ExpiresAt,
		User:           &summary,
	}, nil
}

// issueToken mints a token for subject expiring at the next UTC midnight.
// Pure apart from the clock read; it neither sets cookies nor touches
// storage, which is the calling handler's job.
func (e *Engine) issueToken(subject string) (string, time.Time, error) {
	now := e.now()
	expiresAt := session.MidnightExpiry(now)
	tok, err := e.tokenManager.Issue(subject, now, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, expiresAt, nil
}
