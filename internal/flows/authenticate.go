package flows

import (
	"context"
	"errors"

	"github.com/veloraweb/authcore/token"
)

// AuthFailureKind classifies authentication failures for root-level
// mapping onto the error taxonomy.
type AuthFailureKind int

const (
	AuthFailureNone AuthFailureKind = iota
	AuthFailureNoToken
	AuthFailureDecode
	AuthFailureExpired
	AuthFailureNoSubject
	AuthFailureLookup
	AuthFailureUserNotFound
	AuthFailureInactive
)

// AuthResult carries either the resolved user or a classified failure.
// User is typed as any so the flow stays independent of the root
// package's record type; the engine owns the concrete type.
type AuthResult struct {
	Failure AuthFailureKind
	Err     error
	Claims  *token.Claims
	User    any
}

// AuthDeps captures the authentication chain dependencies.
type AuthDeps struct {
	ParseToken func(string) (*token.Claims, error)
	// LookupUser returns (nil, nil) for no match; error means the lookup
	// itself failed and must be surfaced as a distinct failure.
	LookupUser func(context.Context, string) (any, bool, error)
	IsActive   func(any) bool
}

// RunAuthenticate executes the ordered authentication chain. The order is
// a contract: each stage short-circuits at its own failure so no later
// stage leaks information about an earlier one (a forbidden check, for
// example, is never reached on an invalid token).
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthDeps) AuthResult {
	if tokenStr == "" {
		return AuthResult{Failure: AuthFailureNoToken}
	}

	claims, err := deps.ParseToken(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return AuthResult{Failure: AuthFailureExpired, Err: err}
		}
		return AuthResult{Failure: AuthFailureDecode, Err: err}
	}

	if claims.Subject == "" {
		return AuthResult{Failure: AuthFailureNoSubject}
	}

	user, found, err := deps.LookupUser(ctx, claims.Subject)
	if err != nil {
		return AuthResult{Failure: AuthFailureLookup, Err: err, Claims: claims}
	}
	if !found {
		return AuthResult{Failure: AuthFailureUserNotFound, Claims: claims}
	}

	if !deps.IsActive(user) {
		return AuthResult{Failure: AuthFailureInactive, Claims: claims, User: user}
	}

	return AuthResult{Claims: claims, User: user}
}
