package authcore

import (
	"context"
	"time"
)

// Role is the coarse privilege level attached to a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserRecord is the account row as read from the user store. The core
// treats it as an immutable lookup result for the duration of one
// request; creation and mutation happen entirely outside this package.
type UserRecord struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// IsAdmin reports whether the record carries the admin role.
func (u *UserRecord) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the client-safe projection of a UserRecord returned by
// login and session validation.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// Summary projects a record for client consumption.
func (u *UserRecord) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		IsActive: u.Active,
	}
}

// LoginResult is returned by [Engine.Login] on success.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserSummary
}

// AuthCheck is the non-erroring probe result from [Engine.CheckAuth].
type AuthCheck struct {
	Authenticated bool
	ExpiresAt     *time.Time
}

// SessionValidation is returned by [Engine.ValidateSession]. When
// TokenRefreshed is set, NewToken and ExpiresAt describe the replacement
// the caller should write back into the cookie transport; the old token
// remains independently valid until its original expiry.
type SessionValidation struct {
	Valid          bool
	TokenRefreshed bool
	NewToken       string
	ExpiresAt      time.Time
	User           *UserSummary
}

// UserStore is the single collaborator contract the core consumes from
// the storage layer. GetByEmail returns (nil, nil) when no user matches;
// an error strictly means the lookup itself failed.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}
