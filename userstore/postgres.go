// Package userstore provides the storage implementations behind the
// engine's user lookup contract: a Postgres table and an optional Redis
// read-through cache layered in front of it.
package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	authcore "github.com/veloraweb/authcore"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	username      TEXT NOT NULL UNIQUE,
	full_name     TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_login    TIMESTAMPTZ
)`

const userColumns = `id, email, username, full_name, password_hash, role, is_active, created_at, last_login`

// Postgres stores user records in a single users table. It satisfies
// [authcore.UserStore]; writes exist for bootstrap and account
// administration and are not consulted by the session core.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the users table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

// GetByEmail returns (nil, nil) when no row matches. Any other failure is
// returned as an error so the caller can tell "no such user" from "the
// store is down".
func (p *Postgres) GetByEmail(ctx context.Context, email string) (*authcore.UserRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// NewUser is the insert payload for [Postgres.Create]. PasswordHash must
// already be hashed; this package never sees plaintext credentials.
type NewUser struct {
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         authcore.Role
	Active       bool
}

// Create inserts a user with a fresh UUID and returns the stored record.
func (p *Postgres) Create(ctx context.Context, nu NewUser) (*authcore.UserRecord, error) {
	if nu.Role == "" {
		nu.Role = authcore.RoleUser
	}

	user := &authcore.UserRecord{
		ID:           uuid.NewString(),
		Email:        nu.Email,
		Username:     nu.Username,
		FullName:     nu.FullName,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		Active:       nu.Active,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Email, user.Username, user.FullName, user.PasswordHash,
		string(user.Role), user.Active, user.CreatedAt, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Count returns the number of user rows. The server uses it to decide
// whether to bootstrap an initial admin account.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// TouchLastLogin records a successful login instant. Best effort from the
// caller's point of view; the session itself does not depend on it.
func (p *Postgres) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := p.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*authcore.UserRecord, error) {
	var (
		user      authcore.UserRecord
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.FullName,
		&user.PasswordHash, &role, &user.Active, &user.CreatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}
	user.Role = authcore.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}
