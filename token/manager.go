// Package token encodes and decodes the signed, time-bound claims that
// make up a bearer credential. It is a thin boundary over golang-jwt;
// nothing here touches storage or transport.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned by Parse for a structurally valid token whose
	// expiry lies in the past.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned by Parse for anything else that fails
	// verification: bad signature, wrong algorithm, truncated payload.
	ErrMalformed = errors.New("token malformed or signature invalid")
)

// Config is fixed at construction; the signing secret is loaded once at
// process start and never rotated in place.
type Config struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

// Claims is the payload embedded in every access token. Subject carries
// the user's email. LoginSession is an opaque mint-instant marker that
// keeps two tokens for the same subject byte-distinct; it carries no
// authorization meaning and is never validated.
type Claims struct {
	LoginSession string `json:"login_session,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access tokens with HS256.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token for subject with the given issue and expiry instants.
// The expiry is computed by the caller (session policy); Issue does not
// consult the clock beyond what it is handed.
func (m *Manager) Issue(subject string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		LoginSession: issuedAt.UTC().Format(time.RFC3339Nano),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt.UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
			Issuer:    m.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the embedded claims.
// Expiry and other verification failures are distinguishable via
// [ErrExpired] and [ErrMalformed] so callers can fail each at its own
// stage.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}
