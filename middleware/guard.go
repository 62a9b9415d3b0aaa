package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	authcore "github.com/veloraweb/authcore"
)

type userContextKey struct{}

// UserFromContext retrieves the authenticated user placed by [Guard] or
// [AdminGuard].
func UserFromContext(ctx context.Context) (*authcore.UserRecord, bool) {
	user, ok := ctx.Value(userContextKey{}).(*authcore.UserRecord)
	return user, ok
}

// Guard authenticates each request and injects the user into the request
// context. Failures are written with the status mapping from
// [StatusForError] and the handler chain stops.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return guard(engine, false)
}

// AdminGuard is Guard plus the admin role requirement.
func AdminGuard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return guard(engine, true)
}

func guard(engine *authcore.Engine, requireAdmin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, `{"detail":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			var (
				user *authcore.UserRecord
				err  error
			)
			if requireAdmin {
				user, err = engine.AuthenticateAdmin(r.Context(), r)
			} else {
				user, err = engine.Authenticate(r.Context(), r)
			}
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StatusForError maps the engine's error taxonomy onto HTTP statuses.
// Expired and malformed tokens stay distinguishable in the body so API
// clients can auto-retry login only on expiry.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, authcore.ErrUnauthenticated),
		errors.Is(err, authcore.ErrInvalidCredentials),
		errors.Is(err, authcore.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, authcore.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, authcore.ErrInactiveUser):
		return http.StatusBadRequest
	case errors.Is(err, authcore.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, authcore.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the taxonomy error as a JSON problem body with the
// matching status and a WWW-Authenticate challenge on 401s.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": publicMessage(err, status)})
}

// publicMessage strips wrapped upstream detail; clients only see the
// taxonomy kind.
func publicMessage(err error, status int) string {
	for _, sentinel := range []error{
		authcore.ErrUnauthenticated,
		authcore.ErrInvalidCredentials,
		authcore.ErrTokenExpired,
		authcore.ErrUserNotFound,
		authcore.ErrInactiveUser,
		authcore.ErrForbidden,
		authcore.ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
