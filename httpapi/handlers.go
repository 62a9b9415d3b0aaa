// Package httpapi exposes the session engine over HTTP with the wire
// shapes browser clients expect: an OAuth2-style password form for
// login, the access_token cookie for transport, and JSON bodies
// everywhere else.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	authcore "github.com/veloraweb/authcore"
	"github.com/veloraweb/authcore/middleware"
	"github.com/veloraweb/authcore/session"
)

// LoginRecorder is implemented by stores that track the last successful
// login. Recording is best effort; a failure never fails the login.
type LoginRecorder interface {
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// Handler serves the authentication endpoints.
type Handler struct {
	engine   *authcore.Engine
	logger   *zap.Logger
	recorder LoginRecorder
}

// NewHandler builds a Handler. logger and recorder may be nil.
func NewHandler(engine *authcore.Engine, logger *zap.Logger, recorder LoginRecorder) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger, recorder: recorder}
}

// Register mounts the authentication routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	guard := middleware.Guard(h.engine)

	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", guard(http.HandlerFunc(h.Me)))
	mux.HandleFunc("GET /api/auth/check-auth", h.CheckAuth)
	mux.HandleFunc("GET /api/auth/validate-session", h.ValidateSession)
}

type loginResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresAt   time.Time            `json:"expires_at"`
	User        authcore.UserSummary `json:"user"`
}

// Login accepts the password grant as either an OAuth2 form (username
// carries the email) or a JSON body. On success the token is returned in
// the body and mirrored into the session cookie for browser clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email, secret, ok := h.credentials(r)
	if !ok {
		h.loginRejected(w)
		return
	}

	result, err := h.engine.Login(r.Context(), email, secret)
	if errors.Is(err, authcore.ErrInvalidCredentials) {
		h.loginRejected(w)
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if h.recorder != nil {
		if rerr := h.recorder.TouchLastLogin(r.Context(), result.User.ID, time.Now().UTC()); rerr != nil {
			h.logger.Warn("failed to record last login", zap.Error(rerr))
		}
	}

	http.SetCookie(w, session.NewCookie(
		h.engine.CookieName(), result.Token, result.ExpiresAt, h.engine.CookieSecure()))

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

// loginRejected writes the uniform login failure. Unknown email, wrong
// password, and an unparseable request all get the same body so the
// endpoint cannot be used to probe which accounts exist.
func (h *Handler) loginRejected(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"detail": "incorrect email or password",
	})
}

func (h *Handler) credentials(r *http.Request) (email, secret string, ok bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", false
		}
		email = body.Email
		if email == "" {
			email = body.Username
		}
		return email, body.Password, email != "" && body.Password != ""
	}

	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	email = r.PostFormValue("username")
	secret = r.PostFormValue("password")
	return email, secret, email != "" && secret != ""
}

// Logout clears the session cookie. The token value itself stays valid
// until its natural expiry; a copy kept in an Authorization header keeps
// authenticating.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ExpiredCookie(h.engine.CookieName(), h.engine.CookieSecure()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// Me returns the authenticated user's client-safe profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, authcore.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user.Summary())
}

type checkAuthResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// CheckAuth reports the session status without ever returning an error
// status. UIs poll it to decide whether to show the login screen.
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	probe := h.engine.CheckAuth(r.Context(), r)
	writeJSON(w, http.StatusOK, checkAuthResponse{
		Authenticated: probe.Authenticated,
		ExpiresAt:     probe.ExpiresAt,
	})
}

type validateResponse struct {
	Valid          bool                  `json:"valid"`
	TokenRefreshed bool                  `json:"token_refreshed"`
	NewToken       string                `json:"new_token,omitempty"`
	ExpiresAt      *time.Time            `json:"expires_at,omitempty"`
	User           *authcore.UserSummary `json:"user,omitempty"`
}

// ValidateSession authenticates the request and opportunistically rolls
// the token forward when it is close to expiry. A refreshed token is
// both returned in the body and written back into the session cookie.
func (h *Handler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	sv, err := h.engine.ValidateSession(r.Context(), r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if sv.TokenRefreshed {
		http.SetCookie(w, session.NewCookie(
			h.engine.CookieName(), sv.NewToken, sv.ExpiresAt, h.engine.CookieSecure()))
	}

	resp := validateResponse{
		Valid:          sv.Valid,
		TokenRefreshed: sv.TokenRefreshed,
		NewToken:       sv.NewToken,
		User:           sv.User,
	}
	if !sv.ExpiresAt.IsZero() {
		resp.ExpiresAt = &sv.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
