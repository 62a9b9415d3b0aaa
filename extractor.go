package authcore

import (
	"net/http"
	"strings"
)

// TokenSource locates a candidate token within one transport channel of
// an incoming request. Sources only retrieve; they never validate.
type TokenSource interface {
	Token(r *http.Request) (string, bool)
}

// HeaderTokenSource reads an "Authorization: Bearer <token>" header.
type HeaderTokenSource struct{}

func (HeaderTokenSource) Token(r *http.Request) (string, bool) {
	const bearer = "Bearer "
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	tok := strings.TrimSpace(value[len(bearer):])
	if tok == "" {
		return "", false
	}
	return tok, true
}

// CookieTokenSource reads a named cookie.
type CookieTokenSource struct {
	Name string
}

func (s CookieTokenSource) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.Name)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return cookie.Value, true
}

// defaultSources returns the extraction order contract: header first,
// then cookie. A request carrying both is authenticated via the header.
func defaultSources(cookieName string) []TokenSource {
	return []TokenSource{
		HeaderTokenSource{},
		CookieTokenSource{Name: cookieName},
	}
}

func extractToken(r *http.Request, sources []TokenSource) (string, bool) {
	for _, src := range sources {
		if tok, ok := src.Token(r); ok {
			return tok, true
		}
	}
	return "", false
}
