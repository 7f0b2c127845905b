// Package session moves the session token between the HTTP response and
// later requests.
package session

import (
	"net/http"
	"strings"
	"time"
)

const bearerPrefix = "Bearer "

// Transport writes the token to an HttpOnly cookie whose lifetime matches
// the token's validity window.
type Transport struct {
	name   string
	maxAge time.Duration
	secure bool
}

func NewTransport(cookieName string, maxAge time.Duration, secure bool) *Transport {
	return &Transport{
		name:   cookieName,
		maxAge: maxAge,
		secure: secure,
	}
}

func (t *Transport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.maxAge / time.Second),
		Expires:  time.Now().Add(t.maxAge),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear tells the client to drop its copy of the token. A copy kept
// elsewhere stays valid until it expires.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Extract returns the token from the session cookie, falling back to an
// "Authorization: Bearer" header for non-browser clients.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	if cookie, err := r.Cookie(t.name); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value, true
		}
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(authHeader, bearerPrefix) {
		if value := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)); value != "" {
			return value, true
		}
	}
	return "", false
}
