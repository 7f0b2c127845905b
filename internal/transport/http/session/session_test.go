package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach(t *testing.T) {
	tr := NewTransport("jwt", 24*time.Hour, false)
	rec := httptest.NewRecorder()

	tr.Attach(rec, "token-value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "jwt", c.Name)
	assert.Equal(t, "token-value", c.Value)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "HttpOnly")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=86400")
}

func TestAttach_Secure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewTransport("jwt", time.Hour, true).Attach(rec, "v")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Secure")
}

func TestClear(t *testing.T) {
	tr := NewTransport("jwt", 24*time.Hour, false)
	rec := httptest.NewRecorder()

	tr.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestExtract(t *testing.T) {
	tr := NewTransport("jwt", time.Hour, false)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		want   string
		wantOK bool
	}{
		{"absent", func(*http.Request) {}, "", false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: "from-cookie"}) }, "from-cookie", true},
		{"empty cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: ""}) }, "", false},
		{"other cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: "x"}) }, "", false},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer from-header") }, "from-header", true},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, "", false},
		{"empty bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer   ") }, "", false},
		{"cookie wins", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "jwt", Value: "from-cookie"})
			r.Header.Set("Authorization", "Bearer from-header")
		}, "from-cookie", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)

			got, ok := tr.Extract(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := tr.Extract(nil)
	assert.False(t, ok)
}
