package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/identity"
	"tasktrack/internal/logging"
	"tasktrack/internal/pkg/jwtutil"
	"tasktrack/internal/transport/http/session"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

func newAuthRouter(t *testing.T, revocations RevocationChecker) (*gin.Engine, *jwtutil.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := jwtutil.NewManager([]byte("middleware-secret"), time.Hour)
	router := gin.New()
	router.Use(RequestLogger(logging.Discard()))
	router.GET("/whoami", AuthJWT(AuthOptions{
		Tokens:      tokens,
		Transport:   session.NewTransport("jwt", time.Hour, false),
		Revocations: revocations,
		Logger:      logging.Discard(),
	}), func(c *gin.Context) {
		fromGin, ok := IdentityFrom(c)
		require.True(t, ok)
		fromCtx, ok := identity.FromContext(c.Request.Context())
		require.True(t, ok)
		require.Equal(t, fromGin, fromCtx)
		c.JSON(http.StatusOK, gin.H{"id": fromGin.ID, "username": fromGin.Username, "first_name": fromGin.FirstName})
	})
	return router, tokens
}

func issue(t *testing.T, tokens *jwtutil.Manager) string {
	t.Helper()
	token, err := tokens.Issue(jwtutil.Claims{UserID: 3, Username: "alice", FirstName: "Alice"})
	require.NoError(t, err)
	return token
}

func TestAuthJWT_TokenSources(t *testing.T) {
	router, tokens := newAuthRouter(t, nil)
	token := issue(t, tokens)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: token}) }},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{"cookie wins over bad bearer", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "jwt", Value: token})
			r.Header.Set("Authorization", "Bearer garbage")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":3,"username":"alice","first_name":"Alice"}`, rec.Body.String())
		})
	}
}

func TestAuthJWT_Rejections(t *testing.T) {
	router, tokens := newAuthRouter(t, nil)
	token := issue(t, tokens)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"empty bearer", "Bearer "},
		{"malformed", "Bearer abc"},
		{"wrong scheme", "Basic " + token},
		{"truncated", "Bearer " + token[:len(token)-5]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthenticated"}`, rec.Body.String())
		})
	}
}

func TestAuthJWT_Revoked(t *testing.T) {
	revocations := stubRevocations{revoked: map[string]bool{}}
	router, tokens := newAuthRouter(t, revocations)
	token := issue(t, tokens)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	revocations.revoked[claims.ID] = true

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthenticated"}`, rec.Body.String())
}

func TestAuthJWT_DenylistUnavailable(t *testing.T) {
	router, tokens := newAuthRouter(t, stubRevocations{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotRevoked(t *testing.T) {
	router, tokens := newAuthRouter(t, stubRevocations{revoked: map[string]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyFailureReason(t *testing.T) {
	assert.Equal(t, "expired", verifyFailureReason(jwtutil.ErrTokenExpired))
	assert.Equal(t, "bad_signature", verifyFailureReason(jwtutil.ErrTokenSignatureInvalid))
	assert.Equal(t, "malformed", verifyFailureReason(jwtutil.ErrTokenMalformed))
	assert.Equal(t, "invalid", verifyFailureReason(errors.New("other")))
}

func TestRequestLogger_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logging.Discard()))
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", rec.Body.String())
	assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
}
