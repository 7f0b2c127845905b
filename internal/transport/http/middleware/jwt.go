package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/identity"
	"tasktrack/internal/pkg/jwtutil"
	"tasktrack/internal/transport/http/response"
	"tasktrack/internal/transport/http/session"
)

const ContextIdentityKey = "identity"

// RevocationChecker reports tokens revoked before their expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthOptions struct {
	Tokens    *jwtutil.Manager
	Transport *session.Transport
	// Revocations is nil unless logout revocation is enabled.
	Revocations RevocationChecker
	Logger      *slog.Logger
}

// AuthJWT lets a request through only with a verified identity attached.
// Every failure gets the same 401 body; the reason is only logged.
func AuthJWT(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := opts.Transport.Extract(c.Request)
		if !ok {
			reject(c, opts.Logger, "missing_token")
			return
		}

		claims, err := opts.Tokens.Verify(token)
		if err != nil {
			reject(c, opts.Logger, verifyFailureReason(err))
			return
		}

		if opts.Revocations != nil {
			revoked, err := opts.Revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				opts.Logger.ErrorContext(c.Request.Context(), "revocation lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(c.Request.Context())),
				)
				reject(c, opts.Logger, "revocation_unavailable")
				return
			}
			if revoked {
				reject(c, opts.Logger, "revoked")
				return
			}
		}

		id := identity.Identity{
			ID:        claims.UserID,
			Username:  claims.Username,
			FirstName: claims.FirstName,
		}
		c.Set(ContextIdentityKey, id)
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthJWT.
func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	if v, exists := c.Get(ContextIdentityKey); exists {
		if id, ok := v.(identity.Identity); ok && id.ID != 0 {
			return id, true
		}
	}
	return identity.FromContext(c.Request.Context())
}

func reject(c *gin.Context, logger *slog.Logger, reason string) {
	logger.WarnContext(c.Request.Context(), "authentication failed",
		slog.String("reason", reason),
		slog.String("ip", c.ClientIP()),
		slog.String("endpoint", c.Request.Method+" "+c.Request.URL.Path),
		slog.String("request_id", GetRequestID(c.Request.Context())),
	)
	response.Abort(c, http.StatusUnauthorized, response.MsgUnauthenticated)
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, jwtutil.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwtutil.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwtutil.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
