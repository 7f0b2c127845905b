// Package jwtutil issues and verifies the signed, self-contained session
// tokens. Verification needs only the server secret; there is no session
// table.
package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Claims are the user fields embedded in a token. They are immutable once
// signed.
type Claims struct {
	UserID    uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	method *jwt.SigningMethodHMAC
	parser *jwt.Parser
}

type Option func(*Manager)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret []byte, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		method: jwt.SigningMethodHS256,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs the user fields of claims with a fresh issued-at, expiry and
// token id. Registered claims passed in are ignored.
func (m *Manager) Issue(claims Claims) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// Verify returns the embedded claims of a token signed by this manager that
// has not yet expired. The signature is checked before the payload is
// decoded, so any change to header, payload or signature bytes is reported
// as ErrTokenSignatureInvalid.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrTokenMalformed
	}
	sig, err := m.parser.DecodeSegment(parts[2])
	if err != nil || len(sig) == 0 {
		return nil, ErrTokenMalformed
	}
	if err := m.method.Verify(parts[0]+"."+parts[1], sig, m.secret); err != nil {
		return nil, ErrTokenSignatureInvalid
	}

	claims := &Claims{}
	_, err = m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if claims.UserID == 0 {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
