// Package identity carries the authenticated user through a request.
package identity

import "context"

// Identity is resolved from a verified token and lives only as long as the
// request that carried it.
type Identity struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext reports false when no verified identity was attached, or the
// attached one has no user id.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.ID == 0 {
		return Identity{}, false
	}
	return id, true
}
