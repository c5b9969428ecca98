package context

import (
	"context"
)

// UserContext holds the authenticated operator for the current request.
type UserContext struct {
	UserID   string
	Username string
	Role     string
}

type userKey struct{}

// WithUser stores user info in context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns user info from context, or nil.
func GetUser(ctx context.Context) *UserContext {
	if u, ok := ctx.Value(userKey{}).(*UserContext); ok {
		return u
	}
	return nil
}

// Username returns the authenticated username or "system" when absent.
// Used to default the recorded-by field on ledger writes.
func Username(ctx context.Context) string {
	if u := GetUser(ctx); u != nil && u.Username != "" {
		return u.Username
	}
	return "system"
}
