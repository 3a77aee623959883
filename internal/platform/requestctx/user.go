// Package requestctx carries caller identity through a context.
package requestctx

import (
	"context"
	"strings"
)

type userKey struct{}

// WithUserID returns ctx carrying the acting user id. Blank ids leave ctx unchanged.
func WithUserID(ctx context.Context, userID string) context.Context {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the acting user id, or "" when none was set.
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(userKey{}).(string)
	return v
}
