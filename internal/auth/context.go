package auth

import (
	"context"

	"github.com/inkpress/inkpress/internal/model"
)

// contextKey keeps request-context keys private to this package.
type contextKey string

const contextKeyUserID contextKey = "userID"

// ContextWithUserID returns a new context carrying the caller's id.
func ContextWithUserID(ctx context.Context, id model.UserID) context.Context {
	return context.WithValue(ctx, contextKeyUserID, id)
}

// UserIDFromContext extracts the caller's id from the request context.
func UserIDFromContext(ctx context.Context) (model.UserID, bool) {
	id, ok := ctx.Value(contextKeyUserID).(model.UserID)
	return id, ok
}
