package http

import (
	"context"
	"errors"
)

type ctxKey int

const userIDKey ctxKey = iota

var ErrNoActor = errors.New("user_id is not provided in request context")

// WithUserID stores the authenticated actor on the request context.
func WithUserID(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts the user ID set by the auth middleware.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	id, ok := ctx.Value(userIDKey).(int32)
	if !ok || id == 0 {
		return 0, ErrNoActor
	}
	return id, nil
}
