// Package utils holds small helpers shared by the server and the client:
// request context values, HMAC hashing, JWT handling, JSON responses, ids
// and the resty client.
package utils

import "context"

type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey holds the id of the authenticated owner of a request.
var UserIDCtxKey = contextKey("userID")

// WithUserID returns a copy of ctx that carries userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// GetUserIDFromContext returns the owner stored by WithUserID. ok is false
// when the request was never authenticated.
func GetUserIDFromContext(ctx context.Context) (userID int64, ok bool) {
	userID, ok = ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
