package appctx

import "context"

// UserContext holds the authenticated caller's identity.
// Identity issuance lives outside this service; only verified claims end up here.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type userKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the authenticated user from the context, or nil.
func GetUser(ctx context.Context) *UserContext {
	if u, ok := ctx.Value(userKey{}).(*UserContext); ok {
		return u
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or "" when unauthenticated.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}
