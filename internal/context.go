package internal

import "context"

type ctxKey string

const ContextUserKey ctxKey = "user"

// Principal is the authenticated caller as seen by the service layer.
type Principal struct {
	ID          string
	Email       string
	Permissions []string
}

func UserFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextUserKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithUser(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextUserKey, p)
}

// PermissionsFromContext returns the caller permissions, or nil for anonymous requests.
func PermissionsFromContext(ctx context.Context) []string {
	if p, ok := UserFromContext(ctx); ok {
		return p.Permissions
	}
	return nil
}
