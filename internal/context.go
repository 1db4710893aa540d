package internal

import (
	"context"
	"time"

	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

type ctxKey string

const ContextUserKey ctxKey = "actor"

// User is the authenticated actor attached to a request. Everything below the
// transport layer trusts it as already verified.
type User struct {
	ID          int64
	Email       string
	Role        coreuser.Role
	Permissions []coreuser.Permission
}

func (u *User) HasPermission(p coreuser.Permission) bool {
	if u == nil {
		return false
	}
	return coreuser.HasPermission(u.Role, u.Permissions, p)
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
