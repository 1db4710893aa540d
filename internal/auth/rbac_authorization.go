package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/frahmantamala/ewaste-management/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	checker PermissionChecker
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	if checker == nil {
		checker = NewPermissionChecker()
	}
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
	}
}

// Check wraps next so it only runs for actors holding permission.
func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission coreuser.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := internal.UserFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: user not found in context")
			ra.HandleServiceError(w, internal.ErrMissingToken)
			return
		}

		if !ra.checker.Has(user, permission) {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", user.ID,
				"role", user.Role,
				"required_permission", permission,
				"user_permissions", user.Permissions)
			ra.HandleServiceError(w, internal.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) RequirePermission(permission coreuser.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}

func (ra *RBACAuthorization) RequireManageItems() func(http.Handler) http.Handler {
	return ra.RequirePermission(coreuser.PermManageItems)
}

func (ra *RBACAuthorization) RequireManageBatches() func(http.Handler) http.Handler {
	return ra.RequirePermission(coreuser.PermManageBatches)
}

func (ra *RBACAuthorization) RequireSchedulePickups() func(http.Handler) http.Handler {
	return ra.RequirePermission(coreuser.PermSchedulePickups)
}

func (ra *RBACAuthorization) RequireManageUsers() func(http.Handler) http.Handler {
	return ra.RequirePermission(coreuser.PermManageUsers)
}
