package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

// RequireRoles creates a middleware that only admits actors holding one of roles
func RequireRoles(roles ...coreuser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrMissingToken)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.Warn("Access denied: user lacks required role",
				"user_id", user.ID,
				"required_roles", roles,
				"user_role", user.Role)
			writeAppError(w, internal.ErrForbidden)
		})
	}
}

// RequireAdmin admits admin and super_admin actors.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRoles(coreuser.RoleAdmin, coreuser.RoleSuperAdmin)
}

func writeAppError(w http.ResponseWriter, err *internal.AppError) {
	status, body := err.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
