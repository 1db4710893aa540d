package auth

import (
	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

type PermissionChecker interface {
	Has(u *internal.User, permission coreuser.Permission) bool
	HasAny(u *internal.User, permissions ...coreuser.Permission) bool
	HasRole(u *internal.User, roles ...coreuser.Role) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) Has(u *internal.User, permission coreuser.Permission) bool {
	return u.HasPermission(permission)
}

func (c *DefaultPermissionChecker) HasAny(u *internal.User, permissions ...coreuser.Permission) bool {
	for _, p := range permissions {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

func (c *DefaultPermissionChecker) HasRole(u *internal.User, roles ...coreuser.Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
