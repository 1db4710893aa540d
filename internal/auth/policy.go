package auth

import (
	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

// BatchPolicy is the access policy for batch operations. Role gates are
// checked before permission gates.
type BatchPolicy struct {
	checker PermissionChecker
}

func NewBatchPolicy(checker PermissionChecker) *BatchPolicy {
	if checker == nil {
		checker = NewPermissionChecker()
	}
	return &BatchPolicy{checker: checker}
}

func (p *BatchPolicy) CanCreateBatch(u *internal.User) bool {
	return u != nil && u.Role == coreuser.RolePartner
}

// CanViewBatch lets admins see every batch and partners only their own.
func (p *BatchPolicy) CanViewBatch(u *internal.User, ownerID int64) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.Role == coreuser.RolePartner && u.ID == ownerID
}

func (p *BatchPolicy) CanListAll(u *internal.User) bool {
	return u.IsAdmin()
}

func (p *BatchPolicy) CanAddItems(u *internal.User) bool {
	return u.IsAdmin() && p.checker.Has(u, coreuser.PermManageItems)
}

func (p *BatchPolicy) CanUpdateStatus(u *internal.User) bool {
	return u.IsAdmin() && p.checker.Has(u, coreuser.PermManageBatches)
}

func (p *BatchPolicy) CanSchedule(u *internal.User) bool {
	return u.IsAdmin() && p.checker.Has(u, coreuser.PermSchedulePickups)
}

func (p *BatchPolicy) CanDelete(u *internal.User) bool {
	return u != nil && u.Role == coreuser.RoleSuperAdmin
}

func (p *BatchPolicy) CanViewStats(u *internal.User) bool {
	return u.IsAdmin()
}

func (p *BatchPolicy) CanUseAutofill(u *internal.User) bool {
	return u.IsAdmin()
}

func (p *BatchPolicy) CanManageUsers(u *internal.User) bool {
	return p.checker.Has(u, coreuser.PermManageUsers)
}
