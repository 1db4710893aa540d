package user

// Role is the coarse capability class of an account.
type Role string

const (
	RolePartner    Role = "partner"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var Roles = []Role{RolePartner, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role belongs to the back-office side.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Permission is a named capability granted to admin accounts.
type Permission string

const (
	PermManageBatches   Permission = "manage_batches"
	PermManageUsers     Permission = "manage_users"
	PermViewReports     Permission = "view_reports"
	PermManageItems     Permission = "manage_items"
	PermSchedulePickups Permission = "schedule_pickups"
	PermSystemAdmin     Permission = "system_admin"
)

var Permissions = []Permission{
	PermManageBatches,
	PermManageUsers,
	PermViewReports,
	PermManageItems,
	PermSchedulePickups,
	PermSystemAdmin,
}

func (p Permission) Valid() bool {
	for _, v := range Permissions {
		if v == p {
			return true
		}
	}
	return false
}

// HasPermission is the single capability check used across the system.
// super_admin holds everything, admin holds what it was granted (or
// everything via system_admin), and every other role holds nothing.
func HasPermission(role Role, held []Permission, p Permission) bool {
	switch role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		for _, h := range held {
			if h == p || h == PermSystemAdmin {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ParsePermissions converts stored names, skipping unknown entries.
func ParsePermissions(names []string) []Permission {
	out := make([]Permission, 0, len(names))
	for _, n := range names {
		if p := Permission(n); p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

func PermissionNames(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// OrganizationType classifies partner organizations.
type OrganizationType string

const (
	OrgHospital   OrganizationType = "hospital"
	OrgCollege    OrganizationType = "college"
	OrgUniversity OrganizationType = "university"
	OrgCorporate  OrganizationType = "corporate"
	OrgGovernment OrganizationType = "government"
	OrgNonprofit  OrganizationType = "nonprofit"
	OrgOther      OrganizationType = "other"
)

var OrganizationTypes = []OrganizationType{
	OrgHospital, OrgCollege, OrgUniversity, OrgCorporate, OrgGovernment, OrgNonprofit, OrgOther,
}

func (o OrganizationType) Valid() bool {
	for _, v := range OrganizationTypes {
		if v == o {
			return true
		}
	}
	return false
}
