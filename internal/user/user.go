package user

import (
	"errors"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

type User struct {
	ID               int64                     `json:"id"`
	Email            string                    `json:"email"`
	PasswordHash     string                    `json:"-"`
	FirstName        string                    `json:"first_name"`
	LastName         string                    `json:"last_name"`
	Role             coreuser.Role             `json:"role"`
	OrganizationName string                    `json:"organization_name,omitempty"`
	OrganizationType coreuser.OrganizationType `json:"organization_type,omitempty"`
	Phone            string                    `json:"phone,omitempty"`
	Address          string                    `json:"address,omitempty"`
	IsActive         bool                      `json:"is_active"`
	Permissions      []coreuser.Permission     `json:"permissions"`
	LastLoginAt      *time.Time                `json:"last_login_at,omitempty"`
	LoginCount       int                       `json:"login_count"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             string(u.Role),
		OrganizationName: u.OrganizationName,
		OrganizationType: string(u.OrganizationType),
		Phone:            u.Phone,
		Address:          u.Address,
		IsActive:         u.IsActive,
		LastLoginAt:      u.LastLoginAt,
		LoginCount:       u.LoginCount,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             coreuser.Role(u.Role),
		OrganizationName: u.OrganizationName,
		OrganizationType: coreuser.OrganizationType(u.OrganizationType),
		Phone:            u.Phone,
		Address:          u.Address,
		IsActive:         u.IsActive,
		LastLoginAt:      u.LastLoginAt,
		LoginCount:       u.LoginCount,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
		Permissions:      []coreuser.Permission{},
	}
}

func FromDataModelWithPermissions(u *userDatamodel.User, permissions []string) *User {
	domainUser := FromDataModel(u)
	domainUser.Permissions = coreuser.ParsePermissions(permissions)
	return domainUser
}
