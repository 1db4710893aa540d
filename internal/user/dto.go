package user

import (
	"strings"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/core/common/validation"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

const minPasswordLength = 6

// RegisterDTO is the self-registration payload. Only partner and admin
// accounts can be created this way.
type RegisterDTO struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             string `json:"role"`
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
}

var registrableRoles = []string{string(coreuser.RolePartner), string(coreuser.RoleAdmin)}

// Normalize trims every field and lowercases the email.
func (dto RegisterDTO) Normalize() RegisterDTO {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Role = strings.TrimSpace(dto.Role)
	dto.OrganizationName = strings.TrimSpace(dto.OrganizationName)
	dto.OrganizationType = strings.TrimSpace(dto.OrganizationType)
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.Address = strings.TrimSpace(dto.Address)
	return dto
}

func (dto RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email().MaxLength(255)
	v.Field("password", dto.Password).Required().Custom(passwordStrength("password"))
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).Required().MaxLength(100)
	v.Field("role", dto.Role).Required().OneOf(registrableRoles, internal.ErrCodeInvalidRole)
	v.Field("organization_name", dto.OrganizationName).MaxLength(200)
	v.Field("organization_type", dto.OrganizationType).OneOf(orgTypeNames(), internal.ErrCodeInvalidOrgType)
	v.Field("phone", dto.Phone).MaxLength(30)
	v.Field("address", dto.Address).MaxLength(500)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateProfileDTO carries optional profile changes. Nil fields are left
// untouched; names cannot be blanked.
type UpdateProfileDTO struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	OrganizationName *string `json:"organization_name"`
	OrganizationType *string `json:"organization_type"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
}

func (dto UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FirstName != nil {
		v.Field("first_name", dto.FirstName).Required()
		v.Field("first_name", *dto.FirstName).MaxLength(100)
	}
	if dto.LastName != nil {
		v.Field("last_name", dto.LastName).Required()
		v.Field("last_name", *dto.LastName).MaxLength(100)
	}
	if dto.OrganizationName != nil {
		v.Field("organization_name", *dto.OrganizationName).MaxLength(200)
	}
	if dto.OrganizationType != nil {
		v.Field("organization_type", strings.TrimSpace(*dto.OrganizationType)).OneOf(orgTypeNames(), internal.ErrCodeInvalidOrgType)
	}
	if dto.Phone != nil {
		v.Field("phone", *dto.Phone).MaxLength(30)
	}
	if dto.Address != nil {
		v.Field("address", *dto.Address).MaxLength(500)
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Apply copies the provided fields onto u.
func (dto UpdateProfileDTO) Apply(u *User) {
	if dto.FirstName != nil {
		u.FirstName = strings.TrimSpace(*dto.FirstName)
	}
	if dto.LastName != nil {
		u.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.OrganizationName != nil {
		u.OrganizationName = strings.TrimSpace(*dto.OrganizationName)
	}
	if dto.OrganizationType != nil {
		u.OrganizationType = coreuser.OrganizationType(strings.TrimSpace(*dto.OrganizationType))
	}
	if dto.Phone != nil {
		u.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Address != nil {
		u.Address = strings.TrimSpace(*dto.Address)
	}
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (dto ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("current_password", dto.CurrentPassword).Required()
	v.Field("new_password", dto.NewPassword).Required().Custom(passwordStrength("new_password"))

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func passwordStrength(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if s, ok := value.(string); ok && len([]rune(s)) < minPasswordLength {
			return internal.NewValidationFieldError(field, "password must be at least 6 characters", internal.ErrCodeWeakPassword)
		}
		return nil
	}
}

func orgTypeNames() []string {
	names := make([]string, len(coreuser.OrganizationTypes))
	for i, t := range coreuser.OrganizationTypes {
		names[i] = string(t)
	}
	return names
}
