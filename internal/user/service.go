package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	Update(ctx context.Context, u *User) error
}

// Authorizer decides who may administer other accounts.
type Authorizer interface {
	CanManageUsers(u *internal.User) bool
}

type Service struct {
	repo       Repository
	authz      Authorizer
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, authz Authorizer, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		authz:      authz,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an active partner or admin account. Admins start without
// permissions; a super admin grants them later.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if exists {
		return nil, internal.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	orgType := coreuser.OrganizationType(dto.OrganizationType)
	if orgType == "" {
		orgType = coreuser.OrgOther
	}

	u := &User{
		Email:            dto.Email,
		PasswordHash:     string(hash),
		FirstName:        dto.FirstName,
		LastName:         dto.LastName,
		Role:             coreuser.Role(dto.Role),
		OrganizationName: dto.OrganizationName,
		OrganizationType: orgType,
		Phone:            dto.Phone,
		Address:          dto.Address,
		IsActive:         true,
		Permissions:      []coreuser.Permission{},
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, internal.ErrEmailTaken
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to get user", fmt.Errorf("get user by id: %w", err))
	}

	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user permissions", err)
	}
	u.Permissions = coreuser.ParsePermissions(perms)

	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor *internal.User, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	dto.Apply(u)
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", u.ID)
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor *internal.User, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return internal.NewUnauthorizedError("Current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	u.PasswordHash = string(hash)

	if err := s.save(ctx, u); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", u.ID)
	return nil
}

// Deactivate disables an account. Existing tokens stop working on the next
// request because every request re-resolves the actor.
func (s *Service) Deactivate(ctx context.Context, actor *internal.User, userID int64) (*User, error) {
	if !s.authz.CanManageUsers(actor) {
		return nil, internal.ErrForbidden
	}
	if actor.ID == userID {
		return nil, internal.NewValidationError("You cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == coreuser.RoleSuperAdmin && actor.Role != coreuser.RoleSuperAdmin {
		return nil, internal.ErrForbidden
	}

	if !u.IsActive {
		return u, nil
	}

	u.IsActive = false
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user deactivated", "user_id", u.ID, "by", actor.ID)
	return u, nil
}

func (s *Service) save(ctx context.Context, u *User) error {
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("failed to update user", err)
	}
	return nil
}
