package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/auth"
	userDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"gorm.io/gorm"
)

// IdentityRepository implements auth.IdentityProvider over the users table.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Name() string { return internal.IdentityProviderDatabase }

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return r.withPermissions(ctx, &model)
}

func (r *IdentityRepository) FindByID(ctx context.Context, id int64) (*auth.Identity, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return r.withPermissions(ctx, &model)
}

func (r *IdentityRepository) withPermissions(ctx context.Context, model *userDatamodel.User) (*auth.Identity, error) {
	permQuery := `SELECT p.name
	             FROM permissions p
	             JOIN user_permissions up ON p.id = up.permission_id
	             WHERE up.user_id = ?
	             ORDER BY p.name`

	var names []string
	if err := r.db.WithContext(ctx).Raw(permQuery, model.ID).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	return &auth.Identity{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Role:         coreuser.Role(model.Role),
		Permissions:  coreuser.ParsePermissions(names),
		IsActive:     model.IsActive,
	}, nil
}

func (r *IdentityRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at": at,
			"login_count":   gorm.Expr("login_count + 1"),
		}).Error
}

func (r *IdentityRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
