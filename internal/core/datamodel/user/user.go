package user

import "time"

type User struct {
	ID               int64      `gorm:"primaryKey"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	FirstName        string     `gorm:"column:first_name;not null"`
	LastName         string     `gorm:"column:last_name;not null"`
	Role             string     `gorm:"column:role;not null"`
	OrganizationName string     `gorm:"column:organization_name"`
	OrganizationType string     `gorm:"column:organization_type"`
	Phone            string     `gorm:"column:phone"`
	Address          string     `gorm:"column:address"`
	IsActive         bool       `gorm:"column:is_active;not null"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
	LoginCount       int        `gorm:"column:login_count;not null"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}

type UserPermission struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null"`
	PermissionID int64     `gorm:"column:permission_id;not null"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
