package auth

import (
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is an account as seen by authentication: credentials plus the
// role and permissions that travel with every request.
type Identity struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         coreuser.Role
	Permissions  []coreuser.Permission
	IsActive     bool
}

// Actor converts the identity into the request-scoped user.
func (i *Identity) Actor() *internal.User {
	return &internal.User{
		ID:          i.ID,
		Email:       i.Email,
		Role:        i.Role,
		Permissions: i.Permissions,
	}
}

func (i *Identity) Profile() UserProfile {
	return UserProfile{
		ID:          i.ID,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Role:        i.Role,
		Permissions: coreuser.PermissionNames(i.Permissions),
	}
}

type UserProfile struct {
	ID          int64         `json:"id"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	Role        coreuser.Role `json:"role"`
	Permissions []string      `json:"permissions"`
}

// TokenGenerator creates and verifies tokens.
type TokenGenerator interface {
	GenerateAccessToken(identity *Identity) (string, error)
	GenerateRefreshToken(identity *Identity) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResult struct {
	AuthTokens
	User UserProfile `json:"user"`
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
