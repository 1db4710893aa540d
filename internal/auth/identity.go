package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
)

// ErrIdentityNotFound is returned by providers when no account matches.
// Any other provider error means the store itself is unavailable.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityProvider resolves accounts for authentication and for every
// authenticated request.
type IdentityProvider interface {
	Name() string
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id int64) (*Identity, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	Ping(ctx context.Context) error
}

// FixtureIdentityProvider serves a fixed set of accounts from configuration.
// The maps are read-only after construction.
type FixtureIdentityProvider struct {
	byID    map[int64]*Identity
	byEmail map[string]*Identity
}

func NewFixtureIdentityProvider(fixtures []internal.FixtureUser, bcryptCost int) (*FixtureIdentityProvider, error) {
	p := &FixtureIdentityProvider{
		byID:    make(map[int64]*Identity, len(fixtures)),
		byEmail: make(map[string]*Identity, len(fixtures)),
	}

	for _, f := range fixtures {
		role := coreuser.Role(f.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("fixture user %q: invalid role %q", f.Email, f.Role)
		}
		if f.ID <= 0 {
			return nil, fmt.Errorf("fixture user %q: id must be positive", f.Email)
		}
		email := strings.ToLower(strings.TrimSpace(f.Email))
		if _, dup := p.byEmail[email]; dup {
			return nil, fmt.Errorf("fixture user %q: duplicate email", f.Email)
		}
		if _, dup := p.byID[f.ID]; dup {
			return nil, fmt.Errorf("fixture user %q: duplicate id %d", f.Email, f.ID)
		}

		hash, err := HashPassword(f.Password, bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("fixture user %q: %w", f.Email, err)
		}

		identity := &Identity{
			ID:           f.ID,
			Email:        email,
			PasswordHash: hash,
			FirstName:    f.FirstName,
			LastName:     f.LastName,
			Role:         role,
			Permissions:  coreuser.ParsePermissions(f.Permissions),
			IsActive:     true,
		}
		p.byID[identity.ID] = identity
		p.byEmail[email] = identity
	}

	return p, nil
}

func (p *FixtureIdentityProvider) Name() string { return internal.IdentityProviderFixture }

func (p *FixtureIdentityProvider) FindByEmail(_ context.Context, email string) (*Identity, error) {
	identity, ok := p.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	cp := *identity
	return &cp, nil
}

func (p *FixtureIdentityProvider) FindByID(_ context.Context, id int64) (*Identity, error) {
	identity, ok := p.byID[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	cp := *identity
	return &cp, nil
}

func (p *FixtureIdentityProvider) RecordLogin(context.Context, int64, time.Time) error { return nil }

func (p *FixtureIdentityProvider) Ping(context.Context) error { return nil }
