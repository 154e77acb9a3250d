// Package company contains the tenant aggregate: a company owning its own
// users and project data, plus the invite credentials used to join it.
package company

import (
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// InviteLinkTTL is how long a rotated invite token stays valid.
const InviteLinkTTL = 30 * time.Minute

// Company represents a tenant. Each company carries two join credentials:
// a short numeric invite code that never expires, and a long opaque invite
// token that expires after rotation. The asymmetry is deliberate and matches
// the product behavior.
type Company struct {
	id                   shared.ID
	name                 string
	createdBy            shared.ID
	inviteCode           string
	inviteToken          string
	inviteTokenExpiresAt *time.Time
	createdAt            time.Time
}

// New creates a new Company with freshly generated invite credentials.
// Uniqueness of name, code and token is enforced by storage; callers retry
// credential generation on collision.
func New(name string, createdBy shared.ID) (*Company, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if createdBy.IsZero() {
		return nil, fmt.Errorf("%w: createdBy is required", shared.ErrValidation)
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}
	token, err := GenerateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	return &Company{
		id:          shared.NewID(),
		name:        name,
		createdBy:   createdBy,
		inviteCode:  code,
		inviteToken: token,
		// The initial token has no expiry; only rotation sets one.
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a Company from persistence.
func Reconstitute(
	id shared.ID,
	name string,
	createdBy shared.ID,
	inviteCode, inviteToken string,
	inviteTokenExpiresAt *time.Time,
	createdAt time.Time,
) *Company {
	return &Company{
		id:                   id,
		name:                 name,
		createdBy:            createdBy,
		inviteCode:           inviteCode,
		inviteToken:          inviteToken,
		inviteTokenExpiresAt: inviteTokenExpiresAt,
		createdAt:            createdAt,
	}
}

// ID returns the company ID.
func (c *Company) ID() shared.ID {
	return c.id
}

// Name returns the company name.
func (c *Company) Name() string {
	return c.name
}

// CreatedBy returns the founding user's ID. Set once, never changed.
func (c *Company) CreatedBy() shared.ID {
	return c.createdBy
}

// InviteCode returns the 6-digit numeric join code.
func (c *Company) InviteCode() string {
	return c.inviteCode
}

// InviteToken returns the current opaque join token.
func (c *Company) InviteToken() string {
	return c.inviteToken
}

// InviteTokenExpiresAt returns the token expiry, nil if the token never expires.
func (c *Company) InviteTokenExpiresAt() *time.Time {
	return c.inviteTokenExpiresAt
}

// CreatedAt returns the creation timestamp.
func (c *Company) CreatedAt() time.Time {
	return c.createdAt
}

// InviteTokenExpired reports whether the current token is past its expiry.
// A token with no expiry set never expires.
func (c *Company) InviteTokenExpired() bool {
	if c.inviteTokenExpiresAt == nil {
		return false
	}
	return time.Now().UTC().After(*c.inviteTokenExpiresAt)
}

// RotateInviteToken replaces the invite token and starts a fresh 30-minute
// expiry window. The previous token becomes unusable immediately; there is
// only ever one live token per company. The invite code is not touched.
func (c *Company) RotateInviteToken() error {
	token, err := GenerateInviteToken()
	if err != nil {
		return fmt.Errorf("failed to generate invite token: %w", err)
	}
	expiresAt := time.Now().UTC().Add(InviteLinkTTL)
	c.inviteToken = token
	c.inviteTokenExpiresAt = &expiresAt
	return nil
}
