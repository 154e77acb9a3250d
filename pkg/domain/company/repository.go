package company

import (
	"context"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Repository defines the interface for company persistence.
//
// Name, invite code and invite token carry unique constraints at the
// storage layer; Create and UpdateInvite return shared.ErrAlreadyExists
// on violation so callers can regenerate credentials instead of racing
// a read-then-write check.
type Repository interface {
	// CreateWithFounder atomically inserts the company and binds the
	// founding user to it (admin role, active status) in one transaction.
	// Returns shared.ErrConflict if the founder already belongs to a
	// company, shared.ErrAlreadyExists on a uniqueness violation.
	CreateWithFounder(ctx context.Context, c *Company, founderID shared.ID) error

	GetByID(ctx context.Context, id shared.ID) (*Company, error)
	GetByInviteCode(ctx context.Context, code string) (*Company, error)
	GetByInviteToken(ctx context.Context, token string) (*Company, error)
	ExistsByName(ctx context.Context, name string) (bool, error)

	// UpdateInvite persists a rotated invite token and its expiry.
	// Last writer wins between concurrent rotations.
	UpdateInvite(ctx context.Context, c *Company) error

	// List returns all companies. Operator tooling only.
	List(ctx context.Context) ([]*Company, error)
}
