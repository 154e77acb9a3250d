package user

import (
	"context"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Repository defines the interface for user persistence.
//
// Membership mutations that must be atomic with a join-request decision
// run through joinrequest.Repository's transactional methods, not here.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id shared.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByCompany(ctx context.Context, companyID shared.ID) ([]*User, error)
}
