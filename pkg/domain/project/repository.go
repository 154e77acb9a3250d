package project

import (
	"context"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Repository defines the interface for project persistence.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id shared.ID) (*Project, error)
	ListByCompany(ctx context.Context, companyID shared.ID) ([]*Project, error)
}

// AccessRepository defines the interface for project-access persistence.
//
// The at-most-one-grant-per-(project,user) invariant is backed by a unique
// constraint; Create returns ErrDuplicateGrant on violation.
type AccessRepository interface {
	Create(ctx context.Context, a *Access) error
	GetByID(ctx context.Context, id shared.ID) (*Access, error)
	GetByProjectAndUser(ctx context.Context, projectID, userID shared.ID) (*Access, error)
	ListByProject(ctx context.Context, projectID shared.ID) ([]*AccessWithUser, error)
	Delete(ctx context.Context, id shared.ID) error
}

// AccessWithUser is an access grant joined with the grantee's identity,
// for project access listings.
type AccessWithUser struct {
	ID         shared.ID
	ProjectID  shared.ID
	UserID     shared.ID
	UserName   string
	UserEmail  string
	Role       Role
	AssignedBy shared.ID
	AssignedAt time.Time
}
