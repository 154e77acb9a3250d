package project

import (
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Role represents a user's role on a single project. This is project-scoped
// authority, distinct from the company-wide role enumeration.
type Role string

const (
	RoleSubAdmin Role = "sub-admin"
	RoleEngineer Role = "engineer"
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	return r == RoleSubAdmin || r == RoleEngineer
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// Access represents a project-scoped role grant. At most one grant exists
// per (project, user) pair. Grants are never updated in place: a role
// change is a revoke followed by a re-grant, so assignedBy/assignedAt
// always reflect the grant actually in force.
type Access struct {
	id         shared.ID
	projectID  shared.ID
	userID     shared.ID
	role       Role
	assignedBy shared.ID
	assignedAt time.Time
}

// NewAccess creates a new project access grant.
func NewAccess(projectID, userID shared.ID, role Role, assignedBy shared.ID) (*Access, error) {
	if projectID.IsZero() {
		return nil, fmt.Errorf("%w: projectID is required", shared.ErrValidation)
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid project role %q", shared.ErrValidation, role)
	}
	if assignedBy.IsZero() {
		return nil, fmt.Errorf("%w: assignedBy is required", shared.ErrValidation)
	}
	return &Access{
		id:         shared.NewID(),
		projectID:  projectID,
		userID:     userID,
		role:       role,
		assignedBy: assignedBy,
		assignedAt: time.Now().UTC(),
	}, nil
}

// ReconstituteAccess recreates an Access from persistence.
func ReconstituteAccess(id, projectID, userID shared.ID, role Role, assignedBy shared.ID, assignedAt time.Time) *Access {
	return &Access{
		id:         id,
		projectID:  projectID,
		userID:     userID,
		role:       role,
		assignedBy: assignedBy,
		assignedAt: assignedAt,
	}
}

// ID returns the grant ID.
func (a *Access) ID() shared.ID {
	return a.id
}

// ProjectID returns the project ID.
func (a *Access) ProjectID() shared.ID {
	return a.projectID
}

// UserID returns the grantee's user ID.
func (a *Access) UserID() shared.ID {
	return a.userID
}

// Role returns the granted project role.
func (a *Access) Role() Role {
	return a.role
}

// AssignedBy returns the granting admin's ID.
func (a *Access) AssignedBy() shared.ID {
	return a.assignedBy
}

// AssignedAt returns when the grant was made.
func (a *Access) AssignedAt() time.Time {
	return a.assignedAt
}
