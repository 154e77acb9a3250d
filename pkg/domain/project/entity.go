// Package project contains the project entity and per-project access grants.
// Project-scoped roles are a separate, finer-grained enumeration from the
// company-wide roles in package company.
package project

import (
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Project represents a construction project owned by a company.
// This subsystem only needs existence and the owning company; the rest of
// the project record lives with the CRUD controllers.
type Project struct {
	id        shared.ID
	companyID shared.ID
	name      string
	createdBy shared.ID
	createdAt time.Time
}

// New creates a new Project.
func New(companyID shared.ID, name string, createdBy shared.ID) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if companyID.IsZero() {
		return nil, fmt.Errorf("%w: companyID is required", shared.ErrValidation)
	}
	return &Project{
		id:        shared.NewID(),
		companyID: companyID,
		name:      name,
		createdBy: createdBy,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a Project from persistence.
func Reconstitute(id, companyID shared.ID, name string, createdBy shared.ID, createdAt time.Time) *Project {
	return &Project{
		id:        id,
		companyID: companyID,
		name:      name,
		createdBy: createdBy,
		createdAt: createdAt,
	}
}

// ID returns the project ID.
func (p *Project) ID() shared.ID {
	return p.id
}

// CompanyID returns the owning company's ID.
func (p *Project) CompanyID() shared.ID {
	return p.companyID
}

// Name returns the project name.
func (p *Project) Name() string {
	return p.name
}

// CreatedBy returns the creating user's ID.
func (p *Project) CreatedBy() shared.ID {
	return p.createdBy
}

// CreatedAt returns the creation timestamp.
func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}
