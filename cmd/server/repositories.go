package main

import (
	"github.com/sitecrew/api/internal/infra/postgres"
)

// Repositories holds all repository instances.
type Repositories struct {
	User          *postgres.UserRepository
	Company       *postgres.CompanyRepository
	JoinRequest   *postgres.JoinRequestRepository
	Project       *postgres.ProjectRepository
	ProjectAccess *postgres.ProjectAccessRepository
}

// NewRepositories creates all repositories backed by the given database.
func NewRepositories(db *postgres.DB) *Repositories {
	return &Repositories{
		User:          postgres.NewUserRepository(db),
		Company:       postgres.NewCompanyRepository(db),
		JoinRequest:   postgres.NewJoinRequestRepository(db),
		Project:       postgres.NewProjectRepository(db),
		ProjectAccess: postgres.NewProjectAccessRepository(db),
	}
}
