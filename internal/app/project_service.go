package app

import (
	"context"
	"fmt"

	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

// ProjectService handles project operations. Projects exist as the
// target of access grants; creation is admin-gated and company-scoped.
type ProjectService struct {
	projectRepo project.Repository
	logger      *logger.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo project.Repository, log *logger.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		logger:      log.With("service", "project"),
	}
}

// CreateProjectInput represents the input for creating a project.
type CreateProjectInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CreateProject creates a project in the actor's company. Admin only.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput, actor *user.User) (*project.Project, error) {
	companyID := actor.CompanyID()
	if companyID == nil || !actor.IsCompanyAdmin(*companyID) {
		return nil, shared.ErrForbidden
	}

	p, err := project.New(*companyID, input.Name, actor.ID())
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created", "id", p.ID().String(), "company_id", companyID.String())
	return p, nil
}

// GetProject retrieves a project in the actor's company.
func (s *ProjectService) GetProject(ctx context.Context, projectID string, actor *user.User) (*project.Project, error) {
	parsedID, err := shared.IDFromString(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	p, err := s.projectRepo.GetByID(ctx, parsedID)
	if err != nil {
		return nil, err
	}

	if !actor.MemberOf(p.CompanyID()) {
		return nil, shared.ErrNotFound
	}

	return p, nil
}

// ListProjects returns all projects in the actor's company.
func (s *ProjectService) ListProjects(ctx context.Context, actor *user.User) ([]*project.Project, error) {
	companyID := actor.CompanyID()
	if companyID == nil {
		return nil, shared.ErrForbidden
	}

	return s.projectRepo.ListByCompany(ctx, *companyID)
}
