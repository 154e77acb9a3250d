package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecrew/api/internal/metrics"
	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

// ProjectAccessService handles project access grants.
type ProjectAccessService struct {
	accessRepo  project.AccessRepository
	projectRepo project.Repository
	userRepo    user.Repository
	logger      *logger.Logger
}

// NewProjectAccessService creates a new ProjectAccessService.
func NewProjectAccessService(accessRepo project.AccessRepository, projectRepo project.Repository, userRepo user.Repository, log *logger.Logger) *ProjectAccessService {
	return &ProjectAccessService{
		accessRepo:  accessRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		logger:      log.With("service", "projectaccess"),
	}
}

// GrantInput represents the input for granting project access.
type GrantInput struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,project_role"`
}

// Grant assigns a project role to a member of the project's owning
// company. The actor must administer that company. Grants are never
// updated in place: changing a role is revoke followed by re-grant.
func (s *ProjectAccessService) Grant(ctx context.Context, projectID string, input GrantInput, actor *user.User) (*project.Access, error) {
	p, err := s.loadAdministered(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}

	role, ok := project.ParseRole(input.Role)
	if !ok {
		return nil, fmt.Errorf("%w: invalid role", shared.ErrValidation)
	}

	granteeID, err := shared.IDFromString(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id format", shared.ErrValidation)
	}

	grantee, err := s.userRepo.GetByID(ctx, granteeID)
	if err != nil {
		return nil, err
	}
	if !grantee.MemberOf(p.CompanyID()) {
		return nil, fmt.Errorf("%w: user is not a member of this company", shared.ErrValidation)
	}

	a, err := project.NewAccess(p.ID(), granteeID, role, actor.ID())
	if err != nil {
		return nil, err
	}

	if err := s.accessRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	metrics.ProjectGrantsTotal.WithLabelValues("granted").Inc()
	s.logger.Info("project access granted",
		"project_id", p.ID().String(),
		"user_id", granteeID.String(),
		"role", role.String(),
		"actor", actor.ID().String(),
	)

	return a, nil
}

// Revoke permanently removes an access grant. The actor must administer
// the owning company.
func (s *ProjectAccessService) Revoke(ctx context.Context, accessID string, actor *user.User) error {
	parsedID, err := shared.IDFromString(accessID)
	if err != nil {
		return fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	a, err := s.accessRepo.GetByID(ctx, parsedID)
	if err != nil {
		return err
	}

	if _, err := s.loadAdministered(ctx, a.ProjectID().String(), actor); err != nil {
		return err
	}

	if err := s.accessRepo.Delete(ctx, parsedID); err != nil {
		return err
	}

	metrics.ProjectGrantsTotal.WithLabelValues("revoked").Inc()
	s.logger.Info("project access revoked",
		"access_id", parsedID.String(),
		"project_id", a.ProjectID().String(),
		"actor", actor.ID().String(),
	)

	return nil
}

// ListForProject returns all grants on a project in the actor's company.
func (s *ProjectAccessService) ListForProject(ctx context.Context, projectID string, actor *user.User) ([]*project.AccessWithUser, error) {
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

	return s.accessRepo.ListByProject(ctx, parsedID)
}

// Check reports the role a user holds on a project, or nil when no
// grant exists. Used by the authorization gate.
func (s *ProjectAccessService) Check(ctx context.Context, projectID, userID shared.ID) (*project.Role, error) {
	a, err := s.accessRepo.GetByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	role := a.Role()
	return &role, nil
}

// loadAdministered loads a project and checks the actor administers its
// owning company. Projects outside the actor's company read as missing.
func (s *ProjectAccessService) loadAdministered(ctx context.Context, projectID string, actor *user.User) (*project.Project, error) {
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
	if !actor.IsCompanyAdmin(p.CompanyID()) {
		return nil, shared.ErrForbidden
	}

	return p, nil
}
