package handler

import (
	"net/http"
	"time"

	"github.com/sitecrew/api/internal/app"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/apierror"
	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/validator"
)

// ProjectHandler handles project and project-access HTTP requests.
type ProjectHandler struct {
	projects  *app.ProjectService
	access    *app.ProjectAccessService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects *app.ProjectService, access *app.ProjectAccessService, v *validator.Validator, log *logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		access:    access,
		validator: v,
		logger:    log,
	}
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessResponse represents a project-access grant.
type AccessResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	AssignedBy string    `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AccessWithUserResponse is a grant joined with the grantee's identity.
type AccessWithUserResponse struct {
	AccessResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CreateProjectRequest represents the request to create a project.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// GrantAccessRequest represents the request to grant project access.
type GrantAccessRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,project_role"`
}

func toProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID().String(),
		CompanyID: p.CompanyID().String(),
		Name:      p.Name(),
		CreatedBy: p.CreatedBy().String(),
		CreatedAt: p.CreatedAt(),
	}
}

func toAccessResponse(a *project.Access) AccessResponse {
	return AccessResponse{
		ID:         a.ID().String(),
		ProjectID:  a.ProjectID().String(),
		UserID:     a.UserID().String(),
		Role:       a.Role().String(),
		AssignedBy: a.AssignedBy().String(),
		AssignedAt: a.AssignedAt(),
	}
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	p, err := h.projects.CreateProject(r.Context(), app.CreateProjectInput{Name: req.Name}, principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Project")
		return
	}

	respondJSON(w, http.StatusCreated, toProjectResponse(p))
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	list, err := h.projects.ListProjects(r.Context(), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Project")
		return
	}

	response := make([]ProjectResponse, len(list))
	for i, p := range list {
		response[i] = toProjectResponse(p)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  response,
		"total": len(response),
	})
}

// Get handles GET /api/v1/projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	p, err := h.projects.GetProject(r.Context(), r.PathValue("projectID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Project")
		return
	}

	respondJSON(w, http.StatusOK, toProjectResponse(p))
}

// GrantAccess handles POST /api/v1/projects/{projectID}/access
func (h *ProjectHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	var req GrantAccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	a, err := h.access.Grant(r.Context(), r.PathValue("projectID"), app.GrantInput{
		UserID: req.UserID,
		Role:   req.Role,
	}, principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Project")
		return
	}

	respondJSON(w, http.StatusCreated, toAccessResponse(a))
}

// ListAccess handles GET /api/v1/projects/{projectID}/access
func (h *ProjectHandler) ListAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	grants, err := h.access.ListForProject(r.Context(), r.PathValue("projectID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Project")
		return
	}

	response := make([]AccessWithUserResponse, len(grants))
	for i, g := range grants {
		response[i] = AccessWithUserResponse{
			AccessResponse: AccessResponse{
				ID:         g.ID.String(),
				ProjectID:  g.ProjectID.String(),
				UserID:     g.UserID.String(),
				Role:       g.Role.String(),
				AssignedBy: g.AssignedBy.String(),
				AssignedAt: g.AssignedAt,
			},
			UserName:  g.UserName,
			UserEmail: g.UserEmail,
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  response,
		"total": len(response),
	})
}

// RevokeAccess handles DELETE /api/v1/projects/{projectID}/access/{accessID}
func (h *ProjectHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	if err := h.access.Revoke(r.Context(), r.PathValue("accessID"), principal); err != nil {
		handleServiceError(h.logger, w, err, "Access grant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
