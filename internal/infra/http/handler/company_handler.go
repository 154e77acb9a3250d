package handler

import (
	"net/http"
	"time"

	"github.com/sitecrew/api/internal/app"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/apierror"
	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/validator"
)

// CompanyHandler handles company and invite HTTP requests.
type CompanyHandler struct {
	service   *app.CompanyService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(svc *app.CompanyService, v *validator.Validator, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{
		service:   svc,
		validator: v,
		logger:    log,
	}
}

// CompanyResponse represents a company in API responses.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteResponse represents invite credentials. The token is only
// returned to company admins.
type InviteResponse struct {
	Code      string     `json:"code"`
	Token     string     `json:"token"`
	Link      string     `json:"link"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CompanyPreviewResponse is the redacted company view shown to a
// prospective member resolving an invite.
type CompanyPreviewResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCompanyRequest represents the request to create a company.
type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func toCompanyResponse(c *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID().String(),
		Name:      c.Name(),
		CreatedBy: c.CreatedBy().String(),
		CreatedAt: c.CreatedAt(),
	}
}

func toInviteResponse(creds *app.InviteCredentials) InviteResponse {
	return InviteResponse{
		Code:      creds.Code,
		Token:     creds.Token,
		Link:      creds.Link,
		ExpiresAt: creds.ExpiresAt,
	}
}

// Create handles POST /api/v1/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	var req CreateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	c, err := h.service.CreateCompany(r.Context(), app.CreateCompanyInput{Name: req.Name}, principal.ID())
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	respondJSON(w, http.StatusCreated, toCompanyResponse(c))
}

// Get handles GET /api/v1/companies/{companyID}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	c, err := h.service.GetCompany(r.Context(), r.PathValue("companyID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	respondJSON(w, http.StatusOK, toCompanyResponse(c))
}

// Members handles GET /api/v1/companies/{companyID}/members
func (h *CompanyHandler) Members(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	members, err := h.service.ListMembers(r.Context(), r.PathValue("companyID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	response := make([]UserResponse, len(members))
	for i, m := range members {
		response[i] = toUserResponse(m)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  response,
		"total": len(response),
	})
}

// GetInvite handles GET /api/v1/companies/{companyID}/invite
func (h *CompanyHandler) GetInvite(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	creds, err := h.service.GetInvite(r.Context(), r.PathValue("companyID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	respondJSON(w, http.StatusOK, toInviteResponse(creds))
}

// RotateInvite handles POST /api/v1/companies/{companyID}/invite/rotate
//
// Rotation replaces the invite token and restarts its expiry window.
// The six-digit code is untouched.
func (h *CompanyHandler) RotateInvite(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	creds, err := h.service.RotateInviteLink(r.Context(), r.PathValue("companyID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	respondJSON(w, http.StatusOK, toInviteResponse(creds))
}

// ResolveInvite handles GET /api/v1/invites/resolve?code=... or ?token=...
//
// Public and rate limited: six-digit codes are guessable.
func (h *CompanyHandler) ResolveInvite(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	token := r.URL.Query().Get("token")

	if (code == "") == (token == "") {
		apierror.BadRequest("Exactly one of code or token is required").WriteJSON(w)
		return
	}

	var (
		preview *app.CompanyPreview
		err     error
	)
	if code != "" {
		preview, err = h.service.ResolveInviteCode(r.Context(), code)
	} else {
		preview, err = h.service.ResolveInviteToken(r.Context(), token)
	}
	if err != nil {
		handleServiceError(h.logger, w, err, "Invite")
		return
	}

	respondJSON(w, http.StatusOK, CompanyPreviewResponse{
		ID:   preview.ID.String(),
		Name: preview.Name,
	})
}
