package handler

import (
	"net/http"
	"time"

	"github.com/sitecrew/api/internal/app"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/apierror"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/validator"
)

// IdentityHandler handles registration, session issuance and profiles.
type IdentityHandler struct {
	service   *app.IdentityService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(svc *app.IdentityService, v *validator.Validator, log *logger.Logger) *IdentityHandler {
	return &IdentityHandler{
		service:   svc,
		validator: v,
		logger:    log,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CompanyID string    `json:"company_id,omitempty"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse represents an issued session token.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest represents the request to register a user.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// IssueSessionRequest represents the request for a session token.
type IssueSessionRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

func toUserResponse(u *user.User) UserResponse {
	var companyID string
	if u.CompanyID() != nil {
		companyID = u.CompanyID().String()
	}
	return UserResponse{
		ID:        u.ID().String(),
		Name:      u.Name(),
		Email:     u.Email(),
		CompanyID: companyID,
		Status:    string(u.Status()),
		Role:      u.Role().String(),
		CreatedAt: u.CreatedAt(),
	}
}

func toSessionResponse(s *app.Session) SessionResponse {
	return SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

// Register handles POST /api/v1/auth/register
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	u, session, err := h.service.Register(r.Context(), app.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		handleServiceError(h.logger, w, err, "User")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":    toUserResponse(u),
		"session": toSessionResponse(session),
	})
}

// IssueSession handles POST /api/v1/auth/sessions
//
// Credential verification happens upstream; this endpoint exchanges a
// known user id for a signed session token.
func (h *IdentityHandler) IssueSession(w http.ResponseWriter, r *http.Request) {
	var req IssueSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	userID, err := shared.IDFromString(req.UserID)
	if err != nil {
		apierror.BadRequest("Invalid user id").WriteJSON(w)
		return
	}

	session, err := h.service.IssueSession(r.Context(), userID)
	if err != nil {
		handleServiceError(h.logger, w, err, "User")
		return
	}

	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Me handles GET /api/v1/me
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(principal))
}
