package handler

import (
	"net/http"
	"time"

	"github.com/sitecrew/api/internal/app"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/apierror"
	"github.com/sitecrew/api/pkg/domain/joinrequest"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/validator"
)

// JoinRequestHandler handles the join-request lifecycle.
type JoinRequestHandler struct {
	service   *app.JoinRequestService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewJoinRequestHandler creates a new join-request handler.
func NewJoinRequestHandler(svc *app.JoinRequestService, v *validator.Validator, log *logger.Logger) *JoinRequestHandler {
	return &JoinRequestHandler{
		service:   svc,
		validator: v,
		logger:    log,
	}
}

// JoinRequestResponse represents a join request in API responses.
type JoinRequestResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	CompanyID    string     `json:"company_id"`
	Status       string     `json:"status"`
	RequestedAt  time.Time  `json:"requested_at"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecidedBy    string     `json:"decided_by,omitempty"`
	AssignedRole string     `json:"assigned_role,omitempty"`
}

// PendingRequestResponse is a pending request joined with the
// requester's identity, as shown to company admins.
type PendingRequestResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	RequestedAt time.Time `json:"requested_at"`
}

// SubmitJoinRequest represents the request to join a company.
// Exactly one of code or token must be set.
type SubmitJoinRequest struct {
	Code  string `json:"code" validate:"omitempty,invite_code"`
	Token string `json:"token" validate:"omitempty,min=16"`
}

// ApproveJoinRequest represents the approval payload. Role is optional
// and defaults to member.
type ApproveJoinRequest struct {
	Role string `json:"role" validate:"omitempty,company_role"`
}

func toJoinRequestResponse(jr *joinrequest.JoinRequest) JoinRequestResponse {
	resp := JoinRequestResponse{
		ID:          jr.ID().String(),
		UserID:      jr.UserID().String(),
		CompanyID:   jr.CompanyID().String(),
		Status:      string(jr.Status()),
		RequestedAt: jr.RequestedAt(),
		DecidedAt:   jr.DecidedAt(),
	}
	if jr.DecidedBy() != nil {
		resp.DecidedBy = jr.DecidedBy().String()
	}
	if jr.AssignedRole() != nil {
		resp.AssignedRole = jr.AssignedRole().String()
	}
	return resp
}

// Submit handles POST /api/v1/join-requests
func (h *JoinRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	var req SubmitJoinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleValidationError(w, err)
		return
	}

	jr, err := h.service.Submit(r.Context(), app.SubmitInput{
		Code:  req.Code,
		Token: req.Token,
	}, principal.ID())
	if err != nil {
		handleServiceError(h.logger, w, err, "Join request")
		return
	}

	respondJSON(w, http.StatusCreated, toJoinRequestResponse(jr))
}

// ListPending handles GET /api/v1/companies/{companyID}/join-requests
func (h *JoinRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	pending, err := h.service.ListPending(r.Context(), r.PathValue("companyID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Company")
		return
	}

	response := make([]PendingRequestResponse, len(pending))
	for i, p := range pending {
		response[i] = PendingRequestResponse{
			ID:          p.ID.String(),
			UserID:      p.UserID.String(),
			UserName:    p.UserName,
			UserEmail:   p.UserEmail,
			RequestedAt: p.RequestedAt,
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  response,
		"total": len(response),
	})
}

// Approve handles POST /api/v1/join-requests/{requestID}/approve
func (h *JoinRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	// An empty body means approve with the default role.
	var req ApproveJoinRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := h.validator.Validate(req); err != nil {
			handleValidationError(w, err)
			return
		}
	}

	jr, err := h.service.Approve(r.Context(), r.PathValue("requestID"), app.ApproveInput{Role: req.Role}, principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Join request")
		return
	}

	respondJSON(w, http.StatusOK, toJoinRequestResponse(jr))
}

// Reject handles POST /api/v1/join-requests/{requestID}/reject
func (h *JoinRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		apierror.Unauthorized("").WriteJSON(w)
		return
	}

	jr, err := h.service.Reject(r.Context(), r.PathValue("requestID"), principal)
	if err != nil {
		handleServiceError(h.logger, w, err, "Join request")
		return
	}

	respondJSON(w, http.StatusOK, toJoinRequestResponse(jr))
}
