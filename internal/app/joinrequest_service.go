package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecrew/api/internal/metrics"
	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/joinrequest"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

// JoinRequestService handles the join-request lifecycle.
type JoinRequestService struct {
	requestRepo joinrequest.Repository
	companyRepo company.Repository
	userRepo    user.Repository
	logger      *logger.Logger
}

// NewJoinRequestService creates a new JoinRequestService.
func NewJoinRequestService(requestRepo joinrequest.Repository, companyRepo company.Repository, userRepo user.Repository, log *logger.Logger) *JoinRequestService {
	return &JoinRequestService{
		requestRepo: requestRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		logger:      log.With("service", "joinrequest"),
	}
}

// SubmitInput represents the input for submitting a join request.
// Exactly one of Code or Token must be set.
type SubmitInput struct {
	Code  string `json:"code" validate:"omitempty,invite_code"`
	Token string `json:"token" validate:"omitempty,min=16"`
}

// Submit files a join request against the company an invite credential
// resolves to. The requester must be unaffiliated; duplicate pending
// requests are rejected by the storage constraint.
func (s *JoinRequestService) Submit(ctx context.Context, input SubmitInput, requesterID shared.ID) (*joinrequest.JoinRequest, error) {
	if (input.Code == "") == (input.Token == "") {
		return nil, fmt.Errorf("%w: exactly one of code or token is required", shared.ErrValidation)
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	if requester.IsMember() {
		return nil, user.ErrAlreadyMember
	}

	c, err := s.resolveInvite(ctx, input)
	if err != nil {
		return nil, err
	}

	jr, err := joinrequest.New(requesterID, c.ID())
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, jr); err != nil {
		return nil, err
	}

	metrics.JoinRequestsTotal.WithLabelValues("submitted").Inc()
	s.logger.Info("join request submitted",
		"request_id", jr.ID().String(),
		"company_id", c.ID().String(),
		"user_id", requesterID.String(),
	)

	return jr, nil
}

// ListPending returns pending requests for the actor's company with the
// requester's display identity. Admin only.
func (s *JoinRequestService) ListPending(ctx context.Context, companyID string, actor *user.User) ([]*joinrequest.PendingRequest, error) {
	parsedID, err := shared.IDFromString(companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	if !actor.IsCompanyAdmin(parsedID) {
		return nil, shared.ErrForbidden
	}

	return s.requestRepo.ListPendingByCompany(ctx, parsedID)
}

// ApproveInput represents the input for approving a join request.
type ApproveInput struct {
	Role string `json:"role" validate:"omitempty,company_role"`
}

// Approve decides a pending request in favor of the requester and binds
// them to the company with the assigned role, atomically. A request
// decided concurrently, or a requester who joined elsewhere in the
// meantime, fails the whole operation.
func (s *JoinRequestService) Approve(ctx context.Context, requestID string, input ApproveInput, actor *user.User) (*joinrequest.JoinRequest, error) {
	jr, err := s.loadForDecision(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	role := company.DefaultRole
	if input.Role != "" {
		parsed, ok := company.ParseRole(input.Role)
		if !ok {
			return nil, fmt.Errorf("%w: invalid role", shared.ErrValidation)
		}
		role = parsed
	}

	if err := jr.Approve(actor.ID(), role); err != nil {
		return nil, err
	}

	if err := s.requestRepo.ApproveTx(ctx, jr); err != nil {
		return nil, err
	}

	metrics.JoinRequestsTotal.WithLabelValues("approved").Inc()
	s.logger.Info("join request approved",
		"request_id", jr.ID().String(),
		"company_id", jr.CompanyID().String(),
		"user_id", jr.UserID().String(),
		"role", role.String(),
		"actor", actor.ID().String(),
	)

	return jr, nil
}

// Reject decides a pending request against the requester. The requester
// stays unaffiliated and may submit again.
func (s *JoinRequestService) Reject(ctx context.Context, requestID string, actor *user.User) (*joinrequest.JoinRequest, error) {
	jr, err := s.loadForDecision(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	if err := jr.Reject(actor.ID()); err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateDecision(ctx, jr); err != nil {
		return nil, err
	}

	metrics.JoinRequestsTotal.WithLabelValues("rejected").Inc()
	s.logger.Info("join request rejected",
		"request_id", jr.ID().String(),
		"company_id", jr.CompanyID().String(),
		"actor", actor.ID().String(),
	)

	return jr, nil
}

// loadForDecision loads a request and checks the actor administers the
// company it targets.
func (s *JoinRequestService) loadForDecision(ctx context.Context, requestID string, actor *user.User) (*joinrequest.JoinRequest, error) {
	parsedID, err := shared.IDFromString(requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	jr, err := s.requestRepo.GetByID(ctx, parsedID)
	if err != nil {
		return nil, err
	}

	if !actor.IsCompanyAdmin(jr.CompanyID()) {
		return nil, shared.ErrForbidden
	}

	return jr, nil
}

func (s *JoinRequestService) resolveInvite(ctx context.Context, input SubmitInput) (*company.Company, error) {
	var (
		c   *company.Company
		err error
	)
	if input.Code != "" {
		c, err = s.companyRepo.GetByInviteCode(ctx, input.Code)
	} else {
		c, err = s.companyRepo.GetByInviteToken(ctx, input.Token)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, company.ErrInviteInvalid
		}
		return nil, err
	}

	if input.Token != "" && c.InviteTokenExpired() {
		return nil, company.ErrInviteExpired
	}

	return c, nil
}
