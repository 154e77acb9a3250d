// Package joinrequest contains the join-request aggregate: the pending-approval
// record created when a user attempts to join a company, and its one-shot
// pending -> approved | rejected state machine.
package joinrequest

import (
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
)

// Status represents the lifecycle state of a join request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// JoinRequest represents a user's attempt to join a company. Decided
// requests are immutable history: the single pending -> approved/rejected
// transition is the only mutation, ever.
type JoinRequest struct {
	id           shared.ID
	userID       shared.ID
	companyID    shared.ID
	status       Status
	requestedAt  time.Time
	decidedAt    *time.Time
	decidedBy    *shared.ID
	assignedRole *company.Role
}

// New creates a pending JoinRequest.
func New(userID, companyID shared.ID) (*JoinRequest, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if companyID.IsZero() {
		return nil, fmt.Errorf("%w: companyID is required", shared.ErrValidation)
	}
	return &JoinRequest{
		id:          shared.NewID(),
		userID:      userID,
		companyID:   companyID,
		status:      StatusPending,
		requestedAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a JoinRequest from persistence.
func Reconstitute(
	id, userID, companyID shared.ID,
	status Status,
	requestedAt time.Time,
	decidedAt *time.Time,
	decidedBy *shared.ID,
	assignedRole *company.Role,
) *JoinRequest {
	return &JoinRequest{
		id:           id,
		userID:       userID,
		companyID:    companyID,
		status:       status,
		requestedAt:  requestedAt,
		decidedAt:    decidedAt,
		decidedBy:    decidedBy,
		assignedRole: assignedRole,
	}
}

// ID returns the request ID.
func (r *JoinRequest) ID() shared.ID {
	return r.id
}

// UserID returns the requesting user's ID.
func (r *JoinRequest) UserID() shared.ID {
	return r.userID
}

// CompanyID returns the target company's ID.
func (r *JoinRequest) CompanyID() shared.ID {
	return r.companyID
}

// Status returns the request status.
func (r *JoinRequest) Status() Status {
	return r.status
}

// RequestedAt returns when the request was submitted.
func (r *JoinRequest) RequestedAt() time.Time {
	return r.requestedAt
}

// DecidedAt returns when the request was decided, nil while pending.
func (r *JoinRequest) DecidedAt() *time.Time {
	return r.decidedAt
}

// DecidedBy returns the deciding admin's ID, nil while pending.
func (r *JoinRequest) DecidedBy() *shared.ID {
	return r.decidedBy
}

// AssignedRole returns the role granted at approval, nil otherwise.
func (r *JoinRequest) AssignedRole() *company.Role {
	return r.assignedRole
}

// IsPending reports whether the request is still undecided.
func (r *JoinRequest) IsPending() bool {
	return r.status == StatusPending
}

// Approve transitions pending -> approved, recording the deciding admin
// and the role to grant. A second approval (or approving a rejected
// request) fails with ErrAlreadyDecided.
func (r *JoinRequest) Approve(decidedBy shared.ID, role company.Role) error {
	if r.status != StatusPending {
		return ErrAlreadyDecided
	}
	if !role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", shared.ErrValidation, role)
	}
	now := time.Now().UTC()
	r.status = StatusApproved
	r.decidedAt = &now
	r.decidedBy = &decidedBy
	r.assignedRole = &role
	return nil
}

// Reject transitions pending -> rejected. The user's membership is left
// untouched; they may submit a new request afterward.
func (r *JoinRequest) Reject(decidedBy shared.ID) error {
	if r.status != StatusPending {
		return ErrAlreadyDecided
	}
	now := time.Now().UTC()
	r.status = StatusRejected
	r.decidedAt = &now
	r.decidedBy = &decidedBy
	return nil
}
