package joinrequest

import (
	"context"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
)

// Repository defines the interface for join-request persistence.
//
// The one-pending-request-per-(user,company) invariant is backed by a
// partial unique index; Create returns ErrDuplicateRequest on violation
// rather than relying on a read-then-write check.
type Repository interface {
	Create(ctx context.Context, r *JoinRequest) error
	GetByID(ctx context.Context, id shared.ID) (*JoinRequest, error)
	ListPendingByCompany(ctx context.Context, companyID shared.ID) ([]*PendingRequest, error)

	// ApproveTx atomically persists an approved request together with the
	// user's company binding. Both writes are guarded: the request row by
	// status='pending', the user row by company_id IS NULL. If either
	// guard fails the whole transaction aborts with ErrAlreadyDecided or
	// user.ErrAlreadyMember respectively, and nothing is applied.
	ApproveTx(ctx context.Context, r *JoinRequest) error

	// UpdateDecision persists a rejection, guarded by status='pending'.
	// Returns ErrAlreadyDecided if the request was decided concurrently.
	UpdateDecision(ctx context.Context, r *JoinRequest) error
}

// PendingRequest is a pending join request enriched with the requesting
// user's display identity, for admin review listings.
type PendingRequest struct {
	ID          shared.ID
	UserID      shared.ID
	UserName    string
	UserEmail   string
	CompanyID   shared.ID
	RequestedAt time.Time
}
