package joinrequest

import "github.com/sitecrew/api/pkg/domain/shared"

// Reason codes carried by join-request domain errors.
const (
	ReasonDuplicateRequest = "DUPLICATE_REQUEST"
	ReasonAlreadyDecided   = "REQUEST_ALREADY_DECIDED"
)

// Domain errors.
var (
	// ErrDuplicateRequest means a pending request already exists for the
	// same (user, company) pair.
	ErrDuplicateRequest = shared.NewDomainError(ReasonDuplicateRequest, "a pending join request already exists", shared.ErrConflict)

	// ErrAlreadyDecided means the request left the pending state; the
	// transition is terminal and re-deciding must fail, never re-apply.
	ErrAlreadyDecided = shared.NewDomainError(ReasonAlreadyDecided, "join request has already been decided", shared.ErrConflict)
)
