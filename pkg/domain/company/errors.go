package company

import "github.com/sitecrew/api/pkg/domain/shared"

// Reason codes carried by company domain errors. These are stable,
// machine-readable identifiers exposed to API clients.
const (
	ReasonNameTaken     = "COMPANY_NAME_TAKEN"
	ReasonInviteInvalid = "INVITE_INVALID"
	ReasonInviteExpired = "INVITE_EXPIRED"
)

// Domain errors.
var (
	// ErrNameTaken means a company with the same name already exists.
	ErrNameTaken = shared.NewDomainError(ReasonNameTaken, "company name is already taken", shared.ErrConflict)

	// ErrInviteInvalid means no company matches the presented code or token.
	ErrInviteInvalid = shared.NewDomainError(ReasonInviteInvalid, "invalid invite code or link", shared.ErrConflict)

	// ErrInviteExpired means the invite token matched a company but its
	// expiry has passed. The invite code never expires; only tokens do.
	ErrInviteExpired = shared.NewDomainError(ReasonInviteExpired, "invite link has expired", shared.ErrConflict)
)
