package user

import "github.com/sitecrew/api/pkg/domain/shared"

// ReasonAlreadyMember is the reason code for binding an affiliated user.
const ReasonAlreadyMember = "ALREADY_MEMBER"

// ErrAlreadyMember means the user already belongs to a company. A user
// belongs to at most one company at a time.
var ErrAlreadyMember = shared.NewDomainError(ReasonAlreadyMember, "user already belongs to a company", shared.ErrConflict)
