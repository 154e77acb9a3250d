package project

import "github.com/sitecrew/api/pkg/domain/shared"

// ReasonDuplicateGrant is the reason code for granting over an existing grant.
const ReasonDuplicateGrant = "DUPLICATE_GRANT"

// ErrDuplicateGrant means an access row already exists for the
// (project, user) pair. Change the role with revoke + re-grant.
var ErrDuplicateGrant = shared.NewDomainError(ReasonDuplicateGrant, "user already has access to this project", shared.ErrConflict)
