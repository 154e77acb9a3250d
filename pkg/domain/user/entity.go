// Package user contains the principal as seen by the authorization layer:
// identity, company binding and company-wide role.
package user

import (
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
)

// MembershipStatus tracks whether a user has been approved into a company.
type MembershipStatus string

const (
	// StatusPending means registered but not yet in any company.
	StatusPending MembershipStatus = "pending"
	// StatusActive means a usable member of a company.
	StatusActive MembershipStatus = "active"
)

// IsValid checks if the status is valid.
func (s MembershipStatus) IsValid() bool {
	return s == StatusPending || s == StatusActive
}

// User represents a principal. CompanyID is nil until the user is approved
// into a company; the pending->active transition happens exactly once, at
// approval (or at company creation for the founder).
type User struct {
	id        shared.ID
	name      string
	email     string
	companyID *shared.ID
	status    MembershipStatus
	role      company.Role
	createdAt time.Time
}

// New creates a new unaffiliated User.
func New(name, email string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	return &User{
		id:        shared.NewID(),
		name:      name,
		email:     email,
		status:    StatusPending,
		role:      company.DefaultRole,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a User from persistence.
func Reconstitute(
	id shared.ID,
	name, email string,
	companyID *shared.ID,
	status MembershipStatus,
	role company.Role,
	createdAt time.Time,
) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		companyID: companyID,
		status:    status,
		role:      role,
		createdAt: createdAt,
	}
}

// ID returns the user ID.
func (u *User) ID() shared.ID {
	return u.id
}

// Name returns the display name.
func (u *User) Name() string {
	return u.name
}

// Email returns the email address.
func (u *User) Email() string {
	return u.email
}

// CompanyID returns the company the user belongs to, nil if unaffiliated.
func (u *User) CompanyID() *shared.ID {
	return u.companyID
}

// Status returns the membership status.
func (u *User) Status() MembershipStatus {
	return u.status
}

// Role returns the company-wide role.
func (u *User) Role() company.Role {
	return u.role
}

// CreatedAt returns the creation timestamp.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// IsMember reports whether the user belongs to any company.
func (u *User) IsMember() bool {
	return u.companyID != nil
}

// MemberOf reports whether the user belongs to the given company.
func (u *User) MemberOf(companyID shared.ID) bool {
	return u.companyID != nil && u.companyID.Equals(companyID)
}

// IsCompanyAdmin reports whether the user is an admin of the given company.
func (u *User) IsCompanyAdmin(companyID shared.ID) bool {
	return u.MemberOf(companyID) && u.role.IsAdmin()
}

// BindToCompany binds the user to a company with the given role and
// activates them. A user belongs to at most one company; binding an
// already-affiliated user fails with ErrAlreadyMember.
func (u *User) BindToCompany(companyID shared.ID, role company.Role) error {
	if u.companyID != nil {
		return ErrAlreadyMember
	}
	if !role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", shared.ErrValidation, role)
	}
	id := companyID
	u.companyID = &id
	u.role = role
	u.status = StatusActive
	return nil
}
