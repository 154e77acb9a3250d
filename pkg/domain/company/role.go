package company

// Role represents a user's company-wide role.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEngineer   Role = "engineer"
	RoleAccountant Role = "accountant"
	RoleMember     Role = "member"
)

// DefaultRole is the role a user carries before any assignment.
const DefaultRole = RoleMember

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEngineer, RoleAccountant, RoleMember:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsAdmin checks if this is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanManageMembers checks if this role can decide join requests and
// manage project access.
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin
}

// AssignableRoles returns the roles an admin may assign when approving
// a join request.
var AssignableRoles = []Role{RoleAdmin, RoleEngineer, RoleAccountant, RoleMember}

// ParseRole parses a string to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}
