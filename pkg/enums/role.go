package enums

import "fmt"

// Role is the dashboard audience resolved from the caller's session.
type Role string

const (
	RoleRegular   Role = "regular"
	RoleCashier   Role = "cashier"
	RoleManager   Role = "manager"
	RoleSuperuser Role = "superuser"
)

var validRoles = []Role{
	RoleRegular,
	RoleCashier,
	RoleManager,
	RoleSuperuser,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// DashboardRole collapses roles onto the pipeline that serves them.
// Superusers see the manager dashboard.
func (r Role) DashboardRole() Role {
	if r == RoleSuperuser {
		return RoleManager
	}
	return r
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
