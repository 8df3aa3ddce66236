package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleCustomer browses, reviews, and favorites restaurants
	RoleCustomer UserRole = "customer"
	// RoleBusinessOwner manages their own restaurant listings
	RoleBusinessOwner UserRole = "business_owner"
	// RoleAdmin moderates the platform (i.e. approves restaurants)
	RoleAdmin UserRole = "admin"
)

var roleHierarchy = map[UserRole]int{
	RoleCustomer:      0,
	RoleBusinessOwner: 1,
	RoleAdmin:         2,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level.
// Unknown roles are never at least anything.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	current, ok := roleHierarchy[r]
	if !ok {
		return false
	}

	min, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}

	return current >= min
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleCustomer,
		RoleBusinessOwner,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
