// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role a user can have in the marketplace.
type Role string

const (
	// RoleFarmer indicates a seller who lists products and receives follows.
	RoleFarmer Role = "farmer"
	// RoleMarketman indicates a buyer who purchases listings and follows farmers.
	RoleMarketman Role = "marketman"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleMarketman:
		return true
	default:
		return false
	}
}

// Dashboard returns the landing path a client should navigate to after signing in.
func (r Role) Dashboard() string {
	return "/" + string(r) + "/dashboard"
}
