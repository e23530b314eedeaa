// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "slices"

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// User is an identity in the marketplace. Exactly one of Farmer or Marketman is set,
// matching Role; the constructors below are the only way to build a consistent value.
type User struct {
	ID             string            `json:"id"`             // Minted at signup, immutable afterwards.
	Name           string            `json:"name"`           // Display name.
	Phone          string            `json:"phone"`          // Login key for PIN sign-in.
	Address        string            `json:"address"`        // Free-text postal address.
	Location       *Location         `json:"location"`       // Nil when the user shared no location.
	Role           Role              `json:"role"`           // Farmer or marketman.
	PINHash        string            `json:"-"`              // bcrypt hash of the numeric PIN.
	ProfilePicture string            `json:"profilePicture"` // Opaque image reference.
	Farmer         *FarmerProfile    `json:"farmer,omitempty"`
	Marketman      *MarketmanProfile `json:"marketman,omitempty"`
}

// FarmerProfile holds data specific to the farmer role.
type FarmerProfile struct {
	Followers int `json:"followers"`
}

// MarketmanProfile holds data specific to the marketman role.
type MarketmanProfile struct {
	Following []string `json:"following"`
}

// NewFarmer builds a farmer user with a zero follower count.
func NewFarmer(id string, identity Identity) *User {
	u := identity.user(id, RoleFarmer)
	u.Farmer = &FarmerProfile{}

	return u
}

// NewMarketman builds a marketman user following nobody.
func NewMarketman(id string, identity Identity) *User {
	u := identity.user(id, RoleMarketman)
	u.Marketman = &MarketmanProfile{Following: []string{}}

	return u
}

// Identity carries the role-independent fields of a user.
type Identity struct {
	Name           string
	Phone          string
	Address        string
	Location       *Location
	PINHash        string
	ProfilePicture string
}

func (i Identity) user(id string, role Role) *User {
	var loc *Location
	if i.Location != nil {
		l := *i.Location
		loc = &l
	}

	return &User{
		ID:             id,
		Name:           i.Name,
		Phone:          i.Phone,
		Address:        i.Address,
		Location:       loc,
		Role:           role,
		PINHash:        i.PINHash,
		ProfilePicture: i.ProfilePicture,
	}
}

// IsFarmer reports whether the user is a farmer.
func (u *User) IsFarmer() bool {
	return u != nil && u.Role == RoleFarmer && u.Farmer != nil
}

// IsMarketman reports whether the user is a marketman.
func (u *User) IsMarketman() bool {
	return u != nil && u.Role == RoleMarketman && u.Marketman != nil
}

// Follows reports whether a marketman follows the given farmer.
func (u *User) Follows(farmerID string) bool {
	if !u.IsMarketman() {
		return false
	}

	return slices.Contains(u.Marketman.Following, farmerID)
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	c := *u
	if u.Location != nil {
		loc := *u.Location
		c.Location = &loc
	}
	if u.Farmer != nil {
		f := *u.Farmer
		c.Farmer = &f
	}
	if u.Marketman != nil {
		c.Marketman = &MarketmanProfile{Following: slices.Clone(u.Marketman.Following)}
		if c.Marketman.Following == nil {
			c.Marketman.Following = []string{}
		}
	}

	return &c
}
