package domain

import "time"

// Role is the coarse permission tier assigned to every account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether the value is one of the two allowed roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the identity record for anyone who can authenticate.
type User struct {
	ID           string
	GivenName    string
	FamilyName   string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
