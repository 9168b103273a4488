package user

import "time"

type Role string

const (
	RoleUser  Role = "user"  // Regular employee
	RoleAdmin Role = "admin" // Can manage users, policies and notifications
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Designation  string
	IsBlocked    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user has administrative access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageUsers checks if user can list, update and block other accounts
func (u *User) CanManageUsers() bool {
	return u.IsAdmin()
}
