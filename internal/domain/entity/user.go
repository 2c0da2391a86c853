package entity

import "strings"

// User is a login-capable account.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	ApprovedAt   string `json:"approvedAt,omitempty"`
	ApprovedByID string `json:"approvedById,omitempty"`
	PasswordHash string `json:"-"`
}

// UserRef is the compact user reference embedded in letters.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Ref() UserRef {
	return UserRef{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// NormalizeEmail lowercases and trims an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
