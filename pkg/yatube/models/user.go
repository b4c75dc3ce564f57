package models

import (
	"time"
)

// SystemRole represents a user's system-wide role
type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
	SystemRoleUser  SystemRole = "user"
)

// User represents an author account.
// Users are hard-deleted; the database cascades the delete to their posts,
// comments and follow edges.
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Username     string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string     `gorm:"size:254" json:"email"`
	FirstName    string     `gorm:"size:150" json:"first_name,omitempty"`
	LastName     string     `gorm:"size:150" json:"last_name,omitempty"`
	PasswordHash string     `json:"-"`
	SystemRole   SystemRole `gorm:"type:varchar(20);default:'user'" json:"system_role"`
}

// FullName returns "First Last", falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// IsAdmin reports whether the user has the admin system role
func (u User) IsAdmin() bool {
	return u.SystemRole == SystemRoleAdmin
}
