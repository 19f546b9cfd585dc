package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Firstname    string    `db:"firstname" json:"firstname"`
	Lastname     string    `db:"lastname" json:"lastname"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Firstname    string
	Lastname     string
	Role         Role
}

// UserPatch enumerates the user fields a PUT request may change.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
}

type UpdateUserParams struct {
	Username     *string
	PasswordHash *string
	Role         *Role
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	UserID string
	Role   Role
}

// IsStaff reports whether the actor may operate stations and sessions.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleStaff
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
