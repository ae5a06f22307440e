package model

import "time"

// UserID uniquely identifies a user account
type UserID uint

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

// Roles lists every valid role
var Roles = []Role{RoleAdmin, RoleCoach, RolePlayer}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RolePlayer:
		return true
	}
	return false
}

// SelfRegistrable reports whether an end user may sign up with this role.
// Admin accounts are only ever created by seeding.
func (r Role) SelfRegistrable() bool {
	return r == RoleCoach || r == RolePlayer
}

func (r Role) String() string {
	return string(r)
}

// User is a login account
type User struct {
	ID           UserID
	Username     string // unique, case-sensitive
	PasswordHash string
	Email        *string
	Role         Role
	CreatedAt    time.Time
}

// Actor is the identity an operation is performed on behalf of
type Actor struct {
	UserID UserID
	Role   Role
}

// Actor returns the acting identity for this user
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}
