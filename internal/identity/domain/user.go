package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID    string
	Email string
	Role  Role
	Name  string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}
