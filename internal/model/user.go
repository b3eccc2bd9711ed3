package model

import "time"

type UserID string

type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// User identifies an author. Posts reference users by ID and never embed
// them.
type User struct {
	ID        UserID
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}
