package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the privileged role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
