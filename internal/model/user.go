package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the coarse capability attached to a user and carried in session tokens.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleSeller Role = "SELLER"
)

// ParseRole normalises a role name. Unknown roles are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleClient:
		return RoleClient, nil
	case RoleSeller:
		return RoleSeller, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// User is owned by the user service. Password holds the bcrypt hash and is never serialised.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
