// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered account. Password holds the bcrypt hash, never the
// plaintext. Salt scopes the validity of every token issued to the user:
// rotating it invalidates all of them.
type User struct {
	ID        string
	UserName  string
	Email     string
	Password  string
	Salt      string
	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a named permission group; users and roles are many-to-many.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authority renders the role the way it is exposed to callers, e.g. ROLE_ADMIN.
func (r Role) Authority() string {
	return "ROLE_" + strings.ToUpper(r.Name)
}

// RoleNames returns the caller-facing names of all the user's roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Authority())
	}
	return names
}

func (u *User) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", u.ID, u.UserName, u.Email, u.CreatedAt.Format(time.RFC3339))
}

// UserFilter selects users by any combination of exact-match fields. Empty
// fields are ignored.
type UserFilter struct {
	ID       string
	UserName string
	Email    string
}

// UserUpdate carries the optional changes applied to a user profile.
// PasswordHash and Salt are set by the service, never from request input.
type UserUpdate struct {
	ID           string
	UserName     *string
	Email        *string
	PasswordHash *string
	Salt         *string
}
