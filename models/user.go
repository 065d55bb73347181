package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role a user holds on the blog
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Permission names a capability granted through a role
type Permission string

const (
	PermissionManagePosts    Permission = "manage_posts"
	PermissionManageComments Permission = "manage_comments"
	PermissionManageUsers    Permission = "manage_users"
)

// rolePermissions mirrors the seeded role table: admins hold every
// permission, regular users manage their own posts and comments.
var rolePermissions = map[UserRole][]Permission{
	RoleAdmin: {PermissionManagePosts, PermissionManageComments, PermissionManageUsers},
	RoleUser:  {PermissionManagePosts, PermissionManageComments},
}

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Admin        bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new non-admin User. The email is stored lower-cased.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Admin
}

// Role derives the role from the admin flag
func (u *User) Role() UserRole {
	if u.Admin {
		return RoleAdmin
	}
	return RoleUser
}

// Can reports whether the user's role carries the permission
func (u *User) Can(p Permission) bool {
	for _, granted := range rolePermissions[u.Role()] {
		if granted == p {
			return true
		}
	}
	return false
}

// Summary returns the public projection embedded in posts and comments
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the author block rendered alongside posts and comments
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
