package entities

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleUser}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a user entity in the database
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Never leaves the service
	Role            Role       `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UserWithCounts is a user row together with its task counts, as produced by list queries.
type UserWithCounts struct {
	User
	AssignedTasksCount int
	CreatedTasksCount  int
}

// UserStats holds the user totals shown on the dashboard.
type UserStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
}

// NamedRef is an id/name pair used for filter option lists and resolved references.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
