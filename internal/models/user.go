package models

import (
	"time"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,letterdigit"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	Role                 string `json:"role" validate:"required,oneof=admin user"`
}

// UpdateUserRequest represents the request body for updating a user. An empty
// password keeps the current one.
type UpdateUserRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"omitempty,min=8,letterdigit"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	Role                 string `json:"role" validate:"required,oneof=admin user"`
}

// UserResponse is the user projection returned by every user endpoint
type UserResponse struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	Roles              []string   `json:"roles"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at"`
	CreatedAt          time.Time  `json:"created_at"`
	AssignedTasksCount int        `json:"assigned_tasks_count"`
	CreatedTasksCount  int        `json:"created_tasks_count"`
}

func NewUserResponse(u *entities.UserWithCounts) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               string(u.Role),
		Roles:              []string{string(u.Role)},
		EmailVerifiedAt:    u.EmailVerifiedAt,
		CreatedAt:          u.CreatedAt,
		AssignedTasksCount: u.AssignedTasksCount,
		CreatedTasksCount:  u.CreatedTasksCount,
	}
}

// UserListResponse is one page of users plus the role filter options
type UserListResponse struct {
	listquery.Page[UserResponse]
	Roles []entities.Role `json:"roles"`
}
