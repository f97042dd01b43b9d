package models

import (
	"time"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// ProjectRequest represents the request body for creating or updating a project
type ProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=65535"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// ProjectResponse is the project projection. Dates are calendar dates.
type ProjectResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	CreatedBy   *entities.NamedRef `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewProjectResponse projects a project row. A creator that no longer exists
// renders as null.
func NewProjectResponse(p *entities.ProjectDetail) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.Format(listquery.DateLayout),
		EndDate:     p.EndDate.Format(listquery.DateLayout),
		CreatedAt:   p.CreatedAt,
	}
	if p.CreatorName != nil {
		resp.CreatedBy = &entities.NamedRef{ID: p.CreatedBy, Name: *p.CreatorName}
	}
	return resp
}

// ProjectListResponse is one page of projects plus the creator filter options
type ProjectListResponse struct {
	listquery.Page[ProjectResponse]
	Users []entities.NamedRef `json:"users"`
}
