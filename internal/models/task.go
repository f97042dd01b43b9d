package models

import (
	"time"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// UnknownProjectName stands in for a project that no longer exists.
const UnknownProjectName = "Unknown Project"

// TaskRequest represents the request body for creating a task. It is also the
// shape a partial update is merged into before validation.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=65535"`
	Status      string  `json:"status" validate:"required,oneof=pending in_progress completed"`
	Priority    string  `json:"priority" validate:"required,oneof=high medium low"`
	DueDate     *string `json:"due_date" validate:"omitempty,duedate"`
	ProjectID   *int64  `json:"project_id" validate:"omitempty,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	CreatedBy   *int64  `json:"created_by" validate:"omitempty,gt=0"`
}

// UpdateTaskRequest is a partial task update. Absent fields are left alone; a
// null clears a nullable field.
type UpdateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Status      Optional[string] `json:"status"`
	Priority    Optional[string] `json:"priority"`
	DueDate     Optional[string] `json:"due_date"`
	ProjectID   Optional[int64]  `json:"project_id"`
	AssignedTo  Optional[int64]  `json:"assigned_to"`
}

// UpdateTaskStatusRequest is the body an assignee sends to move their own task
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// TaskResponse is the task projection shared by listings, read-one and the
// dashboard
type TaskResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	DueDate     *time.Time         `json:"due_date"`
	Project     *entities.NamedRef `json:"project"`
	AssignedTo  *entities.NamedRef `json:"assigned_to"`
	CreatedBy   *entities.NamedRef `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	IsOverdue   bool               `json:"is_overdue"`
}

// NewTaskResponse projects a task row as seen at now. A dangling project id
// renders as "Unknown Project"; dangling user ids render as null.
func NewTaskResponse(t *entities.TaskDetail, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		AssignedTo:  namedRef(t.AssignedTo, t.AssigneeName),
		CreatedBy:   namedRef(t.CreatedBy, t.CreatorName),
		CreatedAt:   t.CreatedAt,
		IsOverdue:   t.IsOverdue(now),
	}
	if t.ProjectID != nil {
		name := UnknownProjectName
		if t.ProjectName != nil {
			name = *t.ProjectName
		}
		resp.Project = &entities.NamedRef{ID: *t.ProjectID, Name: name}
	}
	return resp
}

// NewTaskResponses projects a slice of task rows
func NewTaskResponses(tasks []entities.TaskDetail, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i], now))
	}
	return out
}

func namedRef(id *int64, name *string) *entities.NamedRef {
	if id == nil || name == nil {
		return nil
	}
	return &entities.NamedRef{ID: *id, Name: *name}
}

// TaskOptions are the choices offered by the task filter widgets
type TaskOptions struct {
	Statuses   []entities.TaskStatus   `json:"statuses"`
	Priorities []entities.TaskPriority `json:"priorities"`
	Users      []entities.NamedRef     `json:"users,omitempty"`
	Projects   []entities.NamedRef     `json:"projects"`
}

// TaskListResponse is one page of tasks plus the filter options
type TaskListResponse struct {
	listquery.Page[TaskResponse]
	Options TaskOptions `json:"options"`
}
