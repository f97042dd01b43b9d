package entities

import "time"

// Project represents a project entity in the database. StartDate and EndDate are
// calendar dates stored at midnight UTC.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDetail is a project joined with its creator's name. CreatorName is nil when
// the creator row no longer exists.
type ProjectDetail struct {
	Project
	CreatorName *string
}
