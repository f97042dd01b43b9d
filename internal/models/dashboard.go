package models

import "github.com/lkendi/Task-Management-System/internal/entities"

// DashboardResponse carries the dashboard aggregates. Users is only present
// on the global dashboard.
type DashboardResponse struct {
	Tasks       entities.TaskStats  `json:"tasks"`
	Users       *entities.UserStats `json:"users,omitempty"`
	Priorities  map[string]int      `json:"priorities"`
	RecentTasks []TaskResponse      `json:"recent_tasks"`
}
