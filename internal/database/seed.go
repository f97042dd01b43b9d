package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/repository"
)

// SeedPassword is the password of every demo account.
const SeedPassword = "password"

type seedTask struct {
	title       string
	description string
	priority    entities.TaskPriority
	dueInDays   int
	project     int
	assignAdmin bool
}

var seedTasks = []seedTask{
	{"Design Homepage Layout", "Create wireframes and mockups for the new homepage design", entities.PriorityHigh, 7, 0, true},
	{"Implement Navigation Menu", "Build responsive navigation menu with dropdown functionality", entities.PriorityMedium, 10, 0, false},
	{"Optimize Page Performance", "Improve page load times and optimize images and scripts", entities.PriorityHigh, 14, 0, false},
	{"Setup Development Environment", "Configure React Native development environment and project structure", entities.PriorityHigh, 3, 1, false},
	{"Design App UI/UX", "Create user interface designs and user experience flows", entities.PriorityMedium, 12, 1, false},
	{"Implement Authentication", "Build user authentication system with login and registration", entities.PriorityHigh, 20, 1, false},
	{"API Integration", "Integrate backend APIs for data fetching and user management", entities.PriorityMedium, 25, 1, false},
}

// Seeder creates the demo data set through the repositories.
type Seeder struct {
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	Now      func() time.Time
}

// Seed inserts an admin, a regular user, two projects and seven tasks. It does
// nothing when the demo admin already exists.
func (s *Seeder) Seed(ctx context.Context) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC()

	if _, err := s.Users.FindByEmail(ctx, "admin@example.com"); err == nil {
		logging.Logger.Info("Demo data already present, skipping seed")
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("seed: check admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	admin, err := s.Users.Create(ctx, &entities.User{
		Name:            "Test Admin",
		Email:           "admin@example.com",
		PasswordHash:    string(hash),
		Role:            entities.RoleAdmin,
		EmailVerifiedAt: &ts,
	})
	if err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	if _, err := s.Users.Create(ctx, &entities.User{
		Name:            "Test User",
		Email:           "user@example.com",
		PasswordHash:    string(hash),
		Role:            entities.RoleUser,
		EmailVerifiedAt: &ts,
	}); err != nil {
		return fmt.Errorf("seed: create user: %w", err)
	}

	today := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	projectSeeds := []struct{ name, description string }{
		{"Website Redesign", "Complete redesign of the company website with modern UI/UX improvements and responsive design."},
		{"Mobile App Development", "Development of a cross-platform mobile application for iOS and Android platforms."},
	}
	projects := make([]*entities.Project, 0, len(projectSeeds))
	for _, p := range projectSeeds {
		description := p.description
		project, err := s.Projects.Create(ctx, &entities.Project{
			Name:        p.name,
			Description: &description,
			CreatedBy:   admin.ID,
			StartDate:   today,
			EndDate:     today.AddDate(0, 0, 30),
		})
		if err != nil {
			return fmt.Errorf("seed: create project %q: %w", p.name, err)
		}
		projects = append(projects, project)
	}

	for _, st := range seedTasks {
		description := st.description
		due := ts.AddDate(0, 0, st.dueInDays)
		task := &entities.Task{
			Title:       st.title,
			Description: &description,
			Status:      entities.StatusPending,
			Priority:    st.priority,
			DueDate:     &due,
			ProjectID:   &projects[st.project].ID,
			CreatedBy:   &admin.ID,
		}
		if st.assignAdmin {
			task.AssignedTo = &admin.ID
		}
		if _, err := s.Tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("seed: create task %q: %w", st.title, err)
		}
	}

	logging.Logger.WithField("tasks", len(seedTasks)).Info("Demo data seeded")
	return nil
}
