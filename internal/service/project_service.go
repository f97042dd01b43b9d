package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/repository"
)

var projectMessages = map[string]string{
	"start_date.required": "The start date is required.",
	"end_date.required":   "The end date is required.",
}

const endBeforeStartMessage = "The end date must be after the start date."

// ProjectService defines the interface for project management
type ProjectService interface {
	List(ctx context.Context, params url.Values, path string) (*models.ProjectListResponse, error)
	Get(ctx context.Context, id int64) (*models.ProjectResponse, error)
	Create(ctx context.Context, actor *access.Actor, req *models.ProjectRequest) (*models.ProjectResponse, error)
	Update(ctx context.Context, id int64, req *models.ProjectRequest) (*models.ProjectResponse, error)
	Delete(ctx context.Context, id int64) error
}

type projectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	cache    cache.Cache
	now      func() time.Time
}

// NewProjectService creates a new project service. cacheClient may be nil.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, cacheClient cache.Cache) ProjectService {
	return &projectService{projects: projects, users: users, cache: cacheClient, now: time.Now}
}

// List returns one page of projects matching params
func (s *projectService) List(ctx context.Context, params url.Values, path string) (*models.ProjectListResponse, error) {
	q := repository.ProjectListDefinition.Build(params, s.now())

	rows, total, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Options(ctx)
	if err != nil {
		return nil, err
	}

	data := make([]models.ProjectResponse, 0, len(rows))
	for i := range rows {
		data = append(data, models.NewProjectResponse(&rows[i]))
	}
	return &models.ProjectListResponse{
		Page:  listquery.NewPage(q, path, data, total),
		Users: users,
	}, nil
}

// Get returns one project
func (s *projectService) Get(ctx context.Context, id int64) (*models.ProjectResponse, error) {
	project, err := s.projects.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := models.NewProjectResponse(project)
	return &resp, nil
}

// Create validates and stores a project owned by actor
func (s *projectService) Create(ctx context.Context, actor *access.Actor, req *models.ProjectRequest) (*models.ProjectResponse, error) {
	start, end, err := validateProject(req)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.Create(ctx, &entities.Project{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)
	return s.Get(ctx, project.ID)
}

// Update validates and stores changes to a project
func (s *projectService) Update(ctx context.Context, id int64, req *models.ProjectRequest) (*models.ProjectResponse, error) {
	existing, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := validateProject(req)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.StartDate = start
	existing.EndDate = end
	if _, err := s.projects.Update(ctx, existing); err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)
	return s.Get(ctx, id)
}

// Delete removes a project. Its tasks are kept.
func (s *projectService) Delete(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDashboards(ctx, s.cache)
	return nil
}

// validateProject checks req and returns its parsed dates.
func validateProject(req *models.ProjectRequest) (time.Time, time.Time, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		req.Description = nil
	}

	verr := validateStruct(req, projectMessages)

	start, startErr := time.Parse(listquery.DateLayout, req.StartDate)
	end, endErr := time.Parse(listquery.DateLayout, req.EndDate)
	if startErr == nil && endErr == nil && !end.After(start) {
		verr.Add("end_date", endBeforeStartMessage)
	}

	if err := verr.OrNil(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
