package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/notify"
	"github.com/lkendi/Task-Management-System/internal/repository"
)

const noProjectMessage = "No project available to assign to the task."

// AssignmentNotifier is told about task writes once they are stored.
type AssignmentNotifier interface {
	TaskCreated(ctx context.Context, task *entities.Task)
	TaskUpdated(ctx context.Context, task *entities.Task, changed notify.FieldSet)
}

// TaskService defines the interface for task management
type TaskService interface {
	List(ctx context.Context, params url.Values, path string) (*models.TaskListResponse, error)
	ListAssigned(ctx context.Context, actor *access.Actor, params url.Values, path string) (*models.TaskListResponse, error)
	Get(ctx context.Context, id int64) (*models.TaskResponse, error)
	Create(ctx context.Context, actor *access.Actor, req *models.TaskRequest) (*models.TaskResponse, error)
	Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.TaskResponse, error)
	UpdateAssignedStatus(ctx context.Context, actor *access.Actor, id int64, req *models.UpdateTaskStatusRequest) (*models.TaskResponse, error)
	Delete(ctx context.Context, id int64) error
}

type taskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	notifier AssignmentNotifier
	cache    cache.Cache
	now      func() time.Time
}

// NewTaskService creates a new task service. cacheClient may be nil.
func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	notifier AssignmentNotifier,
	cacheClient cache.Cache,
) TaskService {
	return &taskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		notifier: notifier,
		cache:    cacheClient,
		now:      time.Now,
	}
}

// List returns one page of all tasks matching params
func (s *taskService) List(ctx context.Context, params url.Values, path string) (*models.TaskListResponse, error) {
	users, err := s.users.Options(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, params, path, users)
}

// ListAssigned returns one page of the actor's own tasks. The assignee scope
// cannot be widened by params.
func (s *taskService) ListAssigned(ctx context.Context, actor *access.Actor, params url.Values, path string) (*models.TaskListResponse, error) {
	scope := listquery.Scope{Column: repository.TaskAssigneeColumn, Value: actor.ID}
	return s.list(ctx, params, path, nil, scope)
}

func (s *taskService) list(ctx context.Context, params url.Values, path string, users []entities.NamedRef, scopes ...listquery.Scope) (*models.TaskListResponse, error) {
	now := s.now()
	q := repository.TaskListDefinition.Build(params, now, scopes...)

	rows, total, err := s.tasks.List(ctx, q)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.Options(ctx)
	if err != nil {
		return nil, err
	}

	return &models.TaskListResponse{
		Page: listquery.NewPage(q, path, models.NewTaskResponses(rows, now), total),
		Options: models.TaskOptions{
			Statuses:   entities.TaskStatuses,
			Priorities: entities.TaskPriorities,
			Users:      users,
			Projects:   projects,
		},
	}, nil
}

// Get returns one task
func (s *taskService) Get(ctx context.Context, id int64) (*models.TaskResponse, error) {
	task, err := s.tasks.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := models.NewTaskResponse(task, s.now())
	return &resp, nil
}

// Create validates and stores a task, then notifies its assignee. Without a
// project the task joins the oldest project; created_by defaults to actor.
func (s *taskService) Create(ctx context.Context, actor *access.Actor, req *models.TaskRequest) (*models.TaskResponse, error) {
	normalizeTaskRequest(req)

	verr := validateStruct(req, nil)
	if err := s.checkReferences(ctx, verr, req, referenceChecks{project: true, assignee: true, creator: true}); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if req.CreatedBy == nil {
		req.CreatedBy = &actor.ID
	}
	if req.ProjectID == nil {
		oldest, err := s.projects.Oldest(ctx)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.BadRequest(noProjectMessage)
		}
		if err != nil {
			return nil, err
		}
		req.ProjectID = &oldest.ID
	}

	task := taskFromRequest(req)
	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)
	s.notifier.TaskCreated(ctx, created)

	return s.Get(ctx, created.ID)
}

// Update applies a partial update. Only fields present in req change, and the
// notifier hears which of them actually did.
func (s *taskService) Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.TaskResponse, error) {
	existing, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := requestFromTask(existing)
	checks := referenceChecks{}
	if req.Title.Set {
		merged.Title = deref(req.Title.Value)
	}
	if req.Description.Set {
		merged.Description = req.Description.Value
	}
	if req.Status.Set {
		merged.Status = deref(req.Status.Value)
	}
	if req.Priority.Set {
		merged.Priority = deref(req.Priority.Value)
	}
	if req.DueDate.Set {
		merged.DueDate = req.DueDate.Value
	}
	if req.ProjectID.Set {
		merged.ProjectID = req.ProjectID.Value
		checks.project = true
	}
	if req.AssignedTo.Set {
		merged.AssignedTo = req.AssignedTo.Value
		checks.assignee = true
	}
	normalizeTaskRequest(merged)

	verr := validateStruct(merged, nil)
	if err := s.checkReferences(ctx, verr, merged, checks); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	next := taskFromRequest(merged)
	next.ID = existing.ID
	next.CreatedBy = existing.CreatedBy
	changed := changedFields(existing, next)
	if len(changed) == 0 {
		return s.Get(ctx, id)
	}

	updated, err := s.tasks.Update(ctx, next)
	if err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)
	s.notifier.TaskUpdated(ctx, updated, changed)

	return s.Get(ctx, id)
}

// UpdateAssignedStatus lets an assignee move their own task between statuses.
// Tasks assigned to someone else are reported as not found.
func (s *taskService) UpdateAssignedStatus(ctx context.Context, actor *access.Actor, id int64, req *models.UpdateTaskStatusRequest) (*models.TaskResponse, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo == nil || *task.AssignedTo != actor.ID {
		return nil, apperrors.NotFound("task")
	}

	req.Status = strings.TrimSpace(req.Status)
	if err := validateStruct(req, nil).OrNil(); err != nil {
		return nil, err
	}

	status := entities.TaskStatus(req.Status)
	if task.Status != status {
		task.Status = status
		if _, err := s.tasks.Update(ctx, task); err != nil {
			return nil, err
		}
		invalidateDashboards(ctx, s.cache)
	}
	return s.Get(ctx, id)
}

// Delete removes a task
func (s *taskService) Delete(ctx context.Context, id int64) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDashboards(ctx, s.cache)
	return nil
}

type referenceChecks struct {
	project, assignee, creator bool
}

// checkReferences verifies that the ids named by req exist. Stored references
// that were not touched are not rechecked, so a dangling id can survive an
// unrelated edit.
func (s *taskService) checkReferences(ctx context.Context, verr *apperrors.ValidationError, req *models.TaskRequest, checks referenceChecks) error {
	type ref struct {
		field  string
		id     *int64
		exists func(context.Context, int64) (bool, error)
	}
	var refs []ref
	if checks.project {
		refs = append(refs, ref{"project_id", req.ProjectID, s.projects.Exists})
	}
	if checks.assignee {
		refs = append(refs, ref{"assigned_to", req.AssignedTo, s.users.Exists})
	}
	if checks.creator {
		refs = append(refs, ref{"created_by", req.CreatedBy, s.users.Exists})
	}

	for _, r := range refs {
		if r.id == nil {
			continue
		}
		if _, bad := verr.Fields[r.field]; bad {
			continue
		}
		ok, err := r.exists(ctx, *r.id)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add(r.field, "The selected "+strings.ReplaceAll(r.field, "_", " ")+" is invalid.")
		}
	}
	return nil
}

func normalizeTaskRequest(req *models.TaskRequest) {
	req.Title = strings.TrimSpace(req.Title)
	req.Status = strings.TrimSpace(req.Status)
	req.Priority = strings.TrimSpace(req.Priority)
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		req.Description = nil
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) == "" {
		req.DueDate = nil
	}
}

// taskFromRequest converts a validated request into a task row.
func taskFromRequest(req *models.TaskRequest) *entities.Task {
	task := &entities.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      entities.TaskStatus(req.Status),
		Priority:    entities.TaskPriority(req.Priority),
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   req.CreatedBy,
	}
	if req.DueDate != nil {
		if due, err := parseDueDate(*req.DueDate); err == nil {
			due = due.UTC()
			task.DueDate = &due
		}
	}
	return task
}

func requestFromTask(task *entities.Task) *models.TaskRequest {
	req := &models.TaskRequest{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		ProjectID:   task.ProjectID,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC().Format(time.RFC3339Nano)
		req.DueDate = &due
	}
	return req
}

// changedFields lists the columns whose values differ between before and after.
func changedFields(before, after *entities.Task) notify.FieldSet {
	changed := notify.NewFieldSet()
	if before.Title != after.Title {
		changed.Add("title")
	}
	if !equalPtr(before.Description, after.Description) {
		changed.Add("description")
	}
	if before.Status != after.Status {
		changed.Add("status")
	}
	if before.Priority != after.Priority {
		changed.Add("priority")
	}
	if !equalTimePtr(before.DueDate, after.DueDate) {
		changed.Add("due_date")
	}
	if !equalPtr(before.ProjectID, after.ProjectID) {
		changed.Add("project_id")
	}
	if !equalPtr(before.AssignedTo, after.AssignedTo) {
		changed.Add(notify.FieldAssignedTo)
	}
	return changed
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
