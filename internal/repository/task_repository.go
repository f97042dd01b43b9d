package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// TaskListDefinition declares the filters and sorts of the task listings.
var TaskListDefinition = listquery.Definition{
	Filters: []listquery.Filter{
		listquery.Search{Param: listquery.ParamSearch, Columns: []string{"t.title", "t.description"}},
		listquery.Equals{Param: "status", Column: "t.status"},
		listquery.Equals{Param: "priority", Column: "t.priority"},
		listquery.Equals{Param: "assigned_to", Column: "t.assigned_to", Integer: true},
		listquery.Equals{Param: "project", Column: "t.project_id", Integer: true},
		listquery.DueBucket{
			Param:           "due_date",
			Column:          "t.due_date",
			StatusColumn:    "t.status",
			CompletedStatus: string(entities.StatusCompleted),
		},
	},
	Sorts: map[string]string{
		"title":      "t.title",
		"status":     "t.status",
		"priority":   "t.priority",
		"due_date":   "t.due_date",
		"created_at": "t.created_at",
	},
	DefaultSort: "created_at",
	KeyColumn:   "t.id",
}

// TaskAssigneeColumn is the column a per-user scope constrains.
const TaskAssigneeColumn = "t.assigned_to"

const taskDetailFrom = `tasks t
	LEFT JOIN projects p ON p.id = t.project_id
	LEFT JOIN users a ON a.id = t.assigned_to
	LEFT JOIN users c ON c.id = t.created_by`

const taskDetailColumns = taskColumns + `, p.name, a.name, c.name`

// TaskRepository defines the interface for task database operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*entities.Task, error)
	FindDetail(ctx context.Context, id int64) (*entities.TaskDetail, error)
	List(ctx context.Context, q *listquery.Query) ([]entities.TaskDetail, int, error)
	Stats(ctx context.Context, assignee *int64, now time.Time) (*entities.TaskStats, error)
	CountByPriority(ctx context.Context, assignee *int64) (map[entities.TaskPriority]int, error)
	Recent(ctx context.Context, assignee *int64, limit int) ([]entities.TaskDetail, error)
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create inserts a new task and returns the stored row
func (r *taskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks AS t (title, description, status, priority, due_date, project_id, assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority,
		utcOrNil(task.DueDate), task.ProjectID, task.AssignedTo, task.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// Update writes every editable column of task. The creator never changes.
func (r *taskRepository) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		UPDATE tasks AS t
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
			project_id = $6, assigned_to = $7, updated_at = NOW()
		WHERE t.id = $8
		RETURNING ` + taskColumns

	updated, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority,
		utcOrNil(task.DueDate), task.ProjectID, task.AssignedTo, task.ID))
	if err != nil {
		return nil, notFoundOr(err, "task", "failed to update task")
	}
	return updated, nil
}

// Delete removes a task
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectAffected(result, "task")
}

// FindByID finds a task by ID
func (r *taskRepository) FindByID(ctx context.Context, id int64) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "task", "failed to find task")
	}
	return task, nil
}

// FindDetail finds a task by ID joined with the names it references
func (r *taskRepository) FindDetail(ctx context.Context, id int64) (*entities.TaskDetail, error) {
	query := `SELECT ` + taskDetailColumns + ` FROM ` + taskDetailFrom + ` WHERE t.id = $1`

	detail, err := scanTaskDetail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "task", "failed to find task")
	}
	return detail, nil
}

// List returns one page of task details and the total match count
func (r *taskRepository) List(ctx context.Context, q *listquery.Query) ([]entities.TaskDetail, int, error) {
	var total int
	countSQL, countArgs := q.CountSQL("tasks t")
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	selectSQL, args := q.SelectSQL(taskDetailColumns, taskDetailFrom)
	tasks, err := r.queryDetails(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Stats counts tasks by status, optionally only those assigned to assignee.
// Overdue tasks are past due at now and not completed.
func (r *taskRepository) Stats(ctx context.Context, assignee *int64, now time.Time) (*entities.TaskStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE due_date < $5 AND status <> $4)
		FROM tasks
		WHERE ($1::BIGINT IS NULL OR assigned_to = $1)
	`

	var stats entities.TaskStats
	err := r.db.QueryRowContext(ctx, query,
		assignee, entities.StatusPending, entities.StatusInProgress, entities.StatusCompleted, now.UTC(),
	).Scan(&stats.Total, &stats.Pending, &stats.InProgress, &stats.Completed, &stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	return &stats, nil
}

// CountByPriority counts tasks per priority. Every priority is present in the
// result, zero when no task has it.
func (r *taskRepository) CountByPriority(ctx context.Context, assignee *int64) (map[entities.TaskPriority]int, error) {
	query := `
		SELECT priority, COUNT(*)
		FROM tasks
		WHERE ($1::BIGINT IS NULL OR assigned_to = $1)
		GROUP BY priority
	`

	rows, err := r.db.QueryContext(ctx, query, assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}
	defer rows.Close()

	counts := make(map[entities.TaskPriority]int, len(entities.TaskPriorities))
	for _, p := range entities.TaskPriorities {
		counts[p] = 0
	}
	for rows.Next() {
		var priority entities.TaskPriority
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, fmt.Errorf("failed to scan priority count: %w", err)
		}
		counts[priority] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate priority counts: %w", err)
	}
	return counts, nil
}

// Recent returns the newest tasks, optionally only those assigned to assignee
func (r *taskRepository) Recent(ctx context.Context, assignee *int64, limit int) ([]entities.TaskDetail, error) {
	query := `SELECT ` + taskDetailColumns + ` FROM ` + taskDetailFrom + `
		WHERE ($1::BIGINT IS NULL OR t.assigned_to = $1)
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2`

	return r.queryDetails(ctx, query, assignee, limit)
}

func (r *taskRepository) queryDetails(ctx context.Context, query string, args ...any) ([]entities.TaskDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []entities.TaskDetail
	for rows.Next() {
		detail, err := scanTaskDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTaskDetail(row rowScanner) (*entities.TaskDetail, error) {
	var project, assignee, creator sql.NullString
	task, err := scanTask(row, &project, &assignee, &creator)
	if err != nil {
		return nil, err
	}
	return &entities.TaskDetail{
		Task:         *task,
		ProjectName:  nullableString(project),
		AssigneeName: nullableString(assignee),
		CreatorName:  nullableString(creator),
	}, nil
}

// utcOrNil stores due dates in UTC
func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
