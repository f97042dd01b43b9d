package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// ProjectListDefinition declares the filters and sorts of the project listing.
var ProjectListDefinition = listquery.Definition{
	Filters: []listquery.Filter{
		listquery.Search{Param: listquery.ParamSearch, Columns: []string{"p.name", "p.description"}},
		listquery.Equals{Param: "created_by", Column: "p.created_by", Integer: true},
		listquery.Range{FromParam: "starts_from", ToParam: "ends_before", Column: "p.start_date", ToColumn: "p.end_date"},
	},
	Sorts: map[string]string{
		"name":       "p.name",
		"start_date": "p.start_date",
		"end_date":   "p.end_date",
		"created_at": "p.created_at",
	},
	DefaultSort: "created_at",
	KeyColumn:   "p.id",
}

const projectDetailFrom = `projects p LEFT JOIN users c ON c.id = p.created_by`

// ProjectRepository defines the interface for project database operations
type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) (*entities.Project, error)
	Update(ctx context.Context, project *entities.Project) (*entities.Project, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*entities.Project, error)
	FindDetail(ctx context.Context, id int64) (*entities.ProjectDetail, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Oldest(ctx context.Context) (*entities.Project, error)
	List(ctx context.Context, q *listquery.Query) ([]entities.ProjectDetail, int, error)
	Options(ctx context.Context) ([]entities.NamedRef, error)
}

type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project and returns the stored row
func (r *projectRepository) Create(ctx context.Context, project *entities.Project) (*entities.Project, error) {
	query := `
		INSERT INTO projects AS p (name, description, created_by, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns

	created, err := scanProject(r.db.QueryRowContext(ctx, query,
		project.Name, project.Description, project.CreatedBy, project.StartDate, project.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

// Update writes the editable columns of project. The creator never changes.
func (r *projectRepository) Update(ctx context.Context, project *entities.Project) (*entities.Project, error) {
	query := `
		UPDATE projects AS p
		SET name = $1, description = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE p.id = $5
		RETURNING ` + projectColumns

	updated, err := scanProject(r.db.QueryRowContext(ctx, query,
		project.Name, project.Description, project.StartDate, project.EndDate, project.ID))
	if err != nil {
		return nil, notFoundOr(err, "project", "failed to update project")
	}
	return updated, nil
}

// Delete removes a project. Its tasks keep the dangling project id.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectAffected(result, "project")
}

// FindByID finds a project by ID
func (r *projectRepository) FindByID(ctx context.Context, id int64) (*entities.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "project", "failed to find project")
	}
	return project, nil
}

// FindDetail finds a project by ID joined with its creator's name
func (r *projectRepository) FindDetail(ctx context.Context, id int64) (*entities.ProjectDetail, error) {
	query := `SELECT ` + projectColumns + `, c.name FROM ` + projectDetailFrom + ` WHERE p.id = $1`

	var creator sql.NullString
	project, err := scanProject(r.db.QueryRowContext(ctx, query, id), &creator)
	if err != nil {
		return nil, notFoundOr(err, "project", "failed to find project")
	}
	return &entities.ProjectDetail{Project: *project, CreatorName: nullableString(creator)}, nil
}

// Exists reports whether a project row with id exists
func (r *projectRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists, nil
}

// Oldest returns the first project ever created, or a NotFound error when
// there are none
func (r *projectRepository) Oldest(ctx context.Context) (*entities.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p ORDER BY p.created_at ASC, p.id ASC LIMIT 1`

	project, err := scanProject(r.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, notFoundOr(err, "project", "failed to find oldest project")
	}
	return project, nil
}

// List returns one page of projects with creator names and the total match count
func (r *projectRepository) List(ctx context.Context, q *listquery.Query) ([]entities.ProjectDetail, int, error) {
	var total int
	countSQL, countArgs := q.CountSQL("projects p")
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	selectSQL, args := q.SelectSQL(projectColumns+", c.name", projectDetailFrom)
	rows, err := r.db.QueryContext(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []entities.ProjectDetail
	for rows.Next() {
		var creator sql.NullString
		project, err := scanProject(rows, &creator)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, entities.ProjectDetail{Project: *project, CreatorName: nullableString(creator)})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, total, nil
}

// Options lists every project as an id/name pair, ordered by name
func (r *projectRepository) Options(ctx context.Context) ([]entities.NamedRef, error) {
	return namedRefs(ctx, r.db, `SELECT id, name FROM projects ORDER BY name, id`)
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
