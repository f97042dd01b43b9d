package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// notFoundOr translates sql.ErrNoRows into a NotFound error for entity and
// wraps anything else with op.
func notFoundOr(err error, entity, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(entity)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const uniqueViolation = "23505"

// emailTakenOr turns a unique violation into the email-taken validation error
// and wraps anything else with op. The email columns carry the only unique
// constraints on users.
func emailTakenOr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.NewValidationError("email", apperrors.EmailTakenMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected turns a zero-row write into a NotFound error for entity.
func expectAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(entity)
	}
	return nil
}

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role, u.email_verified_at, u.created_at, u.updated_at`

func scanUser(row rowScanner, extra ...any) (*entities.User, error) {
	var user entities.User
	dest := append([]any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &user, nil
}

const projectColumns = `p.id, p.name, p.description, p.created_by, p.start_date, p.end_date, p.created_at, p.updated_at`

func scanProject(row rowScanner, extra ...any) (*entities.Project, error) {
	var project entities.Project
	dest := append([]any{
		&project.ID,
		&project.Name,
		&project.Description,
		&project.CreatedBy,
		&project.StartDate,
		&project.EndDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &project, nil
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.project_id, t.assigned_to, t.created_by, t.created_at, t.updated_at`

func scanTask(row rowScanner, extra ...any) (*entities.Task, error) {
	var task entities.Task
	dest := append([]any{
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.ProjectID,
		&task.AssignedTo,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &task, nil
}
