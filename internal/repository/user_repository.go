package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

// UserListDefinition declares the filters and sorts of the user listing.
var UserListDefinition = listquery.Definition{
	Filters: []listquery.Filter{
		listquery.Search{Param: listquery.ParamSearch, Columns: []string{"u.name", "u.email"}},
		listquery.Equals{Param: "role", Column: "u.role"},
		listquery.TriState{Param: "verified", Column: "u.email_verified_at"},
	},
	Sorts: map[string]string{
		"name":                 "u.name",
		"email":                "u.email",
		"created_at":           "u.created_at",
		"assigned_tasks_count": "assigned_tasks_count",
		"created_tasks_count":  "created_tasks_count",
	},
	DefaultSort: "created_at",
	KeyColumn:   "u.id",
}

const userCountColumns = `,
	(SELECT COUNT(*) FROM tasks ta WHERE ta.assigned_to = u.id) AS assigned_tasks_count,
	(SELECT COUNT(*) FROM tasks tc WHERE tc.created_by = u.id) AS created_tasks_count`

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) (*entities.User, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	FindWithCounts(ctx context.Context, id int64) (*entities.UserWithCounts, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, q *listquery.Query) ([]entities.UserWithCounts, int, error)
	Options(ctx context.Context) ([]entities.NamedRef, error)
	Stats(ctx context.Context) (*entities.UserStats, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user and returns the stored row
func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users AS u (name, email, password_hash, role, email_verified_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.EmailVerifiedAt))
	if err != nil {
		return nil, emailTakenOr(err, "failed to create user")
	}
	return created, nil
}

// Update writes every mutable column of user
func (r *userRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		UPDATE users AS u
		SET name = $1, email = $2, password_hash = $3, role = $4, updated_at = NOW()
		WHERE u.id = $5
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, emailTakenOr(err, "failed to update user")
	}
	return updated, nil
}

// Delete removes a user. Tasks and projects keep their now dangling references.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(result, "user")
}

// FindByID finds a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "user", "failed to find user")
	}
	return user, nil
}

// FindWithCounts finds a user by ID together with its task counts
func (r *userRepository) FindWithCounts(ctx context.Context, id int64) (*entities.UserWithCounts, error) {
	query := `SELECT ` + userColumns + userCountColumns + ` FROM users u WHERE u.id = $1`

	var assigned, created int
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id), &assigned, &created)
	if err != nil {
		return nil, notFoundOr(err, "user", "failed to find user")
	}
	return &entities.UserWithCounts{User: *user, AssignedTasksCount: assigned, CreatedTasksCount: created}, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFoundOr(err, "user", "failed to find user")
	}
	return user, nil
}

// EmailTaken reports whether another user already owns email
func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`,
		email, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}

// Exists reports whether a user row with id exists
func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// List returns one page of users with their task counts and the total match count
func (r *userRepository) List(ctx context.Context, q *listquery.Query) ([]entities.UserWithCounts, int, error) {
	var total int
	countSQL, countArgs := q.CountSQL("users u")
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	selectSQL, args := q.SelectSQL(userColumns+userCountColumns, "users u")
	rows, err := r.db.QueryContext(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []entities.UserWithCounts
	for rows.Next() {
		var assigned, created int
		user, err := scanUser(rows, &assigned, &created)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, entities.UserWithCounts{User: *user, AssignedTasksCount: assigned, CreatedTasksCount: created})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

// Options lists every user as an id/name pair, ordered by name
func (r *userRepository) Options(ctx context.Context) ([]entities.NamedRef, error) {
	return namedRefs(ctx, r.db, `SELECT id, name FROM users ORDER BY name, id`)
}

// Stats counts all users and verified users
func (r *userRepository) Stats(ctx context.Context) (*entities.UserStats, error) {
	var stats entities.UserStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(email_verified_at) FROM users`,
	).Scan(&stats.Total, &stats.Verified)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &stats, nil
}

func namedRefs(ctx context.Context, db *sql.DB, query string) ([]entities.NamedRef, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	refs := []entities.NamedRef{}
	for rows.Next() {
		var ref entities.NamedRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
