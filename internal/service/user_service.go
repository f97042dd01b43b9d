package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/listquery"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/repository"
)

const emailTakenMessage = apperrors.EmailTakenMessage

// UserService defines the interface for user management
type UserService interface {
	List(ctx context.Context, params url.Values, path string) (*models.UserListResponse, error)
	Get(ctx context.Context, id int64) (*models.UserResponse, error)
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error)
	Update(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.UserResponse, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
	cache cache.Cache
	now   func() time.Time
}

// NewUserService creates a new user service. cacheClient may be nil.
func NewUserService(users repository.UserRepository, cacheClient cache.Cache) UserService {
	return &userService{users: users, cache: cacheClient, now: time.Now}
}

// List returns one page of users matching params
func (s *userService) List(ctx context.Context, params url.Values, path string) (*models.UserListResponse, error) {
	q := repository.UserListDefinition.Build(params, s.now())

	rows, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]models.UserResponse, 0, len(rows))
	for i := range rows {
		data = append(data, models.NewUserResponse(&rows[i]))
	}
	return &models.UserListResponse{
		Page:  listquery.NewPage(q, path, data, total),
		Roles: entities.Roles,
	}, nil
}

// Get returns one user with task counts
func (s *userService) Get(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.users.FindWithCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

// Create validates and stores a new user
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	verr := validateStruct(req, nil)
	if err := s.checkEmail(ctx, verr, req.Email, 0); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &entities.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         entities.Role(req.Role),
	})
	if err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)

	resp := models.NewUserResponse(&entities.UserWithCounts{User: *user})
	return &resp, nil
}

// Update validates and stores changes to a user. The password is only
// replaced when a new one is supplied.
func (s *userService) Update(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.UserResponse, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	verr := validateStruct(req, nil)
	if err := s.checkEmail(ctx, verr, req.Email, id); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Role = entities.Role(req.Role)
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	if _, err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}
	invalidateDashboards(ctx, s.cache)

	return s.Get(ctx, id)
}

// Delete removes a user
func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDashboards(ctx, s.cache)
	return nil
}

// checkEmail adds a uniqueness error to verr unless the email already failed
// validation. Only lookup failures are returned.
func (s *userService) checkEmail(ctx context.Context, verr *apperrors.ValidationError, email string, excludeID int64) error {
	if _, bad := verr.Fields["email"]; bad || email == "" {
		return nil
	}
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("email", emailTakenMessage)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
