package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/repository"
)

const (
	// RecentTaskLimit is how many tasks the dashboard lists.
	RecentTaskLimit = 5

	dashboardVersionKey = "dashboard:version"
	dashboardTTL        = time.Minute
)

// DashboardService defines the interface for dashboard aggregates
type DashboardService interface {
	Global(ctx context.Context) (*models.DashboardResponse, error)
	ForUser(ctx context.Context, actor *access.Actor) (*models.DashboardResponse, error)
}

type dashboardService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	cache cache.Cache
	now   func() time.Time
}

// NewDashboardService creates a new dashboard service. cacheClient may be nil.
func NewDashboardService(tasks repository.TaskRepository, users repository.UserRepository, cacheClient cache.Cache) DashboardService {
	return &dashboardService{
		tasks: tasks,
		users: users,
		cache: cacheClient,
		now:   time.Now,
	}
}

// Global aggregates over every task and user
func (s *dashboardService) Global(ctx context.Context) (*models.DashboardResponse, error) {
	return s.aggregate(ctx, "global", nil)
}

// ForUser aggregates over the tasks assigned to actor
func (s *dashboardService) ForUser(ctx context.Context, actor *access.Actor) (*models.DashboardResponse, error) {
	return s.aggregate(ctx, fmt.Sprintf("user:%d", actor.ID), &actor.ID)
}

// dashboardSnapshot is the part of a dashboard that does not depend on the
// clock and may be served from the cache.
type dashboardSnapshot struct {
	Users      *entities.UserStats   `json:"users,omitempty"`
	Priorities map[string]int        `json:"priorities"`
	Recent     []entities.TaskDetail `json:"recent"`
}

// aggregate counts statuses live on every call, since the overdue count moves
// with the clock, and takes the rest from the cached snapshot. Overdue flags
// on the recent tasks are derived from now after the snapshot is read.
func (s *dashboardService) aggregate(ctx context.Context, scope string, assignee *int64) (*models.DashboardResponse, error) {
	now := s.now()

	var (
		stats *entities.TaskStats
		snap  *dashboardSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.tasks.Stats(gctx, assignee, now)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.cached(gctx, scope, func(ctx context.Context) (*dashboardSnapshot, error) {
			return s.snapshot(ctx, assignee)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &models.DashboardResponse{
		Tasks:       *stats,
		Users:       snap.Users,
		Priorities:  snap.Priorities,
		RecentTasks: models.NewTaskResponses(snap.Recent, now),
	}, nil
}

func (s *dashboardService) snapshot(ctx context.Context, assignee *int64) (*dashboardSnapshot, error) {
	snap := &dashboardSnapshot{}

	var priorities map[entities.TaskPriority]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		priorities, err = s.tasks.CountByPriority(gctx, assignee)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Recent, err = s.tasks.Recent(gctx, assignee, RecentTaskLimit)
		return err
	})
	if assignee == nil {
		g.Go(func() error {
			var err error
			snap.Users, err = s.users.Stats(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Priorities = make(map[string]int, len(entities.TaskPriorities))
	for _, p := range entities.TaskPriorities {
		snap.Priorities[string(p)] = priorities[p]
	}
	return snap, nil
}

// cached serves scope from the cache when possible. Entries are keyed by the
// current dashboard version, so a write that bumps it orphans every entry.
func (s *dashboardService) cached(ctx context.Context, scope string, load func(context.Context) (*dashboardSnapshot, error)) (*dashboardSnapshot, error) {
	if s.cache == nil {
		return load(ctx)
	}

	version, err := s.cache.Get(ctx, dashboardVersionKey)
	if errors.Is(err, cache.ErrMiss) {
		version = "0"
	} else if err != nil {
		logging.Logger.WithError(err).Warn("Dashboard cache unavailable")
		return load(ctx)
	}
	key := fmt.Sprintf("dashboard:v%s:%s", version, scope)

	var snap dashboardSnapshot
	if err := s.cache.GetJSON(ctx, key, &snap); err == nil {
		return &snap, nil
	}

	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, fresh, dashboardTTL); err != nil {
		logging.Logger.WithError(err).Warn("Failed to cache dashboard")
	}
	return fresh, nil
}

// invalidateDashboards bumps the dashboard version after a write. A nil cache
// or a failed bump only costs staleness up to dashboardTTL.
func invalidateDashboards(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if _, err := c.Incr(ctx, dashboardVersionKey); err != nil {
		logging.Logger.WithError(err).Warn("Failed to invalidate dashboard cache")
	}
}
