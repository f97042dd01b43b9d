package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/cache"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/repository/mocks"
)

// memoryCache is a map-backed cache.Cache for tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), ttl)
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	v, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v), dest)
}

func TestGlobalDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewDashboardService(tasks, users, nil).(*dashboardService)
	svc.now = func() time.Time { return testNow }

	var noAssignee *int64
	tasks.EXPECT().Stats(gomock.Any(), noAssignee, testNow).
		Return(&entities.TaskStats{Total: 4, Pending: 2, Completed: 2, Overdue: 1}, nil)
	tasks.EXPECT().CountByPriority(gomock.Any(), noAssignee).
		Return(map[entities.TaskPriority]int{entities.PriorityHigh: 3}, nil)
	tasks.EXPECT().Recent(gomock.Any(), noAssignee, RecentTaskLimit).
		Return([]entities.TaskDetail{{Task: entities.Task{ID: 1, Title: "T"}}}, nil)
	users.EXPECT().Stats(gomock.Any()).Return(&entities.UserStats{Total: 2, Verified: 1}, nil)

	resp, err := svc.Global(context.Background())
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}
	if resp.Tasks.Total != 4 || resp.Tasks.Overdue != 1 {
		t.Errorf("tasks = %+v", resp.Tasks)
	}
	if resp.Users == nil || resp.Users.Verified != 1 {
		t.Errorf("users = %+v", resp.Users)
	}
	want := map[string]int{"high": 3, "medium": 0, "low": 0}
	for k, v := range want {
		if got, ok := resp.Priorities[k]; !ok || got != v {
			t.Errorf("priorities[%s] = %d, want %d", k, got, v)
		}
	}
	if len(resp.RecentTasks) != 1 {
		t.Errorf("recent = %v", resp.RecentTasks)
	}
}

func TestUserDashboardIsScopedAndOmitsUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewDashboardService(tasks, users, nil)

	actor := &access.Actor{ID: 5}
	tasks.EXPECT().Stats(gomock.Any(), &actor.ID, gomock.Any()).Return(&entities.TaskStats{}, nil)
	tasks.EXPECT().CountByPriority(gomock.Any(), &actor.ID).Return(map[entities.TaskPriority]int{}, nil)
	tasks.EXPECT().Recent(gomock.Any(), &actor.ID, RecentTaskLimit).Return(nil, nil)

	resp, err := svc.ForUser(context.Background(), actor)
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	if resp.Users != nil {
		t.Error("user dashboard must not carry user totals")
	}
	if resp.RecentTasks == nil || len(resp.RecentTasks) != 0 {
		t.Errorf("recent = %#v, want empty slice", resp.RecentTasks)
	}
}

func TestDashboardErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewDashboardService(tasks, users, nil)

	boom := errors.New("boom")
	tasks.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)
	tasks.EXPECT().CountByPriority(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	tasks.EXPECT().Recent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	users.EXPECT().Stats(gomock.Any()).Return(&entities.UserStats{}, nil).AnyTimes()

	if _, err := svc.Global(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestDashboardCacheInvalidatedByWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	c := newMemoryCache()
	svc := NewDashboardService(tasks, users, c)

	// Status counts are read on every call. The rest loads twice: once to fill
	// the cache and once after the invalidation.
	tasks.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any()).Return(&entities.TaskStats{Total: 1}, nil).Times(3)
	tasks.EXPECT().CountByPriority(gomock.Any(), gomock.Any()).Return(map[entities.TaskPriority]int{}, nil).Times(2)
	tasks.EXPECT().Recent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	users.EXPECT().Stats(gomock.Any()).Return(&entities.UserStats{Total: 1}, nil).Times(2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Global(ctx); err != nil {
			t.Fatal(err)
		}
	}

	tasks.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
	taskSvc := NewTaskService(tasks, mocks.NewMockProjectRepository(ctrl), users, NewMockAssignmentNotifier(ctrl), c)
	if err := taskSvc.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Global(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Tasks.Total != 1 || resp.Users == nil {
		t.Errorf("unexpected dashboard %+v", resp)
	}
}

func TestCachedDashboardTracksTheClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockTaskRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewDashboardService(tasks, users, newMemoryCache()).(*dashboardService)

	now := testNow
	svc.now = func() time.Time { return now }
	later := testNow.Add(30 * time.Second)
	due := testNow.Add(10 * time.Second)

	var noAssignee *int64
	gomock.InOrder(
		tasks.EXPECT().Stats(gomock.Any(), noAssignee, testNow).Return(&entities.TaskStats{Total: 1, Pending: 1}, nil),
		tasks.EXPECT().Stats(gomock.Any(), noAssignee, later).Return(&entities.TaskStats{Total: 1, Pending: 1, Overdue: 1}, nil),
	)
	tasks.EXPECT().CountByPriority(gomock.Any(), noAssignee).Return(map[entities.TaskPriority]int{}, nil).Times(1)
	tasks.EXPECT().Recent(gomock.Any(), noAssignee, RecentTaskLimit).Return([]entities.TaskDetail{{Task: entities.Task{
		ID: 1, Title: "Ship", Status: entities.StatusPending, Priority: entities.PriorityHigh, DueDate: &due,
	}}}, nil).Times(1)
	users.EXPECT().Stats(gomock.Any()).Return(&entities.UserStats{Total: 1}, nil).Times(1)

	ctx := context.Background()
	first, err := svc.Global(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.Tasks.Overdue != 0 || first.RecentTasks[0].IsOverdue {
		t.Fatalf("task is not yet due: %+v", first)
	}

	now = later
	second, err := svc.Global(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.Tasks.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", second.Tasks.Overdue)
	}
	if len(second.RecentTasks) != 1 || !second.RecentTasks[0].IsOverdue {
		t.Errorf("recent task should be overdue once its due date passed: %+v", second.RecentTasks)
	}
	if second.Users == nil || second.Priorities["high"] != 0 {
		t.Errorf("cached parts lost: %+v", second)
	}
}
