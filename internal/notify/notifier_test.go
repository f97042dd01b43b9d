package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/repository/mocks"
)

var testNow = time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)

func newTestNotifier(t *testing.T, capacity int) (*Notifier, *mocks.MockUserRepository, *MemoryQueue) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	queue := NewMemoryQueue(capacity)
	n := NewNotifier(users, queue, "https://tasks.example.com")
	n.now = func() time.Time { return testNow }
	return n, users, queue
}

func int64Ptr(v int64) *int64 { return &v }

func TestTaskCreatedQueuesMessageForAssignee(t *testing.T) {
	n, users, queue := newTestNotifier(t, 4)

	due := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	description := "Ship it"
	task := &entities.Task{ID: 9, Title: "Release", Description: &description, DueDate: &due, AssignedTo: int64Ptr(2)}

	users.EXPECT().FindByID(gomock.Any(), int64(2)).
		Return(&entities.User{ID: 2, Name: "Grace", Email: "grace@example.com"}, nil)

	n.TaskCreated(context.Background(), task)

	if queue.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", queue.Len())
	}
	msg, _ := queue.Dequeue(context.Background())
	if msg.RecipientEmail != "grace@example.com" || msg.RecipientName != "Grace" {
		t.Errorf("recipient = %s <%s>", msg.RecipientName, msg.RecipientEmail)
	}
	if msg.Subject != AssignmentSubject {
		t.Errorf("subject = %q", msg.Subject)
	}
	if msg.DueDate != "Mar 20, 2025" || msg.Description != "Ship it" {
		t.Errorf("due/description = %q/%q", msg.DueDate, msg.Description)
	}
	if msg.Link != "https://tasks.example.com/my-tasks" {
		t.Errorf("link = %q", msg.Link)
	}
	if msg.ID == "" || msg.TaskID != 9 {
		t.Errorf("id/task = %q/%d", msg.ID, msg.TaskID)
	}
}

func TestNotifierSkipsUnassignedOrUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		notify  func(n *Notifier)
		wantLen int
	}{
		{
			name:   "created without assignee",
			notify: func(n *Notifier) { n.TaskCreated(context.Background(), &entities.Task{ID: 1}) },
		},
		{
			name: "updated without assignment change",
			notify: func(n *Notifier) {
				n.TaskUpdated(context.Background(), &entities.Task{ID: 1, AssignedTo: int64Ptr(2)}, NewFieldSet("title", "status"))
			},
		},
		{
			name: "assignment cleared",
			notify: func(n *Notifier) {
				n.TaskUpdated(context.Background(), &entities.Task{ID: 1}, NewFieldSet(FieldAssignedTo))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _, queue := newTestNotifier(t, 4)
			tt.notify(n)
			if queue.Len() != tt.wantLen {
				t.Errorf("queue length = %d, want %d", queue.Len(), tt.wantLen)
			}
		})
	}
}

func TestTaskUpdatedQueuesOnReassignment(t *testing.T) {
	n, users, queue := newTestNotifier(t, 4)
	users.EXPECT().FindByID(gomock.Any(), int64(5)).
		Return(&entities.User{ID: 5, Name: "Linus", Email: "linus@example.com"}, nil)

	n.TaskUpdated(context.Background(), &entities.Task{ID: 3, Title: "Review", AssignedTo: int64Ptr(5)}, NewFieldSet(FieldAssignedTo))

	if queue.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", queue.Len())
	}
	msg, _ := queue.Dequeue(context.Background())
	if msg.DueDate != "N/A" || msg.Description != "" {
		t.Errorf("due/description = %q/%q", msg.DueDate, msg.Description)
	}
}

func TestNotifierSwallowsFailures(t *testing.T) {
	t.Run("assignee missing", func(t *testing.T) {
		n, users, queue := newTestNotifier(t, 4)
		users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(nil, apperrors.NotFound("user"))

		n.TaskCreated(context.Background(), &entities.Task{ID: 1, AssignedTo: int64Ptr(2)})
		if queue.Len() != 0 {
			t.Errorf("queue length = %d, want 0", queue.Len())
		}
	})

	t.Run("queue full", func(t *testing.T) {
		n, users, queue := newTestNotifier(t, 0)
		users.EXPECT().FindByID(gomock.Any(), int64(2)).Return(&entities.User{ID: 2, Email: "a@b.c"}, nil)

		n.TaskCreated(context.Background(), &entities.Task{ID: 1, AssignedTo: int64Ptr(2)})
		if queue.Len() != 0 {
			t.Errorf("queue length = %d, want 0", queue.Len())
		}
	})

	t.Run("caller context already cancelled", func(t *testing.T) {
		n, users, queue := newTestNotifier(t, 4)
		users.EXPECT().FindByID(gomock.Any(), int64(2)).DoAndReturn(
			func(ctx context.Context, _ int64) (*entities.User, error) {
				if ctx.Err() != nil {
					return nil, errors.New("lookup saw cancelled context")
				}
				return &entities.User{ID: 2, Email: "a@b.c"}, nil
			})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		n.TaskCreated(ctx, &entities.Task{ID: 1, AssignedTo: int64Ptr(2)})
		if queue.Len() != 1 {
			t.Errorf("queue length = %d, want 1", queue.Len())
		}
	})
}
