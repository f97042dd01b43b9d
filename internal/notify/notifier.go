package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/logging"
)

// DefaultEnqueueTimeout bounds how long a task write waits on the queue.
const DefaultEnqueueTimeout = 2 * time.Second

// UserLookup resolves notification recipients.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
}

// Notifier enqueues assignment notifications after task writes. Its methods
// never fail the caller: problems are logged and the write stands.
type Notifier struct {
	users   UserLookup
	queue   Queue
	appURL  string
	timeout time.Duration
	now     func() time.Time
}

// NewNotifier creates a notifier that links recipients to appURL.
func NewNotifier(users UserLookup, queue Queue, appURL string) *Notifier {
	return &Notifier{
		users:   users,
		queue:   queue,
		appURL:  appURL,
		timeout: DefaultEnqueueTimeout,
		now:     time.Now,
	}
}

// TaskCreated notifies the assignee of a new task, if it has one.
func (n *Notifier) TaskCreated(ctx context.Context, task *entities.Task) {
	if task.AssignedTo == nil {
		return
	}
	n.enqueue(ctx, task)
}

// TaskUpdated notifies the assignee when the write changed the assignment to
// a user.
func (n *Notifier) TaskUpdated(ctx context.Context, task *entities.Task, changed FieldSet) {
	if task.AssignedTo == nil || !changed.Has(FieldAssignedTo) {
		return
	}
	n.enqueue(ctx, task)
}

func (n *Notifier) enqueue(ctx context.Context, task *entities.Task) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	log := logging.Logger.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"assigned_to": *task.AssignedTo,
	})

	recipient, err := n.users.FindByID(ctx, *task.AssignedTo)
	if err != nil {
		log.WithError(err).Warn("Skipping assignment notification: assignee not loaded")
		return
	}

	msg := NewAssignmentMessage(task, recipient, n.appURL, n.now())
	if err := n.queue.Enqueue(ctx, msg); err != nil {
		log.WithError(err).Warn("Failed to enqueue assignment notification")
		return
	}
	log.WithField("message_id", msg.ID).Info("Assignment notification queued")
}
