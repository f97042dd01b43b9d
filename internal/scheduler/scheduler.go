// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lkendi/Task-Management-System/internal/logging"
)

const jobTimeout = time.Minute

// DeadLetterRequeuer moves failed notifications back onto the pending queue.
type DeadLetterRequeuer interface {
	RequeueDeadLetters(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
	}
}

// ScheduleRequeue retries dead-lettered notifications on spec, a standard
// five-field cron expression or a descriptor such as "@every 1h".
func (s *Scheduler) ScheduleRequeue(spec string, queue DeadLetterRequeuer) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { RequeueOnce(queue) })
	if err != nil {
		return 0, fmt.Errorf("failed to schedule requeue %q: %w", spec, err)
	}
	return id, nil
}

// RequeueOnce runs one requeue pass and logs the outcome.
func RequeueOnce(queue DeadLetterRequeuer) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := queue.RequeueDeadLetters(ctx)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to requeue dead-lettered notifications")
		return
	}
	if n > 0 {
		logging.Logger.WithField("count", n).Info("Requeued dead-lettered notifications")
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
