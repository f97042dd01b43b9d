package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/lkendi/Task-Management-System/internal/logging"
)

// Worker drains a Queue into a Mailer. Each message is retried with
// exponential backoff; messages that still fail go to the dead-letter list.
type Worker struct {
	queue      Queue
	mailer     Mailer
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	baseDelay  time.Duration
}

// NewWorker creates a worker that tries each message up to maxRetries extra
// times.
func NewWorker(queue Queue, mailer Mailer, maxRetries int) *Worker {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Worker{
		queue:      queue,
		mailer:     mailer,
		maxRetries: uint64(maxRetries),
		baseDelay:  500 * time.Millisecond,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "mailer-cb",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
		}),
	}
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	logging.Logger.Info("Notification worker started")
	defer logging.Logger.Info("Notification worker stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.Logger.WithError(err).Warn("Failed to dequeue notification")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue
		}

		w.Process(ctx, msg)
	}
}

// Process delivers one message, dead-lettering it when every attempt fails.
// It reports whether delivery succeeded.
func (w *Worker) Process(ctx context.Context, msg *Message) bool {
	log := logging.Logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"task_id":    msg.TaskID,
		"to":         msg.RecipientEmail,
	})

	backoff := retry.WithMaxRetries(w.maxRetries, retry.NewExponential(w.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		msg.Attempts++
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.mailer.Send(ctx, msg)
		})
		if err != nil {
			log.WithError(err).WithField("attempt", msg.Attempts).Warn("Notification delivery failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		log.Info("Notification delivered")
		return true
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Warn("Worker stopping, dead-lettering in-flight notification")
	}
	dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if dlErr := w.queue.DeadLetter(dlCtx, msg); dlErr != nil {
		log.WithError(dlErr).Error("Failed to dead-letter notification")
	}
	return false
}
