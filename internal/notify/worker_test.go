package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

func newTestWorker(t *testing.T, maxRetries int) (*Worker, *MockMailer, *MemoryQueue) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mailer := NewMockMailer(ctrl)
	queue := NewMemoryQueue(8)
	queue.pollTimeout = 10 * time.Millisecond
	w := NewWorker(queue, mailer, maxRetries)
	w.baseDelay = time.Millisecond
	return w, mailer, queue
}

func TestProcessDeliversFirstTime(t *testing.T) {
	w, mailer, queue := newTestWorker(t, 3)
	msg := &Message{ID: "m1", RecipientEmail: "a@example.com"}

	mailer.EXPECT().Send(gomock.Any(), msg).Return(nil).Times(1)

	if !w.Process(context.Background(), msg) {
		t.Fatal("expected delivery")
	}
	if msg.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", msg.Attempts)
	}
	if len(queue.DeadLetters()) != 0 {
		t.Error("nothing should be dead-lettered")
	}
}

func TestProcessRetriesTransientFailures(t *testing.T) {
	w, mailer, _ := newTestWorker(t, 3)
	msg := &Message{ID: "m2"}

	gomock.InOrder(
		mailer.EXPECT().Send(gomock.Any(), msg).Return(errors.New("connection reset")),
		mailer.EXPECT().Send(gomock.Any(), msg).Return(errors.New("connection reset")),
		mailer.EXPECT().Send(gomock.Any(), msg).Return(nil),
	)

	if !w.Process(context.Background(), msg) {
		t.Fatal("expected delivery after retries")
	}
	if msg.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", msg.Attempts)
	}
}

func TestProcessDeadLettersAfterExhaustion(t *testing.T) {
	w, mailer, queue := newTestWorker(t, 2)
	msg := &Message{ID: "m3"}

	mailer.EXPECT().Send(gomock.Any(), msg).Return(errors.New("mailbox unavailable")).Times(3)

	if w.Process(context.Background(), msg) {
		t.Fatal("expected failure")
	}
	dead := queue.DeadLetters()
	if len(dead) != 1 || dead[0].ID != "m3" {
		t.Fatalf("dead letters = %v", dead)
	}

	moved, err := queue.RequeueDeadLetters(context.Background())
	if err != nil || moved != 1 {
		t.Fatalf("requeue = %d, %v", moved, err)
	}
	if queue.Len() != 1 || len(queue.DeadLetters()) != 0 {
		t.Errorf("pending = %d, dead = %d", queue.Len(), len(queue.DeadLetters()))
	}
}

func TestRunDrainsQueueUntilCancelled(t *testing.T) {
	w, mailer, queue := newTestWorker(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan string, 2)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *Message) error {
			delivered <- msg.ID
			return nil
		}).Times(2)

	_ = queue.Enqueue(ctx, &Message{ID: "a"})
	_ = queue.Enqueue(ctx, &Message{ID: "b"})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestMessageBody(t *testing.T) {
	msg := &Message{RecipientName: "Ada", Title: "Plan", Description: "", DueDate: "N/A", Link: "http://x/my-tasks"}
	body := msg.Body()
	for _, want := range []string{"Hello Ada,", "Title: Plan", "Due Date: N/A", "http://x/my-tasks"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
