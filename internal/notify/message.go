// Package notify tells users about tasks assigned to them. The Notifier turns a
// task write into a queued Message; the Worker drains the queue into a Mailer.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/lkendi/Task-Management-System/internal/entities"
)

// AssignmentSubject is the subject line of every assignment notification.
const AssignmentSubject = "You have been assigned a new task"

// DueDateLayout renders due dates in notifications.
const DueDateLayout = "Jan 2, 2006"

// Message is one queued assignment notification.
type Message struct {
	ID             string    `json:"id"`
	TaskID         int64     `json:"task_id"`
	RecipientID    int64     `json:"recipient_id"`
	RecipientName  string    `json:"recipient_name"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DueDate        string    `json:"due_date"`
	Link           string    `json:"link"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAssignmentMessage builds the notification telling recipient about task.
func NewAssignmentMessage(task *entities.Task, recipient *entities.User, appURL string, now time.Time) *Message {
	msg := &Message{
		ID:             uuid.NewString(),
		TaskID:         task.ID,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		Subject:        AssignmentSubject,
		Title:          task.Title,
		DueDate:        "N/A",
		Link:           appURL + "/my-tasks",
		CreatedAt:      now.UTC(),
	}
	if task.Description != nil {
		msg.Description = *task.Description
	}
	if task.DueDate != nil {
		msg.DueDate = task.DueDate.Format(DueDateLayout)
	}
	return msg
}

// Body renders the plain-text mail body.
func (m *Message) Body() string {
	return "Hello " + m.RecipientName + ",\r\n\r\n" +
		"You have been assigned a new task.\r\n\r\n" +
		"Title: " + m.Title + "\r\n" +
		"Description: " + m.Description + "\r\n" +
		"Due Date: " + m.DueDate + "\r\n\r\n" +
		"View your tasks: " + m.Link + "\r\n"
}

// Task fields the notifier reacts to.
const (
	FieldAssignedTo = "assigned_to"
)

// FieldSet names the task fields a write changed.
type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s FieldSet) Add(field string) {
	s[field] = struct{}{}
}

func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}
