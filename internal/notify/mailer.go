package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lkendi/Task-Management-System/internal/logging"
)

// Mailer delivers one notification.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer sends notifications as plain-text mail.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	headers := []string{
		"From: " + m.From,
		"To: " + msg.RecipientEmail,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}
	body := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.Body()

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, m.From, []string{msg.RecipientEmail}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.RecipientEmail, err)
	}
	return nil
}

// LogMailer only logs notifications. It stands in for SMTP in development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg *Message) error {
	logging.Logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"to":         msg.RecipientEmail,
		"subject":    msg.Subject,
		"task_id":    msg.TaskID,
	}).Info("Notification delivered to log")
	return nil
}
