package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
)

func TestEmailTakenOr(t *testing.T) {
	dup := fmt.Errorf("scan: %w", &pq.Error{Code: "23505", Constraint: "users_email_key"})
	var verr *apperrors.ValidationError
	if err := emailTakenOr(dup, "failed to create user"); !errors.As(err, &verr) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if verr.Fields["email"] != apperrors.EmailTakenMessage {
		t.Errorf("fields = %v", verr.Fields)
	}

	other := &pq.Error{Code: "23503"}
	err := emailTakenOr(other, "failed to create user")
	if errors.As(err, &verr) || !errors.Is(err, other) {
		t.Errorf("other errors should be wrapped as-is, got %v", err)
	}
	if err := emailTakenOr(sql.ErrConnDone, "failed to update user"); !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("error = %v", err)
	}
}
