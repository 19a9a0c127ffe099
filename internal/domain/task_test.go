package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	task, err := NewTask(userID, "Buy milk", "Two liters, whole", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil task ID")
	}
	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected default status %s, got %s", TaskStatusTodo, task.Status)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestNewTaskExplicitStatus(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "Deploy release", "", TaskStatusInProgress)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Status != TaskStatusInProgress {
		t.Errorf("Expected status %s, got %s", TaskStatusInProgress, task.Status)
	}
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name        string
		userID      uuid.UUID
		title       string
		description string
		status      TaskStatus
		wantErr     error
	}{
		{
			name:    "empty title",
			userID:  userID,
			title:   "",
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "title at limit",
			userID:  userID,
			title:   strings.Repeat("x", MaxTitleLength),
			wantErr: nil,
		},
		{
			name:    "title over limit",
			userID:  userID,
			title:   strings.Repeat("x", MaxTitleLength+1),
			wantErr: ErrTitleTooLong,
		},
		{
			name:        "description over limit",
			userID:      userID,
			title:       "valid",
			description: strings.Repeat("d", MaxDescriptionLength+1),
			wantErr:     ErrDescriptionTooLong,
		},
		{
			name:    "unknown status",
			userID:  userID,
			title:   "valid",
			status:  TaskStatus("BLOCKED"),
			wantErr: ErrInvalidTaskStatus,
		},
		{
			name:    "missing owner",
			userID:  uuid.Nil,
			title:   "valid",
			wantErr: ErrEmptyTaskUserID,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewTask(tc.userID, tc.title, tc.description, tc.status)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	for _, s := range TaskStatuses() {
		parsed, err := ParseTaskStatus(string(s))
		if err != nil {
			t.Errorf("Expected %s to parse, got %v", s, err)
		}
		if parsed != s {
			t.Errorf("Expected %s, got %s", s, parsed)
		}
	}

	if _, err := ParseTaskStatus("todo"); !errors.Is(err, ErrInvalidTaskStatus) {
		t.Error("Expected lowercase status to be rejected")
	}
	if _, err := ParseTaskStatus(""); !errors.Is(err, ErrInvalidTaskStatus) {
		t.Error("Expected empty status to be rejected")
	}
}

func TestMultiByteTitleCountedInRunes(t *testing.T) {
	t.Parallel()

	// 100 multi-byte runes are within the limit even though the
	// byte length exceeds it.
	title := strings.Repeat("ü", MaxTitleLength)
	if _, err := NewTask(uuid.New(), title, "", ""); err != nil {
		t.Errorf("Expected 100-rune title to be valid, got %v", err)
	}
}
