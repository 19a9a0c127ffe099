package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/jobs"
)

// UserRegisteredPayload is the event payload emitted after registration.
type UserRegisteredPayload struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// TaskCreatedPayload is the event payload emitted after a task is created.
type TaskCreatedPayload struct {
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	TaskTitle string `json:"taskTitle"`
}

// TaskCompletedPayload is the event payload emitted when a task reaches DONE.
type TaskCompletedPayload struct {
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	TaskTitle string `json:"taskTitle"`
}

// NotificationHandler turns application events into email delivery jobs.
// It implements events.EventHandler; delivery itself happens on the job
// runner so event emission never waits on SMTP.
type NotificationHandler struct {
	mailer Mailer
	runner *jobs.Runner
	logger *slog.Logger
}

// Ensure NotificationHandler implements events.EventHandler
var _ events.EventHandler = (*NotificationHandler)(nil)

// NewNotificationHandler creates a NotificationHandler.
// If logger is nil, a default logger will be used.
func NewNotificationHandler(mailer Mailer, runner *jobs.Runner, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		mailer: mailer,
		runner: runner,
		logger: logger.With(slog.String("component", "email_notification_handler")),
	}
}

// HandleEvent implements events.EventHandler.
// Unrecognized event types are ignored so this handler can share an
// emitter with others.
func (h *NotificationHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeUserRegistered:
		var payload UserRegisteredPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode registration payload: %w", err)
		}
		msg, err := RenderWelcome(payload.Email, WelcomeData{FullName: payload.FullName})
		if err != nil {
			return err
		}
		return h.enqueue(ctx, "welcome_email", msg)

	case events.TypeTaskCreated:
		var payload TaskCreatedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode task created payload: %w", err)
		}
		msg, err := RenderTaskCreated(payload.Email, TaskCreatedData{
			FullName:  payload.FullName,
			TaskTitle: payload.TaskTitle,
		})
		if err != nil {
			return err
		}
		return h.enqueue(ctx, "task_created_email", msg)

	case events.TypeTaskCompleted:
		var payload TaskCompletedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode task completed payload: %w", err)
		}
		msg, err := RenderTaskCompleted(payload.Email, TaskCompletedData{
			FullName:  payload.FullName,
			TaskTitle: payload.TaskTitle,
		})
		if err != nil {
			return err
		}
		return h.enqueue(ctx, "task_completed_email", msg)

	default:
		return nil
	}
}

// enqueue submits the delivery job. A full queue is logged but not
// propagated so that a mail backlog cannot fail the primary operation.
func (h *NotificationHandler) enqueue(ctx context.Context, jobType string, msg Message) error {
	job := jobs.NewFuncJob(jobType, func(jobCtx context.Context) error {
		return h.mailer.Send(jobCtx, msg)
	})

	if err := h.runner.Submit(ctx, job); err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue email job",
			"job_type", jobType,
			"error", err)
	}
	return nil
}
