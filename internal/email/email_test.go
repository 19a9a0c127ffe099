package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/jobs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderWelcome(t *testing.T) {
	msg, err := RenderWelcome("user@example.com", WelcomeData{FullName: "Ada Lovelace"})
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", msg.To)
	assert.Equal(t, "Welcome to your task board", msg.Subject)
	assert.Contains(t, msg.HTML, "Ada Lovelace")
}

func TestRenderWelcome_NoName(t *testing.T) {
	msg, err := RenderWelcome("user@example.com", WelcomeData{})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, ", !")
}

func TestRenderWelcome_EscapesHTML(t *testing.T) {
	msg, err := RenderWelcome("user@example.com",
		WelcomeData{FullName: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRenderTaskCreated(t *testing.T) {
	msg, err := RenderTaskCreated("user@example.com", TaskCreatedData{
		FullName:  "Ada",
		TaskTitle: "Draft the proposal",
	})
	require.NoError(t, err)

	assert.Contains(t, msg.Subject, "Draft the proposal")
	assert.Contains(t, msg.HTML, "Draft the proposal")
}

func TestRenderTaskCompleted(t *testing.T) {
	msg, err := RenderTaskCompleted("user@example.com", TaskCompletedData{
		FullName:  "Ada",
		TaskTitle: "Ship the release",
	})
	require.NoError(t, err)

	assert.Contains(t, msg.Subject, "Ship the release")
	assert.Contains(t, msg.HTML, "Ship the release")
}

func TestSMTPMailer_Send(t *testing.T) {
	cfg := config.EmailConfig{
		SMTPHost:    "mail.example.com",
		SMTPPort:    587,
		SMTPUser:    "sender",
		SMTPPass:    "secret",
		FromAddress: "noreply@example.com",
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw []byte

	mailer := NewSMTPMailer(cfg, testLogger())
	mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotRaw = msg
		return nil
	}

	err := mailer.Send(context.Background(), Message{
		To:      "user@example.com",
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"user@example.com"}, gotTo)

	raw := string(gotRaw)
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(raw, "<p>Hi</p>"))
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{
		SMTPHost:    "mail.example.com",
		SMTPPort:    587,
		FromAddress: "noreply@example.com",
	}, testLogger())

	transportErr := errors.New("connection refused")
	mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return transportErr
	}

	err := mailer.Send(context.Background(), Message{To: "user@example.com"})
	assert.ErrorIs(t, err, transportErr)
}

func TestSMTPMailer_NoRecipient(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{}, testLogger())
	err := mailer.Send(context.Background(), Message{Subject: "no to"})
	assert.Error(t, err)
}

func TestNoopMailer(t *testing.T) {
	mailer := NewNoopMailer(testLogger())
	err := mailer.Send(context.Background(), Message{To: "user@example.com"})
	assert.NoError(t, err)
}

// recordingMailer captures sent messages for handler tests.
type recordingMailer struct {
	sent chan Message
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	m.sent <- msg
	return nil
}

func TestNotificationHandler_UserRegistered(t *testing.T) {
	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: 1,
		QueueSize:   5,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}, testLogger())
	runner.Start()
	defer runner.Stop()

	mailer := &recordingMailer{sent: make(chan Message, 1)}
	handler := NewNotificationHandler(mailer, runner, testLogger())

	event, err := events.NewEvent(events.TypeUserRegistered, UserRegisteredPayload{
		Email:    "new@example.com",
		FullName: "New User",
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	select {
	case msg := <-mailer.sent:
		assert.Equal(t, "new@example.com", msg.To)
		assert.Contains(t, msg.HTML, "New User")
	case <-time.After(5 * time.Second):
		t.Fatal("welcome email was never sent")
	}
}

func TestNotificationHandler_TaskCreated(t *testing.T) {
	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: 1,
		QueueSize:   5,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}, testLogger())
	runner.Start()
	defer runner.Stop()

	mailer := &recordingMailer{sent: make(chan Message, 1)}
	handler := NewNotificationHandler(mailer, runner, testLogger())

	event, err := events.NewEvent(events.TypeTaskCreated, TaskCreatedPayload{
		Email:     "maker@example.com",
		TaskTitle: "Plan the sprint",
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	select {
	case msg := <-mailer.sent:
		assert.Equal(t, "maker@example.com", msg.To)
		assert.Contains(t, msg.Subject, "Plan the sprint")
	case <-time.After(5 * time.Second):
		t.Fatal("task created email was never sent")
	}
}

func TestNotificationHandler_TaskCompleted(t *testing.T) {
	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: 1,
		QueueSize:   5,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}, testLogger())
	runner.Start()
	defer runner.Stop()

	mailer := &recordingMailer{sent: make(chan Message, 1)}
	handler := NewNotificationHandler(mailer, runner, testLogger())

	event, err := events.NewEvent(events.TypeTaskCompleted, TaskCompletedPayload{
		Email:     "done@example.com",
		TaskTitle: "Write the report",
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	select {
	case msg := <-mailer.sent:
		assert.Contains(t, msg.Subject, "Write the report")
	case <-time.After(5 * time.Second):
		t.Fatal("task completed email was never sent")
	}
}

func TestNotificationHandler_IgnoresUnknownEvents(t *testing.T) {
	runner := jobs.NewRunner(jobs.DefaultRunnerConfig(), testLogger())
	mailer := &recordingMailer{sent: make(chan Message, 1)}
	handler := NewNotificationHandler(mailer, runner, testLogger())

	event, err := events.NewEvent("something.else", nil)
	require.NoError(t, err)
	assert.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, mailer.sent)
}

func TestNotificationHandler_BadPayload(t *testing.T) {
	runner := jobs.NewRunner(jobs.DefaultRunnerConfig(), testLogger())
	mailer := &recordingMailer{sent: make(chan Message, 1)}
	handler := NewNotificationHandler(mailer, runner, testLogger())

	event, err := events.NewEvent(events.TypeUserRegistered, nil)
	require.NoError(t, err)
	event.Payload = []byte("{not json")

	assert.Error(t, handler.HandleEvent(context.Background(), event))
}
