package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// welcomeTemplate greets a freshly registered user.
var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
  <h2>Welcome to your task board{{if .FullName}}, {{.FullName}}{{end}}!</h2>
  <p>Your account is ready. Sign in to create your first task and start
  organizing your work.</p>
  <p>If you did not create this account, you can ignore this email.</p>
</body>
</html>`))

// taskCreatedTemplate confirms a newly created task.
var taskCreatedTemplate = template.Must(template.New("task_created").Parse(`<html>
<body>
  <h2>Task created</h2>
  <p>{{if .FullName}}{{.FullName}}, a{{else}}A{{end}} new task was added to
  your board:</p>
  <blockquote><strong>{{.TaskTitle}}</strong></blockquote>
</body>
</html>`))

// taskCompletedTemplate congratulates a user on finishing a task.
var taskCompletedTemplate = template.Must(template.New("task_completed").Parse(`<html>
<body>
  <h2>Task completed</h2>
  <p>Nice work{{if .FullName}}, {{.FullName}}{{end}} &mdash; you finished:</p>
  <blockquote><strong>{{.TaskTitle}}</strong></blockquote>
</body>
</html>`))

// WelcomeData holds the values for the welcome email.
type WelcomeData struct {
	FullName string
}

// TaskCreatedData holds the values for the task created email.
type TaskCreatedData struct {
	FullName  string
	TaskTitle string
}

// TaskCompletedData holds the values for the task completed email.
type TaskCompletedData struct {
	FullName  string
	TaskTitle string
}

// RenderTaskCreated builds the task created message for a recipient.
func RenderTaskCreated(to string, data TaskCreatedData) (Message, error) {
	var buf bytes.Buffer
	if err := taskCreatedTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render task created email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Task created: %s", data.TaskTitle),
		HTML:    buf.String(),
	}, nil
}

// RenderWelcome builds the welcome message for a recipient.
func RenderWelcome(to string, data WelcomeData) (Message, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Welcome to your task board",
		HTML:    buf.String(),
	}, nil
}

// RenderTaskCompleted builds the task completed message for a recipient.
func RenderTaskCompleted(to string, data TaskCompletedData) (Message, error) {
	var buf bytes.Buffer
	if err := taskCompletedTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render task completed email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Task completed: %s", data.TaskTitle),
		HTML:    buf.String(),
	}, nil
}
