// Package board derives the three-column board view from the task
// cache and reconciles drag gestures against the server. Detection of
// a column change is a pure function over orderings, independent of
// whatever UI delivered the gesture.
package board

import (
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

// ColumnView is the board partitioned into its three columns. Within
// each column, tasks keep the order of the source list.
type ColumnView struct {
	Todo       []domain.Task
	InProgress []domain.Task
	Done       []domain.Task
}

// Column returns the tasks in the column for the given status.
func (v ColumnView) Column(status domain.TaskStatus) []domain.Task {
	switch status {
	case domain.TaskStatusInProgress:
		return v.InProgress
	case domain.TaskStatusDone:
		return v.Done
	default:
		return v.Todo
	}
}

// Project partitions tasks into columns by status, preserving source
// order. Pure and idempotent: projecting the concatenation of a
// projection's columns yields the same projection.
func Project(tasks []domain.Task) ColumnView {
	view := ColumnView{
		Todo:       []domain.Task{},
		InProgress: []domain.Task{},
		Done:       []domain.Task{},
	}
	for _, task := range tasks {
		switch task.Status {
		case domain.TaskStatusInProgress:
			view.InProgress = append(view.InProgress, task)
		case domain.TaskStatusDone:
			view.Done = append(view.Done, task)
		default:
			view.Todo = append(view.Todo, task)
		}
	}
	return view
}

// Move is a single detected column change.
type Move struct {
	TaskID uuid.UUID
	From   domain.TaskStatus
	To     domain.TaskStatus
}

// DetectMove compares a proposed board layout against the
// server-confirmed tasks and returns the first task whose proposed
// column differs from its confirmed status. Only that one move is
// reported: when a single gesture changes several tasks' columns, the
// later changes are dropped for that batch and surface again on the
// next comparison. Tasks in the proposal that the confirmed list does
// not contain are ignored.
func DetectMove(confirmed []domain.Task, proposed ColumnView) (Move, bool) {
	statuses := make(map[uuid.UUID]domain.TaskStatus, len(confirmed))
	for _, task := range confirmed {
		statuses[task.ID] = task.Status
	}

	for _, column := range domain.TaskStatuses() {
		for _, task := range proposed.Column(column) {
			from, known := statuses[task.ID]
			if !known || from == column {
				continue
			}
			return Move{TaskID: task.ID, From: from, To: column}, true
		}
	}
	return Move{}, false
}
