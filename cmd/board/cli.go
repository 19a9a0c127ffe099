package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/board"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/gateway"
	"github.com/phrazzld/taskboard/internal/suggest"
	"github.com/phrazzld/taskboard/internal/taskstore"
)

type cli struct {
	client     *gateway.Client
	store      *taskstore.Store
	reconciler *board.Reconciler
	suggester  *suggest.Adapter

	in  *bufio.Scanner
	out io.Writer
}

func (c *cli) run() error {
	ctx := context.Background()

	if user := c.client.User(); user != nil {
		fmt.Fprintf(c.out, "welcome back, %s: log in to continue\n", user.Email)
	}
	fmt.Fprintln(c.out, `type "help" for commands`)

	for {
		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			return c.in.Err()
		}
		fields := strings.Fields(c.in.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintln(c.out, "error:", describeError(err))
		}
	}
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		c.printHelp()
		return nil
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.client.Logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "board", "list":
		return c.showBoard(ctx)
	case "create":
		return c.create(ctx, args)
	case "move":
		return c.move(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "suggest":
		return c.suggestTasks(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) printHelp() {
	fmt.Fprint(c.out, `commands:
  register <email> <password> [full name]   create an account
  login <email> <password>                  sign in
  logout                                    sign out
  whoami                                    show the current account
  board                                     show the board
  create <title> [description...]           create a TODO task
  move <task#> <todo|doing|done>            move a task between columns
  delete <task#>                            delete a task
  suggest [context...]                      generate suggestions, then pick
  quit                                      exit
`)
}

func (c *cli) register(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: register <email> <password> [full name]")
	}
	fullName := strings.Join(args[2:], " ")
	user, err := c.client.Register(ctx, args[0], args[1], fullName)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "registered %s\n", user.Email)
	return c.showBoard(ctx)
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <password>")
	}
	user, err := c.client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s\n", user.Email)
	return c.showBoard(ctx)
}

func (c *cli) whoami(ctx context.Context) error {
	user, err := c.client.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", user.Email, user.ID)
	return nil
}

func (c *cli) showBoard(ctx context.Context) error {
	if err := c.store.FetchAll(ctx); err != nil {
		return err
	}
	c.renderBoard(c.reconciler.View())
	return nil
}

var columnLabels = map[domain.TaskStatus]string{
	domain.TaskStatusTodo:       "TODO",
	domain.TaskStatusInProgress: "IN PROGRESS",
	domain.TaskStatusDone:       "DONE",
}

// renderBoard prints the three columns. Task numbers refer to the
// position in the full confirmed list and are what move/delete take.
func (c *cli) renderBoard(view board.ColumnView) {
	numbers := make(map[uuid.UUID]int)
	for i, task := range c.store.Tasks() {
		numbers[task.ID] = i + 1
	}

	for _, status := range domain.TaskStatuses() {
		fmt.Fprintf(c.out, "── %s ──\n", columnLabels[status])
		column := view.Column(status)
		if len(column) == 0 {
			fmt.Fprintln(c.out, "  (empty)")
			continue
		}
		for _, task := range column {
			fmt.Fprintf(c.out, "  %2d. %s\n", numbers[task.ID], task.Title)
			if task.Description != "" {
				fmt.Fprintf(c.out, "      %s\n", task.Description)
			}
		}
	}
}

func (c *cli) create(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: create <title> [description...]")
	}
	input := taskstore.CreateInput{Title: args[0]}
	if len(args) > 1 {
		input.Description = strings.Join(args[1:], " ")
	}
	task, err := c.store.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created %q\n", task.Title)
	c.renderBoard(c.reconciler.View())
	return nil
}

// move builds the proposed layout a drag gesture would produce and
// hands it to the reconciler.
func (c *cli) move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: move <task#> <todo|doing|done>")
	}
	task, err := c.taskByNumber(args[0])
	if err != nil {
		return err
	}
	target, err := parseColumn(args[1])
	if err != nil {
		return err
	}

	proposed := c.reconciler.View()
	moved := *task
	for _, status := range domain.TaskStatuses() {
		column := proposed.Column(status)
		filtered := column[:0]
		for _, t := range column {
			if t.ID != task.ID {
				filtered = append(filtered, t)
			}
		}
		switch status {
		case domain.TaskStatusTodo:
			proposed.Todo = filtered
		case domain.TaskStatusInProgress:
			proposed.InProgress = filtered
		case domain.TaskStatusDone:
			proposed.Done = filtered
		}
	}
	switch target {
	case domain.TaskStatusTodo:
		proposed.Todo = append(proposed.Todo, moved)
	case domain.TaskStatusInProgress:
		proposed.InProgress = append(proposed.InProgress, moved)
	case domain.TaskStatusDone:
		proposed.Done = append(proposed.Done, moved)
	}

	view, err := c.reconciler.Apply(ctx, proposed)
	c.renderBoard(view)
	return err
}

func (c *cli) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <task#>")
	}
	task, err := c.taskByNumber(args[0])
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, task.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted %q\n", task.Title)
	c.renderBoard(c.reconciler.View())
	return nil
}

func (c *cli) suggestTasks(ctx context.Context, args []string) error {
	suggestions, err := c.suggester.Generate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(c.out, "no suggestions")
		return nil
	}

	for i, s := range suggestions {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, s.Title)
		if s.Description != "" {
			fmt.Fprintf(c.out, "     %s\n", s.Description)
		}
	}
	fmt.Fprint(c.out, "add which? (numbers, or blank for none) ")
	if !c.in.Scan() {
		return c.in.Err()
	}
	for _, field := range strings.Fields(c.in.Text()) {
		n, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("not a suggestion number: %q", field)
		}
		if err := c.suggester.Select(n - 1); err != nil {
			return fmt.Errorf("suggestion %d: %w", n, err)
		}
	}
	if len(c.suggester.Selected()) == 0 {
		return nil
	}

	tasks, err := c.suggester.CommitSelection(ctx)
	for _, task := range tasks {
		fmt.Fprintf(c.out, "created %q\n", task.Title)
	}
	if err != nil {
		return err
	}
	c.renderBoard(c.reconciler.View())
	return nil
}

func (c *cli) taskByNumber(arg string) (*domain.Task, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("not a task number: %q", arg)
	}
	tasks := c.store.Tasks()
	if n < 1 || n > len(tasks) {
		return nil, fmt.Errorf("no task numbered %d", n)
	}
	task := tasks[n-1]
	return &task, nil
}

func parseColumn(s string) (domain.TaskStatus, error) {
	switch strings.ToLower(s) {
	case "todo":
		return domain.TaskStatusTodo, nil
	case "doing", "in_progress", "progress":
		return domain.TaskStatusInProgress, nil
	case "done":
		return domain.TaskStatusDone, nil
	default:
		return "", fmt.Errorf("unknown column %q", s)
	}
}

// describeError turns client errors into something a person at a
// prompt can act on.
func describeError(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case gateway.KindAuth:
			return "not signed in (try \"login\")"
		case gateway.KindTimeout:
			return "the server took too long to respond"
		case gateway.KindNetwork:
			return "could not reach the server: " + apiErr.Message
		case gateway.KindValidation:
			if len(apiErr.Fields) > 0 {
				parts := make([]string, 0, len(apiErr.Fields))
				for field, msg := range apiErr.Fields {
					parts = append(parts, field+": "+msg)
				}
				return strings.Join(parts, "; ")
			}
			return apiErr.Message
		default:
			return apiErr.Message
		}
	}
	if errors.Is(err, taskstore.ErrMutationInFlight) {
		return "that task has a change still in flight; try again in a moment"
	}
	return err.Error()
}
