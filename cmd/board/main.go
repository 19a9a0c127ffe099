// Command board is a terminal front end for the taskboard API: log
// in, view the three-column board, move tasks between columns, and
// turn generated suggestions into tasks.
//
// Access tokens are held in memory only, so the session lasts for the
// process; the state file remembers who was signed in, not how.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/taskboard/internal/board"
	"github.com/phrazzld/taskboard/internal/gateway"
	"github.com/phrazzld/taskboard/internal/suggest"
	"github.com/phrazzld/taskboard/internal/taskstore"
)

func main() {
	apiURL := flag.String("api", defaultAPIURL(), "taskboard API base URL")
	statePath := flag.String("state", defaultStatePath(), "session state file")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	verbose := flag.Bool("v", false, "log client activity to stderr")
	flag.Parse()

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	client := gateway.NewClient(*apiURL,
		gateway.WithTimeout(*timeout),
		gateway.WithStateFile(*statePath),
		gateway.WithLogger(logger),
	)
	store := taskstore.NewStore(client, logger)

	app := &cli{
		client:     client,
		store:      store,
		reconciler: board.NewReconciler(store, logger),
		suggester:  suggest.NewAdapter(store, logger),
		in:         bufio.NewScanner(os.Stdin),
		out:        os.Stdout,
	}

	if err := app.run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultAPIURL() string {
	if url := os.Getenv("BOARD_API_URL"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taskboard", "session.json")
}
