package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

// Session is the durable client-side state. It deliberately excludes
// tokens: only the user object and the authenticated flag are written to
// disk, so a leaked state file never leaks credentials.
type Session struct {
	User          *User `json:"user,omitempty"`
	Authenticated bool  `json:"authenticated"`
}

// saveSession writes the session to the state file. A missing parent
// directory is created.
func saveSession(path string, s Session, logger *slog.Logger) {
	if path == "" {
		return
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		logger.Error("failed to encode session state", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logger.Error("failed to create session state directory", "error", err)
		return
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		logger.Error("failed to write session state", "error", err)
	}
}

// loadSession reads the session from the state file. Absence (first run)
// and corruption both yield an unauthenticated session rather than an
// error.
func loadSession(path string, logger *slog.Logger) Session {
	if path == "" {
		return Session{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to read session state, starting unauthenticated",
				"error", err)
		}
		return Session{}
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("session state corrupted, starting unauthenticated",
			"error", err)
		return Session{}
	}
	return s
}
