package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"mixed case", "DEBUG"},
		{"invalid falls back", "verbose"},
		{"empty falls back", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(Config{Level: tc.level})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if logger == nil {
				t.Fatal("Expected non-nil logger")
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Without a stored logger, the default is returned.
	if got := FromContext(ctx); got == nil {
		t.Fatal("Expected default logger, got nil")
	}

	stored := slog.Default().With("component", "test")
	ctx = WithLogger(ctx, stored)

	if got := FromContext(ctx); got != stored {
		t.Error("Expected logger stored in context to be returned")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	def := slog.Default().With("component", "fallback")

	if got := FromContextOrDefault(context.Background(), def); got != def {
		t.Error("Expected provided default to be returned")
	}

	if got := FromContextOrDefault(context.Background(), nil); got == nil {
		t.Error("Expected slog default when no logger anywhere")
	}
}
