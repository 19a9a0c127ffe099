package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

// FallbackGenerator produces deterministic suggestions from a keyword table.
// It is used when no LLM is configured, or as a graceful degradation path
// when the LLM call fails. It never returns an error.
type FallbackGenerator struct {
	logger *slog.Logger
}

// NewFallbackGenerator creates a FallbackGenerator.
// If logger is nil, a default logger will be used.
func NewFallbackGenerator(logger *slog.Logger) *FallbackGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackGenerator{
		logger: logger.With(slog.String("component", "fallback_generator")),
	}
}

// Ensure FallbackGenerator implements SuggestionGenerator
var _ SuggestionGenerator = (*FallbackGenerator)(nil)

// keywordSuggestions maps context keywords to themed suggestion sets.
// The first matching bucket wins; buckets are checked in a fixed order
// so the output is stable for a given context.
var keywordBuckets = []struct {
	keywords    []string
	suggestions []domain.TaskSuggestion
}{
	{
		keywords: []string{"web", "frontend", "ui", "design"},
		suggestions: []domain.TaskSuggestion{
			{Title: "Create wireframes", Description: "Design the main page layouts and user flows"},
			{Title: "Set up component library", Description: "Choose and configure a UI component framework"},
			{Title: "Implement responsive navigation", Description: "Build a navigation bar that works on mobile and desktop"},
			{Title: "Add form validation", Description: "Validate user input on all forms with clear error messages"},
			{Title: "Run accessibility audit", Description: "Check color contrast, keyboard navigation and screen reader support"},
		},
	},
	{
		keywords: []string{"backend", "api", "server", "endpoint"},
		suggestions: []domain.TaskSuggestion{
			{Title: "Define API contract", Description: "Document request and response shapes for each endpoint"},
			{Title: "Add request validation", Description: "Reject malformed payloads before they reach business logic"},
			{Title: "Implement rate limiting", Description: "Protect public endpoints from abuse"},
			{Title: "Write integration tests", Description: "Cover the critical request paths end to end"},
			{Title: "Set up structured logging", Description: "Emit JSON logs with request IDs for tracing"},
		},
	},
	{
		keywords: []string{"database", "postgres", "sql", "migration", "schema"},
		suggestions: []domain.TaskSuggestion{
			{Title: "Design database schema", Description: "Model the core entities and their relationships"},
			{Title: "Write initial migrations", Description: "Create versioned migration files for the schema"},
			{Title: "Add database indexes", Description: "Index the columns used in frequent queries"},
			{Title: "Set up connection pooling", Description: "Configure pool sizes for the expected load"},
			{Title: "Plan backup strategy", Description: "Schedule automated backups and test a restore"},
		},
	},
}

// defaultSuggestions is returned when no keyword bucket matches.
var defaultSuggestions = []domain.TaskSuggestion{
	{Title: "Define project goals", Description: "Write down what success looks like for this project"},
	{Title: "Break down the first milestone", Description: "Split the nearest milestone into small actionable tasks"},
	{Title: "Set up the development environment", Description: "Get the project building and running locally"},
	{Title: "Create a project README", Description: "Document how to build, run and contribute"},
	{Title: "Schedule a planning session", Description: "Review priorities and assign the next tasks"},
}

// GenerateSuggestions implements SuggestionGenerator.
// The context text is lowercased and matched against the keyword table;
// the first bucket with a hit supplies the suggestions.
func (g *FallbackGenerator) GenerateSuggestions(
	ctx context.Context,
	userID uuid.UUID,
	contextText string,
) ([]domain.TaskSuggestion, error) {
	lowered := strings.ToLower(contextText)

	for _, bucket := range keywordBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				g.logger.DebugContext(ctx, "fallback suggestions matched keyword",
					slog.String("keyword", keyword),
					slog.String("user_id", userID.String()))
				return capSuggestions(bucket.suggestions), nil
			}
		}
	}

	g.logger.DebugContext(ctx, "fallback suggestions using default set",
		slog.String("user_id", userID.String()))
	return capSuggestions(defaultSuggestions), nil
}

// capSuggestions copies and truncates a suggestion set to domain.MaxSuggestions.
func capSuggestions(suggestions []domain.TaskSuggestion) []domain.TaskSuggestion {
	n := len(suggestions)
	if n > domain.MaxSuggestions {
		n = domain.MaxSuggestions
	}
	out := make([]domain.TaskSuggestion, n)
	copy(out, suggestions[:n])
	return out
}
