package generation

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

// SuggestionGenerator defines the interface for producing task suggestions
// from a user's free-form context. This interface is the boundary between
// the application core and external AI/LLM services; implementations range
// from the Gemini-backed generator to a deterministic keyword fallback.
type SuggestionGenerator interface {
	// GenerateSuggestions produces up to domain.MaxSuggestions task
	// suggestions based on the provided context text and user ID.
	// The context text may be empty, in which case implementations
	// return general-purpose suggestions.
	GenerateSuggestions(
		ctx context.Context,
		userID uuid.UUID,
		contextText string,
	) ([]domain.TaskSuggestion, error)
}
