package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// MockSuggestionGenerator implements generation.SuggestionGenerator for testing
type MockSuggestionGenerator struct {
	// GenerateSuggestionsFn allows test cases to mock generation behavior
	GenerateSuggestionsFn func(ctx context.Context, userID uuid.UUID, contextText string) ([]domain.TaskSuggestion, error)

	// Defaults used when GenerateSuggestionsFn isn't set
	Suggestions []domain.TaskSuggestion
	Err         error

	// CallCount tracks how many times GenerateSuggestions was called
	CallCount int
}

// GenerateSuggestions implements the generation.SuggestionGenerator interface
func (m *MockSuggestionGenerator) GenerateSuggestions(
	ctx context.Context,
	userID uuid.UUID,
	contextText string,
) ([]domain.TaskSuggestion, error) {
	m.CallCount++
	if m.GenerateSuggestionsFn != nil {
		return m.GenerateSuggestionsFn(ctx, userID, contextText)
	}
	return m.Suggestions, m.Err
}
