package domain

// TaskSuggestion is a proposed, not-yet-persisted task candidate.
// Suggestions only become tasks when the user explicitly promotes
// them through task creation.
type TaskSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MaxSuggestions caps the size of a suggestion batch.
const MaxSuggestions = 5
