package gemini

// suggestionSchema is the shape of a single suggestion in the model's
// JSON output.
type suggestionSchema struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// promptData carries the values interpolated into the prompt template.
type promptData struct {
	ContextText string
	Count       int
}
