package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/generation"
)

// defaultPromptTemplate asks the model for a strict JSON array so the
// response can be parsed without free-text cleanup. Models still wrap
// output in code fences sometimes; extractJSON handles that.
const defaultPromptTemplate = `You are a project planning assistant.
Based on the following project context, suggest up to {{.Count}} concrete,
actionable tasks. Respond with ONLY a JSON array of objects, each with a
"title" (at most 100 characters) and a "description" (at most 500
characters). Do not include any other text.

Project context:
{{.ContextText}}`

// SuggestionGenerator implements generation.SuggestionGenerator using
// Google's Gemini API to produce task suggestions from a user's context.
type SuggestionGenerator struct {
	logger *slog.Logger

	config config.LLMConfig

	promptTemplate *template.Template

	client *genai.Client

	model string
}

// Ensure SuggestionGenerator implements generation.SuggestionGenerator
var _ generation.SuggestionGenerator = (*SuggestionGenerator)(nil)

// NewSuggestionGenerator creates a Gemini-backed suggestion generator.
// Returns generation.ErrInvalidConfig when the API key or model name is
// missing.
func NewSuggestionGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*SuggestionGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("suggestions").Parse(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &SuggestionGenerator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateSuggestions implements generation.SuggestionGenerator.
func (g *SuggestionGenerator) GenerateSuggestions(
	ctx context.Context,
	userID uuid.UUID,
	contextText string,
) ([]domain.TaskSuggestion, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID cannot be empty")
	}

	prompt, err := g.createPrompt(ctx, contextText)
	if err != nil {
		return nil, err
	}

	text, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(text)
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to parse Gemini response",
			"error", err,
			"user_id", userID.String())
		return nil, err
	}

	g.logger.InfoContext(ctx, "generated task suggestions",
		"count", len(suggestions),
		"user_id", userID.String())
	return suggestions, nil
}

// createPrompt renders the prompt template with the given context text.
func (g *SuggestionGenerator) createPrompt(ctx context.Context, contextText string) (string, error) {
	data := promptData{
		ContextText: strings.TrimSpace(contextText),
		Count:       domain.MaxSuggestions,
	}
	if data.ContextText == "" {
		data.ContextText = "A new project with no details provided yet."
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := promptBuffer.String()
	if prompt == "" {
		return "", ErrEmptyContext
	}

	g.logger.DebugContext(ctx, "prompt generated",
		"prompt_length", len(prompt))
	return prompt, nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential
// backoff retry logic. It attempts the call up to config.MaxRetries+1
// times, backing off with jitter between attempts for transient errors.
// Permanent errors (content blocked, empty response) are returned
// immediately without retrying.
func (g *SuggestionGenerator) callGeminiWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, err := g.callOnce(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum)
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not retried.
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached",
				"max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single Gemini API call and extracts the response text.
func (g *SuggestionGenerator) callOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// API errors are assumed transient; the retry loop decides.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	return responseText(resp)
}

// responseText extracts the concatenated text parts from the first
// candidate, classifying safety blocks and empty responses.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}

	return text.String(), nil
}

// parseSuggestions extracts task suggestions from the model's response
// text. The payload may be a bare JSON array, an object with a
// "suggestions" field, or either of those wrapped in a Markdown code
// fence. At most domain.MaxSuggestions entries are returned; entries
// without a title are skipped, and over-long fields are truncated to the
// domain limits.
func parseSuggestions(text string) ([]domain.TaskSuggestion, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON payload in response", generation.ErrInvalidResponse)
	}

	parsed := gjson.Parse(payload)
	items := parsed
	if !parsed.IsArray() {
		items = parsed.Get("suggestions")
		if !items.IsArray() {
			return nil, fmt.Errorf("%w: expected a JSON array of suggestions",
				generation.ErrInvalidResponse)
		}
	}

	var suggestions []domain.TaskSuggestion
	items.ForEach(func(_, item gjson.Result) bool {
		title := strings.TrimSpace(item.Get("title").String())
		if title == "" {
			return true
		}

		description := strings.TrimSpace(item.Get("description").String())
		suggestions = append(suggestions, domain.TaskSuggestion{
			Title:       truncate(title, domain.MaxTitleLength),
			Description: truncate(description, domain.MaxDescriptionLength),
		})
		return len(suggestions) < domain.MaxSuggestions
	})

	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no usable suggestions in response",
			generation.ErrInvalidResponse)
	}

	return suggestions, nil
}

// extractJSON strips an optional Markdown code fence from the response
// and returns the inner JSON text.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence line ("```" or "```json").
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return ""
	}

	// Drop the closing fence.
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
