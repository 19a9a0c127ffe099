package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

func TestFallbackGenerator_KeywordBuckets(t *testing.T) {
	t.Parallel()

	gen := NewFallbackGenerator(nil)
	ctx := context.Background()
	userID := uuid.New()

	cases := []struct {
		name        string
		contextText string
		wantTitle   string // Title of the first suggestion in the matched bucket
	}{
		{
			name:        "frontend keywords",
			contextText: "Building a web dashboard for analytics",
			wantTitle:   "Create wireframes",
		},
		{
			name:        "frontend keyword case insensitive",
			contextText: "FRONTEND work for the new portal",
			wantTitle:   "Create wireframes",
		},
		{
			name:        "backend keywords",
			contextText: "REST API for the mobile app",
			wantTitle:   "Define API contract",
		},
		{
			name:        "database keywords",
			contextText: "migrating the postgres schema",
			wantTitle:   "Design database schema",
		},
		{
			name:        "no match falls back to defaults",
			contextText: "organizing a team offsite",
			wantTitle:   "Define project goals",
		},
		{
			name:        "empty context falls back to defaults",
			contextText: "",
			wantTitle:   "Define project goals",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			suggestions, err := gen.GenerateSuggestions(ctx, userID, tc.contextText)
			if err != nil {
				t.Fatalf("GenerateSuggestions() error = %v", err)
			}
			if len(suggestions) == 0 {
				t.Fatal("GenerateSuggestions() returned no suggestions")
			}
			if len(suggestions) > domain.MaxSuggestions {
				t.Errorf("returned %d suggestions, want at most %d",
					len(suggestions), domain.MaxSuggestions)
			}
			if suggestions[0].Title != tc.wantTitle {
				t.Errorf("first suggestion = %q, want %q", suggestions[0].Title, tc.wantTitle)
			}
		})
	}
}

func TestFallbackGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	gen := NewFallbackGenerator(nil)
	ctx := context.Background()
	userID := uuid.New()

	first, err := gen.GenerateSuggestions(ctx, userID, "api server work")
	if err != nil {
		t.Fatalf("GenerateSuggestions() error = %v", err)
	}
	second, err := gen.GenerateSuggestions(ctx, userID, "api server work")
	if err != nil {
		t.Fatalf("GenerateSuggestions() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("suggestion counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("suggestion %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFallbackGenerator_SuggestionsHaveContent(t *testing.T) {
	t.Parallel()

	gen := NewFallbackGenerator(nil)
	suggestions, err := gen.GenerateSuggestions(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("GenerateSuggestions() error = %v", err)
	}

	for i, s := range suggestions {
		if strings.TrimSpace(s.Title) == "" {
			t.Errorf("suggestion %d has empty title", i)
		}
		if strings.TrimSpace(s.Description) == "" {
			t.Errorf("suggestion %d has empty description", i)
		}
		if len(s.Title) > domain.MaxTitleLength {
			t.Errorf("suggestion %d title exceeds %d characters", i, domain.MaxTitleLength)
		}
	}
}
