package types

import (
	"strings"
	"time"
)

// Snippet is a stored unit of text with its labels.
type Snippet struct {
	ID          int64
	Description string
	Content     string
	Language    string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks that the snippet can be persisted.
func (s *Snippet) Validate() error {
	if s.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// HasTag reports whether the snippet carries the given tag, ignoring case.
func (s *Snippet) HasTag(name string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// SearchResult is a snippet annotated with relevance information.
type SearchResult struct {
	Snippet

	// Rank is the full-text engine's relevance rank (bm25, lower is more
	// relevant, negative for real matches). Zero when the result came from
	// the substring fallback or from an unranked listing.
	Rank float64

	// FuzzyScore is the partial-ratio similarity on the 0-100 scale,
	// populated only when fuzzy re-ranking ran.
	FuzzyScore int

	// Score is the combined ordering score used for the final sort.
	Score float64
}
