package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/codxdev/codx/pkg/types"
)

const defaultSearchLimit = 50

// SearchFTS runs a ranked full-text search over the derived index. Any
// execution error from the full-text engine is absorbed: a diagnostic is
// logged and the substring fallback answers instead, so callers never see
// the failure.
func (s *SQLiteStore) SearchFTS(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	match := buildMatchQuery(query)
	if match == "" {
		// Nothing left to match after sanitization
		return []types.SearchResult{}, nil
	}

	// rank is FTS5's built-in bm25 relevance column; lower is more relevant.
	sqlQuery := `
		SELECT s.id, s.description, s.content, s.language, s.created_at, s.updated_at,
		       COALESCE(GROUP_CONCAT(t.name, ', '), '') AS tags,
		       fts.rank
		FROM snippets_fts fts
		JOIN snippets s ON fts.content_id = s.id
		LEFT JOIN snippet_tags st ON s.id = st.snippet_id
		LEFT JOIN tags t ON st.tag_id = t.id
		WHERE snippets_fts MATCH ?
		GROUP BY s.id
		ORDER BY fts.rank
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, match, limit)
	if err != nil {
		log.Printf("full-text search failed, falling back to substring scan: %v", err)
		return s.FallbackSearch(ctx, query, limit)
	}
	defer func() { _ = rows.Close() }()

	results, err := collectRankedResults(rows)
	if err != nil {
		log.Printf("full-text search failed, falling back to substring scan: %v", err)
		return s.FallbackSearch(ctx, query, limit)
	}
	return results, nil
}

// FallbackSearch matches snippets whose description, content or language
// contains the raw query as a substring, case-insensitively, newest-first.
// Results carry no relevance rank.
func (s *SQLiteStore) FallbackSearch(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := `
		SELECT s.id, s.description, s.content, s.language, s.created_at, s.updated_at,
		       COALESCE(GROUP_CONCAT(t.name, ', '), '') AS tags
		FROM snippets s
		LEFT JOIN snippet_tags st ON s.id = st.snippet_id
		LEFT JOIN tags t ON st.tag_id = t.id
		WHERE s.description LIKE ? ESCAPE '\' OR s.content LIKE ? ESCAPE '\' OR s.language LIKE ? ESCAPE '\'
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("fallback search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.SearchResult, 0)
	for rows.Next() {
		snip, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("fallback search failed: %w", err)
		}
		results = append(results, types.SearchResult{Snippet: snip})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fallback search failed: %w", err)
	}
	return results, nil
}

// collectRankedResults reads rows of the snippet projection plus a rank column
func collectRankedResults(rows *sql.Rows) ([]types.SearchResult, error) {
	results := make([]types.SearchResult, 0)
	for rows.Next() {
		var res types.SearchResult
		var tags string
		err := rows.Scan(&res.ID, &res.Description, &res.Content, &res.Language,
			&res.CreatedAt, &res.UpdatedAt, &tags, &res.Rank)
		if err != nil {
			return nil, err
		}
		res.Tags = splitTags(tags)
		results = append(results, res)
	}
	return results, rows.Err()
}

// ftsSanitizer strips characters that are syntactically significant to the
// FTS5 query language.
var ftsSanitizer = strings.NewReplacer(
	`"`, " ",
	`'`, " ",
	`(`, " ",
	`)`, " ",
	`*`, " ",
	`:`, " ",
	`^`, " ",
)

// buildMatchQuery turns free text into an FTS5 MATCH expression: sanitized,
// whitespace-tokenized, with a prefix wildcard appended to every token of two
// or more runes. Returns "" when no tokens survive.
func buildMatchQuery(query string) string {
	words := strings.Fields(ftsSanitizer.Replace(query))
	if len(words) == 0 {
		return ""
	}

	terms := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) >= 2 {
			terms = append(terms, word+"*")
		} else {
			terms = append(terms, word)
		}
	}
	return strings.Join(terms, " ")
}

// escapeLike escapes LIKE metacharacters so the query matches literally
func escapeLike(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(query)
}
