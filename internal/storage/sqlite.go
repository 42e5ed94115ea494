package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codxdev/codx/pkg/types"
)

var (
	// ErrNotFound is returned when a requested snippet doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance and applies any
// pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection. Every operation after Close fails
// fast with ErrClosed instead of reopening.
func (s *SQLiteStore) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

// checkOpen guards every operation against use after Close
func (s *SQLiteStore) checkOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn inside a transaction, rolling back before the error is
// reported upward.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// displayTagSeparator joins tag names for callers; indexTagSeparator joins
// them for the FTS payload so each name tokenizes on its own.
const (
	displayTagSeparator = ", "
	indexTagSeparator   = " "
)

// snippetColumns is the shared projection for queries returning snippets
// with their aggregated tags.
const snippetColumns = `
	s.id, s.description, s.content, s.language, s.created_at, s.updated_at,
	COALESCE(GROUP_CONCAT(t.name, ', '), '') AS tags
`

const snippetJoins = `
	LEFT JOIN snippet_tags st ON s.id = st.snippet_id
	LEFT JOIN tags t ON st.tag_id = t.id
`

// splitTags converts an aggregated tag string into a list. A tag-less
// snippet yields an empty list, never nil.
func splitTags(aggregated string) []string {
	if aggregated == "" {
		return []string{}
	}
	return strings.Split(aggregated, displayTagSeparator)
}

// normalizeTag trims and lower-cases a tag name; blank tags collapse to ""
func normalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// scanSnippet reads one row of the shared snippet projection
func scanSnippet(scan func(dest ...interface{}) error) (types.Snippet, error) {
	var snip types.Snippet
	var tags string
	err := scan(&snip.ID, &snip.Description, &snip.Content, &snip.Language,
		&snip.CreatedAt, &snip.UpdatedAt, &tags)
	if err != nil {
		return types.Snippet{}, err
	}
	snip.Tags = splitTags(tags)
	return snip, nil
}

// AddSnippet inserts a snippet, ensures its tags and links exist, and writes
// the derived index entry, all in one transaction. ID and timestamps are
// filled on success.
func (s *SQLiteStore) AddSnippet(ctx context.Context, snippet *types.Snippet) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := snippet.Validate(); err != nil {
		return err
	}

	now := time.Now()
	var id int64
	err := s.withTx(ctx, func(q querier) error {
		result, err := q.ExecContext(ctx,
			`INSERT INTO snippets (description, content, language, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			snippet.Description, snippet.Content, snippet.Language, now, now)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		if err != nil {
			return err
		}
		if err := linkTags(ctx, q, id, snippet.Tags); err != nil {
			return err
		}
		return syncIndexEntry(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("failed to add snippet: %w", err)
	}

	snippet.ID = id
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	return nil
}

// GetSnippet returns one snippet with its aggregated tags, or ErrNotFound
func (s *SQLiteStore) GetSnippet(ctx context.Context, id int64) (*types.Snippet, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	query := `SELECT ` + snippetColumns + ` FROM snippets s ` + snippetJoins + `
		WHERE s.id = ?
		GROUP BY s.id`
	row := s.db.QueryRowContext(ctx, query, id)
	snip, err := scanSnippet(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snippet: %w", err)
	}
	return &snip, nil
}

// ListSnippets returns every snippet with aggregated tags, newest-created first
func (s *SQLiteStore) ListSnippets(ctx context.Context) ([]types.Snippet, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	query := `SELECT ` + snippetColumns + ` FROM snippets s ` + snippetJoins + `
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snippets := make([]types.Snippet, 0)
	for rows.Next() {
		snip, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, snip)
	}
	return snippets, rows.Err()
}

// UpdateSnippet replaces description, content, language and the whole tag set
// of an existing snippet, refreshes updated_at, and rewrites the index entry,
// all in one transaction. Returns ErrNotFound if the id doesn't exist.
func (s *SQLiteStore) UpdateSnippet(ctx context.Context, snippet *types.Snippet) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := snippet.Validate(); err != nil {
		return err
	}

	now := time.Now()
	err := s.withTx(ctx, func(q querier) error {
		if err := snippetExists(ctx, q, snippet.ID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx,
			`UPDATE snippets SET description = ?, content = ?, language = ?, updated_at = ? WHERE id = ?`,
			snippet.Description, snippet.Content, snippet.Language, now, snippet.ID)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID); err != nil {
			return err
		}
		if err := linkTags(ctx, q, snippet.ID, snippet.Tags); err != nil {
			return err
		}
		return syncIndexEntry(ctx, q, snippet.ID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update snippet: %w", err)
	}

	snippet.UpdatedAt = now
	return nil
}

// DeleteSnippet removes a snippet, its tag links and its index entry in one
// transaction. Returns ErrNotFound if the id doesn't exist. Tag rows are
// never garbage-collected.
func (s *SQLiteStore) DeleteSnippet(ctx context.Context, id int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	err := s.withTx(ctx, func(q querier) error {
		if err := snippetExists(ctx, q, id); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM snippet_tags WHERE snippet_id = ?`, id); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM snippets_fts WHERE content_id = ?`, id); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete snippet: %w", err)
	}
	return nil
}

// snippetExists returns ErrNotFound when the id has no row
func snippetExists(ctx context.Context, q querier, id int64) error {
	var found int64
	err := q.QueryRowContext(ctx, `SELECT id FROM snippets WHERE id = ?`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// linkTags ensures a tag row and a link row exist for every non-blank tag.
// Duplicate names in the input are tolerated via INSERT OR IGNORE.
func linkTags(ctx context.Context, q querier, snippetID int64, tags []string) error {
	for _, raw := range tags {
		name := normalizeTag(raw)
		if name == "" {
			continue
		}
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return err
		}
		var tagID int64
		if err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`, snippetID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// syncIndexEntry rewrites the snippet's derived index entry from current
// primary data. Must run inside the same transaction as the primary write.
func syncIndexEntry(ctx context.Context, q querier, snippetID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM snippets_fts WHERE content_id = ?`, snippetID); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO snippets_fts (description, content, language, tags, content_id)
		SELECT s.description, s.content, s.language,
		       COALESCE(GROUP_CONCAT(t.name, ' '), ''), s.id
		FROM snippets s
		LEFT JOIN snippet_tags st ON s.id = st.snippet_id
		LEFT JOIN tags t ON st.tag_id = t.id
		WHERE s.id = ?
		GROUP BY s.id`, snippetID)
	return err
}

// RepopulateIndex clears all derived index entries and regenerates one entry
// per snippet from current primary data, atomically. Used to recover from
// index divergence or to retrofit indexing onto existing data.
func (s *SQLiteStore) RepopulateIndex(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	err := s.withTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM snippets_fts`); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO snippets_fts (description, content, language, tags, content_id)
			SELECT s.description, s.content, s.language,
			       COALESCE(GROUP_CONCAT(t.name, ' '), ''), s.id
			FROM snippets s
			LEFT JOIN snippet_tags st ON s.id = st.snippet_id
			LEFT JOIN tags t ON st.tag_id = t.id
			GROUP BY s.id`)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to repopulate search index: %w", err)
	}
	return nil
}

// Status returns table counts and the database size
func (s *SQLiteStore) Status(ctx context.Context) (*StoreStatus, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	status := &StoreStatus{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM snippets", &status.Snippets},
		{"SELECT COUNT(*) FROM tags", &status.Tags},
		{"SELECT COUNT(*) FROM snippet_tags", &status.Links},
		{"SELECT COUNT(*) FROM snippets_fts", &status.IndexEntries},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get store status: %w", err)
		}
	}

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}
