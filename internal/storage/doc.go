// Package storage provides SQLite-based persistence for the snippet library.
//
// The storage layer manages:
//   - Snippet rows (description, content, language, timestamps)
//   - Tags and snippet-tag links
//   - A derived FTS5 full-text index kept in sync with primary data
//
// # Database Schema
//
// Tables:
//   - snippets: the primary rows
//   - tags: normalized tag names (trimmed, lower-cased, unique)
//   - snippet_tags: many-to-many links, one per (snippet, tag) pair
//   - snippets_fts: FTS5 projection of each snippet plus its space-joined tags
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("~/.codx/codx.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	snip := &types.Snippet{
//	    Description: "Connect to Postgres",
//	    Content:     content,
//	    Language:    "go",
//	    Tags:        []string{"go", "database"},
//	}
//	if err := store.AddSnippet(ctx, snip); err != nil {
//	    return err
//	}
//
// Every multi-statement mutation runs in one transaction: the snippet row,
// its tag links and its index entry commit or roll back together. The index
// can also be rebuilt wholesale with RepopulateIndex after divergence.
//
// # Search
//
// SearchFTS ranks matches with FTS5's bm25 rank (lower is more relevant) and
// adds a prefix wildcard to query tokens of two or more runes. When the
// full-text engine errors, the call transparently degrades to FallbackSearch,
// a case-insensitive substring scan, and logs a diagnostic; callers never see
// the engine failure.
//
// # Lifecycle
//
// A store owns a single connection. After Close, every operation fails fast
// with ErrClosed instead of reopening.
//
// # Build Tags
//
// Two driver configurations are supported:
//
// CGO build (sqlite_fts5 tag), using github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "sqlite_fts5 fts5" ./...
//
// Pure Go build (default), using modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build ./...
package storage
