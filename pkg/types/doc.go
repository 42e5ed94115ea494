// Package types provides shared type definitions for the codx snippet library.
//
// This package defines the domain types passed between the storage engine,
// the search pipeline, and the MCP tool surface: snippets, search results,
// and the validation errors attached to them.
//
// Snippet represents one stored unit of text together with its labels:
//
//	snip := &types.Snippet{
//	    Description: "Connect to Postgres",
//	    Content:     "db, err := sql.Open(\"postgres\", dsn)",
//	    Language:    "go",
//	    Tags:        []string{"go", "database"},
//	}
//
// SearchResult pairs a snippet with the relevance information produced by
// the full-text engine and the fuzzy re-ranking stage.
package types
