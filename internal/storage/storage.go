package storage

import (
	"context"

	"github.com/codxdev/codx/pkg/types"
)

// Store defines the interface for persisting and querying snippets
type Store interface {
	// Snippet operations
	AddSnippet(ctx context.Context, snippet *types.Snippet) error
	GetSnippet(ctx context.Context, id int64) (*types.Snippet, error)
	ListSnippets(ctx context.Context) ([]types.Snippet, error)
	UpdateSnippet(ctx context.Context, snippet *types.Snippet) error
	DeleteSnippet(ctx context.Context, id int64) error

	// Search operations
	SearchFTS(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
	FallbackSearch(ctx context.Context, query string, limit int) ([]types.SearchResult, error)

	// Index maintenance
	RepopulateIndex(ctx context.Context) error

	// Status operations
	Status(ctx context.Context) (*StoreStatus, error)

	// Database operations
	Close() error
}

// StoreStatus contains statistics about the store
type StoreStatus struct {
	Snippets     int
	Tags         int
	Links        int
	IndexEntries int
	SizeMB       float64
}
