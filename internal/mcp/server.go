package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codxdev/codx/internal/search"
	"github.com/codxdev/codx/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "codx"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the snippet database
	DefaultDBPath = "~/.codx/codx.db"
)

// Server wraps the MCP server with the storage engine and search pipeline
type Server struct {
	mcp      *server.MCPServer
	store    storage.Store
	pipeline *search.Pipeline
}

// NewServer creates a new MCP server instance over the database at dbPath.
// An empty path uses the default user-scoped location; the parent directory
// is created if absent.
func NewServer(dbPath string) (*Server, error) {
	var err error
	dbPath, err = resolveDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	pipeline := search.NewPipeline(store)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		store:    store,
		pipeline: pipeline,
	}

	s.registerTools()

	return s, nil
}

// resolveDBPath expands the default and home-relative database locations
func resolveDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if len(dbPath) >= 2 && dbPath[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[2:])
	}
	return dbPath, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(addSnippetTool(), s.handleAddSnippet)
	s.mcp.AddTool(getSnippetTool(), s.handleGetSnippet)
	s.mcp.AddTool(listSnippetsTool(), s.handleListSnippets)
	s.mcp.AddTool(updateSnippetTool(), s.handleUpdateSnippet)
	s.mcp.AddTool(deleteSnippetTool(), s.handleDeleteSnippet)
	s.mcp.AddTool(searchSnippetsTool(), s.handleSearchSnippets)
	s.mcp.AddTool(reindexSnippetsTool(), s.handleReindexSnippets)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
