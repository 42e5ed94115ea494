package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codxdev/codx/internal/search"
	"github.com/codxdev/codx/internal/storage"
	"github.com/codxdev/codx/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeStoreClosed   = -32001 // Store has been closed
	ErrorCodeEmptyContent  = -32002 // Snippet content is empty
)

// handleAddSnippet handles the add_snippet tool invocation
func (s *Server) handleAddSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeEmptyContent, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	snip := &types.Snippet{
		Description: getStringDefault(args, "description", ""),
		Content:     content,
		Language:    getStringDefault(args, "language", ""),
		Tags:        getStringSlice(args, "tags"),
	}
	if err := snip.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeEmptyContent, "invalid snippet", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := s.store.AddSnippet(ctx, snip); err != nil {
		return nil, storeError("failed to add snippet", err)
	}
	s.pipeline.Invalidate()

	response := map[string]interface{}{
		"id":         snip.ID,
		"created_at": snip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSnippet handles the get_snippet tool invocation
func (s *Server) handleGetSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := getID(args)
	if err != nil {
		return nil, err
	}

	snip, err := s.store.GetSnippet(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"found": false,
			"id":    id,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, storeError("failed to get snippet", err)
	}

	response := map[string]interface{}{
		"found":   true,
		"snippet": snippetToMap(*snip),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListSnippets handles the list_snippets tool invocation
func (s *Server) handleListSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	snippets, err := s.store.ListSnippets(ctx)
	if err != nil {
		return nil, storeError("failed to list snippets", err)
	}

	limit := getIntDefault(args, "limit", 0)
	if limit > 0 && len(snippets) > limit {
		snippets = snippets[:limit]
	}

	items := make([]interface{}, len(snippets))
	for i, snip := range snippets {
		items[i] = snippetToMap(snip)
	}
	response := map[string]interface{}{
		"total":    len(items),
		"snippets": items,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateSnippet handles the update_snippet tool invocation
func (s *Server) handleUpdateSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := getID(args)
	if err != nil {
		return nil, err
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeEmptyContent, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	snip := &types.Snippet{
		ID:          id,
		Description: getStringDefault(args, "description", ""),
		Content:     content,
		Language:    getStringDefault(args, "language", ""),
		Tags:        getStringSlice(args, "tags"),
	}

	err = s.store.UpdateSnippet(ctx, snip)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"updated": false,
			"id":      id,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, storeError("failed to update snippet", err)
	}
	s.pipeline.Invalidate()

	response := map[string]interface{}{
		"updated": true,
		"id":      id,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteSnippet handles the delete_snippet tool invocation
func (s *Server) handleDeleteSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := getID(args)
	if err != nil {
		return nil, err
	}

	err = s.store.DeleteSnippet(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"deleted": false,
			"id":      id,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, storeError("failed to delete snippet", err)
	}
	s.pipeline.Invalidate()

	response := map[string]interface{}{
		"deleted": true,
		"id":      id,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSnippets handles the search_snippets tool invocation
func (s *Server) handleSearchSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	req := search.Request{
		Query:    getStringDefault(args, "query", ""),
		Limit:    limit,
		Language: getStringDefault(args, "language", ""),
		Tags:     getStringSlice(args, "tags"),
		UseFuzzy: getBoolDefault(args, "fuzzy", true),
	}

	resp, err := s.pipeline.Search(ctx, req)
	if err != nil {
		return nil, storeError("search failed", err)
	}

	items := make([]interface{}, len(resp.Results))
	for i, res := range resp.Results {
		item := snippetToMap(res.Snippet)
		item["rank"] = res.Rank
		if res.FuzzyScore > 0 {
			item["fuzzy_score"] = res.FuzzyScore
			item["score"] = res.Score
		}
		items[i] = item
	}
	response := map[string]interface{}{
		"total":       resp.Total,
		"duration_ms": resp.Duration.Milliseconds(),
		"results":     items,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexSnippets handles the reindex_snippets tool invocation
func (s *Server) handleReindexSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.RepopulateIndex(ctx); err != nil {
		return nil, storeError("failed to repopulate search index", err)
	}
	s.pipeline.Invalidate()

	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, storeError("failed to get store status", err)
	}
	response := map[string]interface{}{
		"reindexed":     true,
		"index_entries": status.IndexEntries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, storeError("failed to get store status", err)
	}

	response := map[string]interface{}{
		"snippets":      status.Snippets,
		"tags":          status.Tags,
		"links":         status.Links,
		"index_entries": status.IndexEntries,
		"size_mb":       fmt.Sprintf("%.2f", status.SizeMB),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// storeError maps storage failures onto MCP error codes
func storeError(message string, err error) error {
	code := ErrorCodeInternalError
	if errors.Is(err, storage.ErrClosed) {
		code = ErrorCodeStoreClosed
	}
	return newMCPError(code, message, map[string]interface{}{
		"error": err.Error(),
	})
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// getID extracts the required snippet id parameter
func getID(args map[string]interface{}) (int64, error) {
	switch v := args["id"].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
		"param":  "id",
		"reason": "missing or not an integer",
	})
}

// snippetToMap flattens a snippet for JSON output
func snippetToMap(snip types.Snippet) map[string]interface{} {
	return map[string]interface{}{
		"id":          snip.ID,
		"description": snip.Description,
		"content":     snip.Content,
		"language":    snip.Language,
		"tags":        snip.Tags,
		"created_at":  snip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updated_at":  snip.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter; absent yields nil
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
