package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// addSnippetTool returns the tool definition for add_snippet
func addSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_snippet",
		Description: "Store a new code snippet with optional language and tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Short free-text description of the snippet",
					"default":     "",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The snippet text; preserved byte-for-byte including newlines",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Language label (e.g. 'go', 'python')",
					"default":     "",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Tag names; trimmed and lower-cased on storage, duplicates tolerated",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"content"},
		},
	}
}

// getSnippetTool returns the tool definition for get_snippet
func getSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_snippet",
		Description: "Retrieve one snippet by its id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet identifier",
				},
			},
			Required: []string{"id"},
		},
	}
}

// listSnippetsTool returns the tool definition for list_snippets
func listSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_snippets",
		Description: "List all stored snippets, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of snippets to return (0 = all)",
					"default":     0,
				},
			},
		},
	}
}

// updateSnippetTool returns the tool definition for update_snippet
func updateSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_snippet",
		Description: "Replace an existing snippet's fields and tag set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet identifier",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
					"default":     "",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "New content",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "New language label",
					"default":     "",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Replacement tag set; an empty array clears all tags",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"id", "content"},
		},
	}
}

// deleteSnippetTool returns the tool definition for delete_snippet
func deleteSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_snippet",
		Description: "Delete a snippet and its tag associations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet identifier",
				},
			},
			Required: []string{"id"},
		},
	}
}

// searchSnippetsTool returns the tool definition for search_snippets
func searchSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_snippets",
		Description: "Search snippets with full-text retrieval and optional fuzzy re-ranking",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query; blank returns all snippets subject to filters",
					"default":     "",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Exact language filter, case-insensitive",
					"default":     "",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Required tags; every listed tag must be present",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"fuzzy": map[string]interface{}{
					"type":        "boolean",
					"description": "Apply approximate re-ranking on top of full-text results",
					"default":     true,
				},
			},
		},
	}
}

// reindexSnippetsTool returns the tool definition for reindex_snippets
func reindexSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_snippets",
		Description: "Rebuild the full-text index from primary snippet data",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query snippet, tag and index statistics for the store",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
