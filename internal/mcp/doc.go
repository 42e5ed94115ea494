// Package mcp implements the Model Context Protocol (MCP) server for Codx.
//
// The MCP server exposes eight tools to AI coding assistants:
//   - add_snippet: Save a new snippet with description, language, and tags
//   - get_snippet: Fetch a snippet by id
//   - list_snippets: List stored snippets, newest first
//   - update_snippet: Replace a snippet's fields and tag set
//   - delete_snippet: Remove a snippet and its tag links
//   - search_snippets: Full-text search with optional fuzzy re-ranking
//   - reindex_snippets: Rebuild the full-text index from primary data
//   - get_status: Report store counts and database size
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Tool: search_snippets
//
// Search snippets by query with optional filters:
//
//	Request:
//	{
//	  "name": "search_snippets",
//	  "arguments": {
//	    "query": "http retry",
//	    "limit": 10,
//	    "language": "go",
//	    "tags": ["networking"],
//	    "fuzzy": true
//	  }
//	}
//
//	Response:
//	{
//	  "total": 2,
//	  "duration_ms": 4,
//	  "results": [
//	    {
//	      "id": 17,
//	      "description": "HTTP client with retry",
//	      "language": "go",
//	      "tags": ["networking", "http"],
//	      "rank": -3.21,
//	      "fuzzy_score": 87,
//	      "score": 59.94
//	    }
//	  ]
//	}
//
// A blank query lists snippets filtered by language and tags. Results
// carry the raw bm25 rank alongside the fuzzy score when re-ranking ran.
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "codx": {
//	      "command": "/usr/local/bin/codx",
//	      "env": {
//	        "CODX_DB_PATH": "/home/user/.codx/codx.db"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {
//	      "param": "id",
//	      "reason": "missing or not an integer"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Store closed
//   - -32002: Empty snippet content
//
// Lookups for ids that do not exist are not errors: get_snippet,
// update_snippet, and delete_snippet report {"found"/"updated"/"deleted": false}.
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol):
//
//	log.SetOutput(os.Stderr)
//	log.Printf("MCP server started")
package mcp
