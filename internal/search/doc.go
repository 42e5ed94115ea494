// Package search implements the snippet search pipeline.
//
// The pipeline combines exact retrieval with approximate matching:
//
//  1. A blank query short-circuits to the full snippet listing, filtered and
//     truncated, with no ranking.
//  2. Otherwise the storage engine's full-text search runs with 2x overfetch
//     to leave headroom for filtering.
//  3. Structural filters apply next: exact case-insensitive language match,
//     and a tag filter requiring every requested tag. Failing snippets are
//     dropped, not down-ranked.
//  4. When fuzzy re-ranking is requested, each survivor's description,
//     content, language and tags are joined into one blob and scored against
//     the query with partial-ratio similarity (0-100). Scores at or below 60
//     are discarded; the rest order by 0.7*similarity + 0.3*rank when a
//     full-text rank exists, else by similarity alone.
//
// SearchCandidates runs steps 3-4 over a caller-held snippet list with no
// full-text stage.
//
// Responses can optionally be cached in an LRU with per-entry TTL; callers
// performing writes invalidate the cache wholesale.
package search
