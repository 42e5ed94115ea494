package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/codxdev/codx/internal/storage"
	"github.com/codxdev/codx/pkg/types"
)

const (
	// relevanceThreshold drops fuzzy candidates scoring at or below this
	// value on the 0-100 scale. The boundary is strictly greater-than.
	relevanceThreshold = 60

	// fuzzyWeight and rankWeight blend the partial-ratio score with the
	// full-text rank into the combined ordering score.
	fuzzyWeight = 0.7
	rankWeight  = 0.3

	defaultLimit = 10
	maxLimit     = 100
)

// ScoreFunc computes a 0-100 similarity between a query and candidate text
type ScoreFunc func(query, text string) int

// Request contains parameters for a search operation
type Request struct {
	Query    string
	Limit    int
	Language string   // exact, case-insensitive language filter
	Tags     []string // every tag must be present, case-insensitively
	UseFuzzy bool     // enable approximate re-ranking
	UseCache bool     // whether to use the response cache
	CacheTTL time.Duration
}

// Response contains search results and metadata
type Response struct {
	Results  []types.SearchResult
	Total    int
	Duration time.Duration
	CacheHit bool
}

// Pipeline turns a free-text query plus structural filters into a ranked
// result list, combining full-text retrieval with approximate matching.
type Pipeline struct {
	store  storage.Store
	scorer ScoreFunc
	cache  *responseCache
}

// NewPipeline creates a Pipeline over a store, scoring with partial-ratio
func NewPipeline(store storage.Store) *Pipeline {
	return &Pipeline{
		store:  store,
		scorer: fuzzy.PartialRatio,
		cache:  newResponseCache(),
	}
}

// Search executes the two-stage pipeline: full-text retrieval with 2x
// overfetch, structural filtering, then optional fuzzy re-ranking. A blank
// query returns all snippets, filtered and truncated, with no ranking step.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()
	normalizeRequest(&req)

	if req.UseCache {
		if cached, ok := p.cache.get(req); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	var results []types.SearchResult
	if strings.TrimSpace(req.Query) == "" {
		snippets, err := p.store.ListSnippets(ctx)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		results = truncate(applyFilters(asResults(snippets), req.Language, req.Tags), req.Limit)
	} else {
		// Overfetch to leave headroom for filtering before truncation
		candidates, err := p.store.SearchFTS(ctx, req.Query, req.Limit*2)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		filtered := applyFilters(candidates, req.Language, req.Tags)
		if req.UseFuzzy && len(filtered) > 0 {
			results = p.rerank(filtered, req.Query, req.Limit)
		} else {
			results = truncate(filtered, req.Limit)
		}
	}

	response := &Response{
		Results:  results,
		Total:    len(results),
		Duration: time.Since(startTime),
	}

	if req.UseCache && len(results) > 0 {
		p.cache.put(req, response)
	}

	return response, nil
}

// SearchCandidates runs filtering and fuzzy matching over a caller-held
// snippet list, with no full-text stage. An empty candidate list yields an
// empty result immediately, independent of query.
func (p *Pipeline) SearchCandidates(candidates []types.Snippet, query string, limit int, language string, tags []string) []types.SearchResult {
	if len(candidates) == 0 {
		return []types.SearchResult{}
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	filtered := applyFilters(asResults(candidates), language, tags)
	if strings.TrimSpace(query) == "" {
		return truncate(filtered, limit)
	}
	return p.rerank(filtered, query, limit)
}

// Invalidate drops every cached response. Called after writes.
func (p *Pipeline) Invalidate() {
	p.cache.purge()
}

// rerank scores each candidate's searchable text against the query,
// discards scores at or below the relevance threshold, and orders the
// survivors by combined score, descending.
func (p *Pipeline) rerank(candidates []types.SearchResult, query string, limit int) []types.SearchResult {
	kept := make([]types.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		score := p.scorer(query, searchableText(c.Snippet))
		if score <= relevanceThreshold {
			continue
		}
		c.FuzzyScore = score
		if c.Rank != 0 {
			c.Score = fuzzyWeight*float64(score) + rankWeight*c.Rank
		} else {
			c.Score = float64(score)
		}
		kept = append(kept, c)
	}

	// Stable sort keeps ties deterministic for identical inputs
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return truncate(kept, limit)
}

// searchableText builds the one blob the fuzzy scorer sees per snippet
func searchableText(s types.Snippet) string {
	return s.Description + " " + s.Content + " " + s.Language + " " + strings.Join(s.Tags, " ")
}

// applyFilters drops snippets failing the language or tag predicates.
// Failing any filter drops the snippet entirely, it is never down-ranked.
func applyFilters(results []types.SearchResult, language string, tags []string) []types.SearchResult {
	filtered := results
	if language != "" {
		kept := make([]types.SearchResult, 0, len(filtered))
		for _, r := range filtered {
			if strings.EqualFold(r.Language, language) {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}
	if len(tags) > 0 {
		kept := make([]types.SearchResult, 0, len(filtered))
		for _, r := range filtered {
			if hasAllTags(r.Snippet, tags) {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}
	return filtered
}

func hasAllTags(s types.Snippet, required []string) bool {
	for _, tag := range required {
		if !s.HasTag(tag) {
			return false
		}
	}
	return true
}

func asResults(snippets []types.Snippet) []types.SearchResult {
	results := make([]types.SearchResult, len(snippets))
	for i, s := range snippets {
		results[i] = types.SearchResult{Snippet: s}
	}
	return results
}

func truncate(results []types.SearchResult, limit int) []types.SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

// normalizeRequest applies limit defaults and caps
func normalizeRequest(req *Request) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.CacheTTL == 0 {
		req.CacheTTL = defaultCacheTTL
	}
}
