package search

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codxdev/codx/pkg/types"
)

const (
	cacheSize       = 1024
	defaultCacheTTL = time.Hour
)

// cacheEntry is a cached response with its expiration time
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// responseCache is an LRU cache of search responses keyed by request hash
type responseCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[[32]byte, *cacheEntry]
}

func newResponseCache() *responseCache {
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// Only reachable with an invalid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &responseCache{cache: cache}
}

func (c *responseCache) get(req Request) (*Response, bool) {
	hash := hashRequest(req)
	now := time.Now()

	c.mu.RLock()
	entry, found := c.cache.Get(hash)
	if !found {
		c.mu.RUnlock()
		return nil, false
	}
	if now.After(entry.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		c.cache.Remove(hash)
		c.mu.Unlock()
		return nil, false
	}
	// Copy while still holding the read lock so the entry can't change
	// underneath us.
	response := copyResponse(entry.response)
	c.mu.RUnlock()

	return response, true
}

func (c *responseCache) put(req Request, response *Response) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}
	c.mu.Lock()
	c.cache.Add(hashRequest(req), entry)
	c.mu.Unlock()
}

func (c *responseCache) purge() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

// copyResponse deep-copies a response so cached entries can't be mutated
// through a caller's slice.
func copyResponse(src *Response) *Response {
	if src == nil {
		return nil
	}
	dst := &Response{
		Total:    src.Total,
		Duration: src.Duration,
		CacheHit: src.CacheHit,
		Results:  make([]types.SearchResult, len(src.Results)),
	}
	for i, result := range src.Results {
		dst.Results[i] = result
		dst.Results[i].Tags = append([]string(nil), result.Tags...)
	}
	return dst
}

// hashRequest computes a deterministic key for a search request
func hashRequest(req Request) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.Limit))
	data.WriteString("|")
	data.WriteString(strings.ToLower(req.Language))
	data.WriteString("|")
	data.WriteString(strings.ToLower(strings.Join(req.Tags, ",")))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%t", req.UseFuzzy))
	return sha256.Sum256([]byte(data.String()))
}
