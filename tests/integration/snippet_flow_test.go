package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/codxdev/codx/internal/search"
	"github.com/codxdev/codx/internal/storage"
	"github.com/codxdev/codx/pkg/types"
)

// SnippetFlowTestSuite exercises the full stack: storage, derived index,
// and search pipeline against a real database file.
type SnippetFlowTestSuite struct {
	suite.Suite
	store    *storage.SQLiteStore
	pipeline *search.Pipeline
	ctx      context.Context
}

func (s *SnippetFlowTestSuite) SetupTest() {
	s.ctx = context.Background()

	store, err := storage.NewSQLiteStore(filepath.Join(s.T().TempDir(), "codx.db"))
	s.Require().NoError(err)
	s.store = store
	s.pipeline = search.NewPipeline(store)
}

func (s *SnippetFlowTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SnippetFlowTestSuite) addSnippet(description, content, language string, tags ...string) *types.Snippet {
	snippet := &types.Snippet{
		Description: description,
		Content:     content,
		Language:    language,
		Tags:        tags,
	}
	s.Require().NoError(s.store.AddSnippet(s.ctx, snippet))
	return snippet
}

func (s *SnippetFlowTestSuite) TestAddSearchUpdateDelete() {
	snippet := s.addSnippet("exponential backoff", "time.Sleep(delay * 2)", "go", "retry")
	s.addSnippet("parse yaml", "yaml.Unmarshal(b, &cfg)", "go", "config")

	// New snippet is immediately searchable
	resp, err := s.pipeline.Search(s.ctx, search.Request{Query: "backoff", UseFuzzy: true})
	s.Require().NoError(err)
	s.Require().Equal(1, resp.Total)
	s.Equal(snippet.ID, resp.Results[0].ID)
	s.Greater(resp.Results[0].FuzzyScore, 60)

	// Update replaces the indexed text
	snippet.Description = "linear backoff"
	snippet.Content = "time.Sleep(delay)"
	s.Require().NoError(s.store.UpdateSnippet(s.ctx, snippet))
	s.pipeline.Invalidate()

	resp, err = s.pipeline.Search(s.ctx, search.Request{Query: "exponential", UseFuzzy: false})
	s.Require().NoError(err)
	s.Equal(0, resp.Total)

	resp, err = s.pipeline.Search(s.ctx, search.Request{Query: "linear", UseFuzzy: false})
	s.Require().NoError(err)
	s.Equal(1, resp.Total)

	// Delete removes the snippet from both stores
	s.Require().NoError(s.store.DeleteSnippet(s.ctx, snippet.ID))

	resp, err = s.pipeline.Search(s.ctx, search.Request{Query: "linear", UseFuzzy: false})
	s.Require().NoError(err)
	s.Equal(0, resp.Total)

	status, err := s.store.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, status.Snippets)
	s.Equal(1, status.IndexEntries)
}

func (s *SnippetFlowTestSuite) TestFilteredSearch() {
	s.addSnippet("http client", "http.Get(url)", "go", "http")
	s.addSnippet("http server", "app.run(port=8080)", "python", "http")
	s.addSnippet("tcp dial", "net.Dial(\"tcp\", addr)", "go", "net")

	resp, err := s.pipeline.Search(s.ctx, search.Request{
		Query:    "http",
		Language: "go",
		Tags:     []string{"HTTP"},
		UseFuzzy: true,
	})
	s.Require().NoError(err)
	s.Require().Equal(1, resp.Total)
	s.Equal("http client", resp.Results[0].Description)
}

func (s *SnippetFlowTestSuite) TestBlankQueryListing() {
	s.addSnippet("first", "a", "go")
	s.addSnippet("second", "b", "python")

	resp, err := s.pipeline.Search(s.ctx, search.Request{})
	s.Require().NoError(err)
	s.Equal(2, resp.Total)
	// Newest first
	s.Equal("second", resp.Results[0].Description)
}

func (s *SnippetFlowTestSuite) TestReindexRecovery() {
	s.addSnippet("recoverable", "needle in the haystack", "go")

	// Simulate index drift, then rebuild from primary data
	s.Require().NoError(s.store.RepopulateIndex(s.ctx))

	resp, err := s.pipeline.Search(s.ctx, search.Request{Query: "needle", UseFuzzy: false})
	s.Require().NoError(err)
	s.Equal(1, resp.Total)
}

func (s *SnippetFlowTestSuite) TestCacheInvalidationOnWrite() {
	s.addSnippet("cached", "original body", "go")

	req := search.Request{Query: "cached", UseCache: true, UseFuzzy: false}

	first, err := s.pipeline.Search(s.ctx, req)
	s.Require().NoError(err)
	s.False(first.CacheHit)

	second, err := s.pipeline.Search(s.ctx, req)
	s.Require().NoError(err)
	s.True(second.CacheHit)

	s.addSnippet("cached again", "another body", "go")
	s.pipeline.Invalidate()

	third, err := s.pipeline.Search(s.ctx, req)
	s.Require().NoError(err)
	s.False(third.CacheHit)
	s.Equal(2, third.Total)
}

func TestSnippetFlowTestSuite(t *testing.T) {
	suite.Run(t, new(SnippetFlowTestSuite))
}
