package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFTS(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "parse json config", "json.Unmarshal(data, &cfg)", "go", "json")
	addTestSnippet(t, store, "walk directory tree", "filepath.WalkDir(root, fn)", "go", "filesystem")

	results, err := store.SearchFTS(ctx, "json", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "parse json config", results[0].Description)
	assert.Equal(t, []string{"json"}, results[0].Tags)
	// bm25 rank is negative for matches
	assert.Less(t, results[0].Rank, 0.0)
}

func TestSearchFTS_PrefixMatch(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	addTestSnippet(t, store, "serialization helpers", "func marshal(v any) ([]byte, error)", "go")

	// Tokens of two or more runes get a prefix wildcard
	results, err := store.SearchFTS(context.Background(), "serial", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "serialization helpers", results[0].Description)
}

func TestSearchFTS_MatchesTags(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	addTestSnippet(t, store, "retry loop", "for i := 0; i < 3; i++ { ... }", "go", "resilience")

	results, err := store.SearchFTS(context.Background(), "resilience", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchFTS_EmptyQuery(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	addTestSnippet(t, store, "anything", "body", "go")

	results, err := store.SearchFTS(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFTS_PunctuationOnlyQuery(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	addTestSnippet(t, store, "anything", "body", "go")

	// Every character is stripped by sanitization, so nothing can match
	results, err := store.SearchFTS(context.Background(), `"*(:^)'`, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFTS_Limit(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	for i := 0; i < 5; i++ {
		addTestSnippet(t, store, "shared keyword widget", "body", "go")
	}

	results, err := store.SearchFTS(context.Background(), "widget", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchFTS_FallsBackOnIndexFailure(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "graceful degradation", "substring scan saves the day", "go")

	// Break the index so the MATCH query fails
	_, err := store.db.ExecContext(ctx, `DROP TABLE snippets_fts`)
	require.NoError(t, err)

	results, err := store.SearchFTS(ctx, "substring", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "graceful degradation", results[0].Description)
	assert.Equal(t, 0.0, results[0].Rank)
}

func TestFallbackSearch(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "HTTP client", "resp, err := http.Get(url)", "go")
	addTestSnippet(t, store, "open file", "f, err := os.Open(path)", "go")

	results, err := store.FallbackSearch(ctx, "http", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "HTTP client", results[0].Description)
}

func TestFallbackSearch_LiteralWildcards(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "percent literal", "progress is 50% done", "text")
	addTestSnippet(t, store, "no percent", "progress is half done", "text")

	// LIKE metacharacters in the query match literally
	results, err := store.FallbackSearch(ctx, "50%", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "percent literal", results[0].Description)
}

func TestRepopulateIndex(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "findable", "unique needle content", "go")

	// Corrupt the derived index by emptying it behind the store's back
	_, err := store.db.ExecContext(ctx, `DELETE FROM snippets_fts`)
	require.NoError(t, err)

	results, err := store.SearchFTS(ctx, "needle", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, store.RepopulateIndex(ctx))

	results, err = store.SearchFTS(ctx, "needle", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.IndexEntries)
}

func TestIndexTracksUpdates(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	snippet := addTestSnippet(t, store, "before", "original text", "go")

	snippet.Description = "after"
	snippet.Content = "replacement text"
	require.NoError(t, store.UpdateSnippet(ctx, snippet))

	results, err := store.SearchFTS(ctx, "original", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.SearchFTS(ctx, "replacement", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBuildMatchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single word", "json", "json*"},
		{"multiple words", "http client", "http* client*"},
		{"single rune kept bare", "x", "x"},
		{"mixed lengths", "a bc", "a bc*"},
		{"strips fts syntax", `"json" OR (config)`, "json* OR* config*"},
		{"colon stripped", "func:main", "func* main*"},
		{"empty", "", ""},
		{"punctuation only", `*:^"`, ""},
		{"multibyte runes counted", "日本", "日本*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildMatchQuery(tt.query))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
