package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations_RecordsVersion(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	var version string
	err := store.db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	addTestSnippet(t, store, "survives reapply", "body", "go", "keep")

	// Running migrations again must not touch existing data
	require.NoError(t, ApplyMigrations(ctx, store.db))

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Snippets)
	assert.Equal(t, 1, status.Tags)

	var count int
	err = store.db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyMigrations_CreatesAllTables(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	for _, table := range []string{"snippets", "tags", "snippet_tags", "snippets_fts", "schema_version"} {
		var name string
		err := store.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestRollbackMigration(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, RollbackMigration(ctx, store.db))

	var name string
	err := store.db.QueryRow(`SELECT name FROM sqlite_master WHERE name = 'snippets'`).Scan(&name)
	assert.Error(t, err)
}
