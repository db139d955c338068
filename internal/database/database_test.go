package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_SQLite(t *testing.T) {
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db))
	// Second run is a no-op.
	require.NoError(t, RunMigrations(db))

	var tables []string
	require.NoError(t, db.Select(&tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`))
	assert.Equal(t, []string{
		"question_analytics",
		"question_options",
		"questions",
		"quiz_analytics",
		"quiz_results",
		"quizzes",
		"schema_migrations",
		"usage_counters",
	}, tables)

	var fk int
	require.NoError(t, db.Get(&fk, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, fk)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("nosuchdriver", "dsn")
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:a.db?cache=shared"))
	assert.Equal(t, "a.db?_foreign_keys=off", sqliteDSN("a.db?_foreign_keys=off"))
}

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (id NUMBER);

CREATE INDEX idx_a ON a (id);
-- trailing
`
	assert.Equal(t, []string{"CREATE TABLE a (id NUMBER)", "CREATE INDEX idx_a ON a (id)"}, SplitStatements(script))
}

func TestMigrationFilesEmbedded(t *testing.T) {
	for _, dir := range []string{"migrations/ansi", "migrations/oracle"} {
		entries, err := migrationFiles.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}
