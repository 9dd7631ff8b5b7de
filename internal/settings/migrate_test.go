package settings

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, Migrate(db, nil))
	require.NoError(t, Migrate(db, nil))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	_, err = db.Exec(`INSERT INTO settings (key, value) VALUES ('k', 'v')`)
	assert.NoError(t, err)
}

func TestPendingMigrations_OrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte("SELECT 2;")},
		"sql/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"sql/0003_third.sql":  {Data: []byte("SELECT 3;")},
		"sql/README.md":       {Data: []byte("not a migration")},
		"sql/12_short.sql":    {Data: []byte("bad prefix")},
	}

	got, err := pendingMigrations(fsys, map[string]bool{"0002": true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0001", got[0].version)
	assert.Equal(t, "first", got[0].name)
	assert.Equal(t, "0003", got[1].version)
	assert.Equal(t, "SELECT 3;", got[1].body)
}
