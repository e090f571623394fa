package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `
-- leading comment
CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b"))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'it''s fine';"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b';"))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/midgard")
	require.NoError(t, err)
	assert.Equal(t, "midgard", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, tc := range []struct {
		fsys fs.FS
		dir  string
	}{
		{PostgresFS, "postgres"},
		{ClickhouseFS, "clickhouse"},
	} {
		entries, err := fs.ReadDir(tc.fsys, tc.dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		var all string
		for _, e := range entries {
			data, err := fs.ReadFile(tc.fsys, tc.dir+"/"+e.Name())
			require.NoError(t, err)
			assert.NoError(t, validateNoSemicolonInStrings(string(data)))
			all += string(data)
		}
		for _, table := range []string{"depth_history", "rune_pool_history", "swap_history", "earnings_history", "earnings_pools"} {
			assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table, "%s migrations", tc.dir)
		}
	}
}

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"pg/002_pools.sql":   {Data: []byte("CREATE TABLE b ();")},
		"pg/001_history.sql": {Data: []byte("CREATE TABLE a ();")},
		"pg/003_empty.sql":   {Data: []byte("  \n")},
		"pg/README.md":       {Data: []byte("ignored")},
	}

	all, err := Load(fsys, "pg")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, Migration{Version: "001", Name: "history", SQL: "CREATE TABLE a ();"}, all[0])
	assert.Equal(t, "002", all[1].Version)
	assert.Equal(t, "pools", all[1].Name)
}

func TestLoad_RejectsBadNames(t *testing.T) {
	_, err := Load(fstest.MapFS{"pg/history.sql": {Data: []byte("SELECT 1;")}}, "pg")
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{
		"pg/001_a.sql": {Data: []byte("SELECT 1;")},
		"pg/001_b.sql": {Data: []byte("SELECT 2;")},
	}, "pg")
	assert.ErrorContains(t, err, "001")
}

func TestPending_SkipsApplied(t *testing.T) {
	all := []Migration{{Version: "001"}, {Version: "002"}, {Version: "003"}}

	pending := Pending(all, map[string]bool{"001": true, "003": true})
	require.Len(t, pending, 1)
	assert.Equal(t, "002", pending[0].Version)

	assert.Len(t, Pending(all, nil), 3)
	assert.Empty(t, Pending(all, map[string]bool{"001": true, "002": true, "003": true}))
}

func TestEmbeddedMigrations_Versioned(t *testing.T) {
	pg, err := Load(PostgresFS, "postgres")
	require.NoError(t, err)
	ch, err := Load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)

	versions := func(ms []Migration) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.Version)
		}
		return out
	}
	assert.Equal(t, []string{"001", "002"}, versions(pg))
	assert.Equal(t, versions(pg), versions(ch))
}
