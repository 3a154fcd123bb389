package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn remembers which versions were recorded, like schema_migrations.
type fakeConn struct {
	recorded map[string]bool
	scripts  []string
	failOn   string
}

var insertVersion = regexp.MustCompile(`INSERT INTO schema_migrations \(version\) VALUES \('([^']+)'\)`)

func newFakeConn() *fakeConn { return &fakeConn{recorded: map[string]bool{}} }

func (f *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return nil, errors.New("syntax error")
	}
	if strings.Contains(sql, "CREATE TABLE IF NOT EXISTS schema_migrations") {
		return pgconn.CommandTag("CREATE TABLE"), nil
	}
	f.scripts = append(f.scripts, sql)
	if m := insertVersion.FindStringSubmatch(sql); m != nil {
		f.recorded[m[1]] = true
	}
	return pgconn.CommandTag("COMMIT"), nil
}

func (f *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return boolRow(f.recorded[args[0].(string)])
}

type boolRow bool

func (b boolRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = bool(b)
	return nil
}

func TestEmbeddedMigrationsLoadInOrder(t *testing.T) {
	m, err := NewMigrator(newFakeConn())
	require.NoError(t, err)

	var versions []string
	for _, mig := range m.Migrations() {
		versions = append(versions, mig.Version)
	}
	assert.Equal(t, []string{"0001_core_schema", "0002_monthly_summaries"}, versions)
}

func TestUpIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	m, err := NewMigrator(conn)
	require.NoError(t, err)

	applied, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_core_schema", "0002_monthly_summaries"}, applied)
	require.Len(t, conn.scripts, 2)
	assert.True(t, strings.HasPrefix(conn.scripts[0], "BEGIN;"))
	assert.True(t, strings.HasSuffix(conn.scripts[0], "COMMIT;"))

	applied, err = m.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Len(t, conn.scripts, 2, "second run must not execute anything")

	status, err := m.Status(context.Background())
	require.NoError(t, err)
	for _, s := range status {
		assert.True(t, s.Applied, s.Version)
	}
}

func TestUpStopsAtFailingMigration(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.up.sql": {Data: []byte("CREATE TABLE a (id int);")},
		"0002_b.up.sql": {Data: []byte("CREATE TABLE broken (;")},
		"0003_c.up.sql": {Data: []byte("CREATE TABLE c (id int);")},
	}
	conn := newFakeConn()
	conn.failOn = "broken"
	m, err := NewMigratorFS(conn, fsys)
	require.NoError(t, err)

	applied, err := m.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_b")
	assert.Equal(t, []string{"0001_a"}, applied)
	assert.False(t, conn.recorded["0002_b"])
	assert.False(t, conn.recorded["0003_c"])

	conn.failOn = ""
	applied, err = m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_b", "0003_c"}, applied)
}

func TestRejectsBadMigrationNames(t *testing.T) {
	_, err := NewMigratorFS(newFakeConn(), fstest.MapFS{
		"init'); DROP TABLE users; --.up.sql": {Data: []byte("SELECT 1;")},
	})
	assert.Error(t, err)

	_, err = NewMigratorFS(newFakeConn(), fstest.MapFS{
		"0001_empty.up.sql": {Data: []byte("  \n")},
	})
	assert.Error(t, err)
}
