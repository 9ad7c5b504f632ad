package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCatalog(t *testing.T) {
	t.Parallel()

	dsn := "file:" + filepath.Join(t.TempDir(), "schema.db") + "?mode=rwc"
	s, err := OpenSQL(DriverSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB.Exec(`CREATE TABLE servers (id TEXT PRIMARY KEY, name TEXT, tenant_id TEXT DEFAULT 'admin')`)
	require.NoError(t, err)
	_, err = s.DB.Exec(`CREATE TABLE flavors (id INTEGER, ram INTEGER)`)
	require.NoError(t, err)

	c, err := s.LoadCatalog(context.Background(), "local")
	require.NoError(t, err)

	cols, ok := c.Columns("local:servers")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "tenant_id"}, cols)
	assert.Equal(t, []string{"local:flavors", "local:servers"}, c.TableNames())
}

func TestOpenSQL_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenSQL("postgres", "")
	assert.Error(t, err)
}
