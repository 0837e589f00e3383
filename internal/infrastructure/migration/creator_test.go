package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Check Table", "check lifecycle storage")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_check_table.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_check_table.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "check lifecycle storage")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_check_table", sanitizeName("Add Check Table"))
	assert.Equal(t, "fx_rates_v2", sanitizeName("FX--Rates  v2!"))
	assert.Equal(t, "trailing", sanitizeName("trailing---"))
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	// Missing directory is not an error.
	missing, err := ListMigrations(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	_, err = CreateMigration(dir, "first", "")
	require.NoError(t, err)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.True(t, strings.HasSuffix(names[0], "_first"))
}
