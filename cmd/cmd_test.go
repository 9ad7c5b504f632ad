package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The commands share package-level flag variables, so these tests run
// sequentially.

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestColumnsCommand(t *testing.T) {
	out := execute(t, "columns", "-c", "a", "-c", "b", "-c", "a", "--remove", "2")

	assert.Contains(t, out, `columns:  ["a"]`)
	assert.Contains(t, out, `policy_columns: "a"`)
	assert.Contains(t, out, "mapping_1")
	assert.Contains(t, out, `"Policy table columns:"`)
	assert.NotContains(t, out, "mapping_2")
}

func TestCompileAndShowCommands(t *testing.T) {
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte(
		"datasource,table,column\n"+
			"nova,servers,id\n"+
			"nova,servers,name\n"+
			"blacklist,servers,server_id\n"), 0o644))

	formPath := filepath.Join(dir, "form.yaml")
	require.NoError(t, os.WriteFile(formPath, []byte(
		"table: bad servers\n"+
			"columns: [server id]\n"+
			"mappings: [\"nova:servers id\"]\n"+
			"negations:\n"+
			"  - {value: \"nova:servers id\", column: \"blacklist:servers server_id\"}\n"), 0o644))

	out := execute(t, "compile", "-f", formPath, "--catalog", catalogPath, "--source", "file", "--one-line")
	assert.Equal(t, "bad_servers(server_id) :- nova:servers(server_id, col_1), not blacklist:servers(server_id)",
		strings.TrimSpace(out))

	out = execute(t, "catalog", "show", "--tables", "--catalog", catalogPath, "--source", "file")
	assert.Equal(t, "blacklist:servers\nnova:servers\n", out)
}
