package tui

import (
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogModel_Filter(t *testing.T) {
	t.Parallel()

	m := NewCatalogModel(testCatalog(), t.TempDir())
	assert.Len(t, m.Matches(), 4)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("tenant")})
	assert.Equal(t, []string{"keystone:tenants id", "nova:servers tenant_id"}, m.Matches())

	m.Update(key(tea.KeyCtrlT))
	assert.Equal(t, []string{"keystone:tenants"}, m.Matches())

	m.Update(key(tea.KeyCtrlT))
	m.Update(key(tea.KeyDown))
	assert.Equal(t, 1, m.cursor)
	m.Update(key(tea.KeyDown))
	assert.Equal(t, 1, m.cursor)
}

func TestCatalogModel_WriteSnapshot(t *testing.T) {
	t.Parallel()

	m := NewCatalogModel(testCatalog(), t.TempDir())
	_, cmd := m.Update(key(tea.KeyCtrlW))
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	msg := cmd()
	written, ok := msg.(SnapshotWrittenMsg)
	require.True(t, ok)
	require.NoError(t, written.Err)
	_, err := os.Stat(written.Path)
	assert.NoError(t, err)

	m.Update(msg)
	assert.False(t, m.saving)
	assert.Contains(t, m.View(), "Snapshot written")
}
