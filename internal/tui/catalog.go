package tui

import (
	"fmt"
	"strings"
	"time"

	"ruleform/internal/autocomplete"
	"ruleform/internal/backup"
	"ruleform/internal/catalog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const (
	filterInput = "catalog_filter"
	pageSize    = 15
)

// CatalogModel lists the column or table candidates, narrowed by a filter.
type CatalogModel struct {
	catalog     *catalog.Catalog
	registry    *autocomplete.Registry
	filter      textinput.Model
	showTables  bool
	matches     []string
	cursor      int
	snapshotDir string
	saving      bool
	status      SnapshotWrittenMsg
	width       int
	height      int
}

type SnapshotWrittenMsg struct {
	Path string
	Err  error
}

func NewCatalogModel(cat *catalog.Catalog, snapshotDir string) *CatalogModel {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Focus()

	m := &CatalogModel{
		catalog:     cat,
		registry:    autocomplete.NewRegistry(),
		filter:      filter,
		snapshotDir: snapshotDir,
	}
	m.bindSource()
	return m
}

func (m *CatalogModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *CatalogModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Matches returns the candidates passing the current filter.
func (m *CatalogModel) Matches() []string {
	return m.matches
}

func (m *CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		case "ctrl+t":
			m.showTables = !m.showTables
			m.bindSource()
			return m, nil
		case "ctrl+w":
			if m.saving {
				return m, nil
			}
			m.saving = true
			return m, writeSnapshot(m.catalog, m.snapshotDir)
		}

		var cmd tea.Cmd
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.refresh()
		}
		return m, cmd

	case SnapshotWrittenMsg:
		m.saving = false
		m.status = msg
		return m, nil
	}
	return m, nil
}

func (m *CatalogModel) bindSource() {
	if m.showTables {
		m.registry.Attach(filterInput, m.catalog.TableSource())
	} else {
		m.registry.Attach(filterInput, m.catalog.ColumnSource())
	}
	m.refresh()
}

func (m *CatalogModel) refresh() {
	m.matches = m.registry.Suggest(filterInput, strings.TrimSpace(m.filter.Value()))
	m.cursor = 0
}

func writeSnapshot(cat *catalog.Catalog, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := backup.WriteSnapshot(cat, "catalog", dir, "json", time.Now())
		return SnapshotWrittenMsg{Path: path, Err: err}
	}
}

func (m *CatalogModel) View() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	kind := "Columns"
	if m.showTables {
		kind = "Tables"
	}
	title := adaptiveTitleStyle.Render("📚 Catalog: " + kind)

	var list strings.Builder
	if len(m.matches) == 0 {
		list.WriteString(warningStyle.Render("No matching entries"))
	}
	start := 0
	if m.cursor >= pageSize {
		start = m.cursor - pageSize + 1
	}
	for i := start; i < len(m.matches) && i < start+pageSize; i++ {
		cursor := " "
		style := menuItemStyle
		if i == m.cursor {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		list.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(m.matches[i])))
	}

	body := adaptiveFormStyle.Render(
		labelStyle.Render("Filter:") + " " + m.filter.View() + "\n\n" +
			strings.TrimRight(list.String(), "\n") + "\n\n" +
			mutedStyle.Render(fmt.Sprintf("%d of %s", len(m.matches), strings.ToLower(kind))),
	)

	var status string
	switch {
	case m.saving:
		status = warningStyle.Render("Writing snapshot...")
	case m.status.Err != nil:
		status = errorStyle.Render(fmt.Sprintf("❌ Snapshot failed: %v", m.status.Err))
	case m.status.Path != "":
		status = successStyle.Render("✅ Snapshot written to " + m.status.Path)
	}

	help := adaptiveHelpStyle.Render("Type to filter • ↑/↓: Navigate • Ctrl+T: Columns/tables • Ctrl+W: Write snapshot • Esc: Back")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, status, help)
}
