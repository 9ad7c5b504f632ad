package tui

import (
	"fmt"

	"ruleform/internal/catalog"

	tea "github.com/charmbracelet/bubbletea"
)

type Screen int

const (
	MenuScreen Screen = iota
	FormScreen
	CatalogScreen
)

type Options struct {
	Catalog     *catalog.Catalog
	SnapshotDir string
}

type Model struct {
	currentScreen Screen
	menuModel     *MenuModel
	formModel     *RuleFormModel
	catalogModel  *CatalogModel
	err           error
	quitting      bool
	width         int
	height        int
}

func NewModel(opts Options) Model {
	return Model{
		currentScreen: MenuScreen,
		menuModel:     NewMenuModel(),
		formModel:     NewRuleFormModel(opts.Catalog),
		catalogModel:  NewCatalogModel(opts.Catalog, opts.SnapshotDir),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menuModel.SetSize(msg.Width, msg.Height)
		m.formModel.SetSize(msg.Width, msg.Height)
		m.catalogModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			// other screens take q as text
			if m.currentScreen == MenuScreen {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.currentScreen != MenuScreen {
				m.currentScreen = MenuScreen
				m.err = nil
				return m, nil
			}
		}

	case ScreenChangeMsg:
		m.currentScreen = msg.Screen
		m.err = nil
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case RuleCompiledMsg:
		_, cmd := m.formModel.Update(msg)
		return m, cmd

	case SnapshotWrittenMsg:
		_, cmd := m.catalogModel.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentScreen {
	case MenuScreen:
		_, cmd = m.menuModel.Update(msg)
	case FormScreen:
		_, cmd = m.formModel.Update(msg)
	case CatalogScreen:
		_, cmd = m.catalogModel.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return "Bye 👋\n"
	}

	var content string
	switch m.currentScreen {
	case MenuScreen:
		content = m.menuModel.View()
	case FormScreen:
		content = m.formModel.View()
	case CatalogScreen:
		content = m.catalogModel.View()
	}

	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return content
}

type ScreenChangeMsg struct {
	Screen Screen
}

type ErrorMsg struct {
	Err error
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
