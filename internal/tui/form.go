package tui

import (
	"fmt"
	"strings"

	"ruleform/internal/autocomplete"
	"ruleform/internal/catalog"
	"ruleform/internal/form"
	"ruleform/internal/rule"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// maxSuggestions caps the candidate list shown under the focused input.
const maxSuggestions = 6

type RuleFormModel struct {
	form     *form.Form
	registry *autocomplete.Registry
	catalog  *catalog.Catalog

	inputs       map[string]*textinput.Model
	order        []string
	focusedInput int
	// a policy column input was edited since the change handler last ran
	dirty bool

	suggestions []string
	suggestion  int

	compiling bool
	result    RuleCompiledMsg
	compiled  bool

	width  int
	height int
}

type RuleCompiledMsg struct {
	Rule string
	Err  error
}

func NewRuleFormModel(cat *catalog.Catalog) *RuleFormModel {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	registry := autocomplete.NewRegistry()
	m := &RuleFormModel{
		registry: registry,
		catalog:  cat,
		inputs:   make(map[string]*textinput.Model),
		form: form.New(form.Options{
			Binder:  registry,
			Columns: cat.ColumnSource(),
			Tables:  cat.TableSource(),
		}),
	}
	m.rebuild()
	return m
}

func (m *RuleFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RuleFormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Form exposes the underlying form model.
func (m *RuleFormModel) Form() *form.Form {
	return m.form
}

// Focused returns the name of the focused field.
func (m *RuleFormModel) Focused() string {
	if m.focusedInput < 0 || m.focusedInput >= len(m.order) {
		return ""
	}
	return m.order[m.focusedInput]
}

func (m *RuleFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case RuleCompiledMsg:
		m.compiling = false
		m.compiled = true
		m.result = msg
		return m, nil
	}
	return m, nil
}

func (m *RuleFormModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.leaveFocus()
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.leaveFocus()
		m.moveFocus(-1)
		return m, nil
	case "enter":
		m.commitColumns()
		return m, nil
	case "ctrl+a":
		m.addRow()
		return m, nil
	case "ctrl+x":
		m.removeRow()
		return m, nil
	case "ctrl+o":
		m.toggleOperator()
		return m, nil
	case "ctrl+n":
		m.cycleSuggestion(1)
		return m, nil
	case "ctrl+p":
		m.cycleSuggestion(-1)
		return m, nil
	case "ctrl+e":
		m.acceptSuggestion()
		return m, nil
	case "ctrl+s":
		return m.startCompile()
	}

	name := m.Focused()
	input, ok := m.inputs[name]
	if !ok {
		return m, nil
	}
	before := input.Value()
	updated, cmd := input.Update(msg)
	*input = updated
	if input.Value() != before {
		m.edit(name, input.Value())
	}
	return m, cmd
}

// edit stores a typed value in the form. Column inputs only mark the form
// dirty; the mappings follow once the input is committed.
func (m *RuleFormModel) edit(name, value string) {
	m.form.Handle(form.Action{Kind: form.ActionEdit, Field: name, Value: value})
	if isColumnInput(name) {
		m.dirty = true
	}
	m.refreshSuggestions()
}

// leaveFocus fires the change handler when a modified column input loses focus.
func (m *RuleFormModel) leaveFocus() {
	if isColumnInput(m.Focused()) {
		m.commitColumns()
	}
}

func (m *RuleFormModel) commitColumns() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.form.Handle(form.Action{Kind: form.ActionChange})
	m.rebuild()
}

func (m *RuleFormModel) addRow() {
	g, _, ok := m.form.RowOf(m.Focused())
	if !ok || g == form.Mappings {
		return
	}
	m.commitColumns()
	m.form.Handle(form.Action{Kind: form.ActionAdd, Group: g})
	m.rebuild()

	rows := m.form.Rows(g)
	last := rows[len(rows)-1]
	m.focusField(last.Fields[0].Name)
}

func (m *RuleFormModel) removeRow() {
	g, row, ok := m.form.RowOf(m.Focused())
	if !ok || g == form.Mappings || !row.Removable {
		return
	}
	if g == form.PolicyColumns {
		m.dirty = false
	}
	m.form.Handle(form.Action{Kind: form.ActionRemove, Group: g, RowID: row.ID})
	m.rebuild()
}

func (m *RuleFormModel) toggleOperator() {
	g, row, ok := m.form.RowOf(m.Focused())
	if !ok || g != form.Joins {
		return
	}
	op := form.OpEquals
	if row.Value(form.JoinOpRole) == form.OpEquals {
		op = form.OpColumn
	}
	m.form.Handle(form.Action{Kind: form.ActionOperator, RowID: row.ID, Value: op})

	right := form.FieldName(form.JoinRightRole, row.Index)
	if input, ok := m.inputs[right]; ok {
		field, _ := m.form.Field(right)
		input.SetValue("")
		input.Placeholder = field.Attrs.Placeholder
	}
	m.refreshSuggestions()
}

func (m *RuleFormModel) cycleSuggestion(step int) {
	if len(m.suggestions) == 0 {
		return
	}
	m.suggestion = (m.suggestion + step + len(m.suggestions)) % len(m.suggestions)
}

func (m *RuleFormModel) acceptSuggestion() {
	name := m.Focused()
	input, ok := m.inputs[name]
	if !ok || len(m.suggestions) == 0 {
		return
	}
	input.SetValue(m.suggestions[m.suggestion])
	input.CursorEnd()
	m.edit(name, input.Value())
}

func (m *RuleFormModel) startCompile() (tea.Model, tea.Cmd) {
	m.commitColumns()
	m.compiling = true
	return m, compileRule(m.form.RuleInput(), m.catalog)
}

// compileRule runs on a copy of the submitted values.
func compileRule(in rule.Input, schemas rule.SchemaSource) tea.Cmd {
	return func() tea.Msg {
		text, err := rule.Compile(in, schemas)
		if err != nil {
			return RuleCompiledMsg{Err: err}
		}
		return RuleCompiledMsg{Rule: rule.Format(text)}
	}
}

// rebuild lays the inputs out in display order, creating inputs for new
// fields and dropping those of removed rows.
func (m *RuleFormModel) rebuild() {
	focused := m.Focused()

	var order []string
	for _, f := range m.form.Output() {
		order = append(order, f.Name)
	}
	for _, g := range []form.Group{form.PolicyColumns, form.Mappings, form.Joins, form.Negations, form.Aliases} {
		for _, r := range m.form.Rows(g) {
			for _, f := range r.Fields {
				if strings.HasPrefix(f.Name, form.JoinOpRole+"_") {
					continue
				}
				order = append(order, f.Name)
			}
		}
	}

	inputs := make(map[string]*textinput.Model, len(order))
	for _, name := range order {
		if input, ok := m.inputs[name]; ok {
			inputs[name] = input
			continue
		}
		field, _ := m.form.Field(name)
		input := textinput.New()
		input.Placeholder = field.Attrs.Placeholder
		input.Prompt = ""
		input.Width = 40
		input.SetValue(field.Value)
		inputs[name] = &input
	}
	m.inputs = inputs
	m.order = order

	found := false
	for i, name := range order {
		if name == focused {
			m.focusedInput = i
			found = true
			break
		}
	}
	if !found && m.focusedInput >= len(order) {
		m.focusedInput = len(order) - 1
	}
	m.updateInputFocus()
}

func (m *RuleFormModel) moveFocus(step int) {
	if len(m.order) == 0 {
		return
	}
	m.focusedInput = (m.focusedInput + step + len(m.order)) % len(m.order)
	m.updateInputFocus()
}

func (m *RuleFormModel) focusField(name string) {
	for i, n := range m.order {
		if n == name {
			m.focusedInput = i
			m.updateInputFocus()
			return
		}
	}
}

func (m *RuleFormModel) updateInputFocus() {
	for i, name := range m.order {
		if i == m.focusedInput {
			m.inputs[name].Focus()
		} else {
			m.inputs[name].Blur()
		}
	}
	m.refreshSuggestions()
}

func (m *RuleFormModel) refreshSuggestions() {
	name := m.Focused()
	m.suggestions = nil
	m.suggestion = 0
	if input, ok := m.inputs[name]; ok && m.registry.Bound(name) {
		m.suggestions = m.registry.Suggest(name, input.Value())
	}
}

func isColumnInput(name string) bool {
	return strings.HasPrefix(name, form.ColumnRole+"_")
}

func (m *RuleFormModel) View() string {
	adaptiveTitleStyle, adaptiveFormStyle, adaptiveHelpStyle := GetAdaptiveStyles(m.width, m.height)

	title := adaptiveTitleStyle.Render("📝 Create Policy Rule")

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Output") + "\n")
	for _, f := range m.form.Output() {
		b.WriteString(m.renderInput(labelStyle.Render(outputLabel(f.Name)), f.Name))
	}
	for _, r := range m.form.Rows(form.PolicyColumns) {
		b.WriteString(m.renderInput(labelStyle.Render("Column"), form.FieldName(form.ColumnRole, r.Index)))
	}
	b.WriteString(mutedStyle.Render("  "+form.CombinedField+": "+m.form.Combined()) + "\n\n")

	b.WriteString(sectionStyle.Render("Conditions") + "\n")
	for _, r := range m.form.Rows(form.Mappings) {
		cells := labelCellStyle.Render(r.Label) + columnCellStyle.Render(r.Column)
		b.WriteString(m.renderInput(cells, form.FieldName(form.MappingRole, r.Index)))
	}
	for _, r := range m.form.Rows(form.Joins) {
		op := "column"
		if r.Value(form.JoinOpRole) == form.OpEquals {
			op = "="
		}
		b.WriteString(m.renderInput(labelStyle.Render("Join"), form.FieldName(form.JoinLeftRole, r.Index)))
		b.WriteString(m.renderInput(mutedStyle.Render("  ["+op+"]"), form.FieldName(form.JoinRightRole, r.Index)))
	}
	for _, r := range m.form.Rows(form.Negations) {
		b.WriteString(m.renderInput(labelStyle.Render("Value"), form.FieldName(form.NegationValueRole, r.Index)))
		b.WriteString(m.renderInput(mutedStyle.Render("  not in"), form.FieldName(form.NegationColumnRole, r.Index)))
	}
	for _, r := range m.form.Rows(form.Aliases) {
		label := "Alias"
		if r.Label != "" {
			label = r.Label
		}
		b.WriteString(m.renderInput(labelStyle.Render(label), form.FieldName(form.AliasColumnRole, r.Index)))
		b.WriteString(m.renderInput(mutedStyle.Render("  as"), form.FieldName(form.AliasNameRole, r.Index)))
	}

	body := adaptiveFormStyle.Render(strings.TrimRight(b.String(), "\n"))

	var status string
	switch {
	case m.compiling:
		status = warningStyle.Render("Compiling rule...")
	case m.compiled && m.result.Err != nil:
		status = errorStyle.Render(fmt.Sprintf("❌ %v", m.result.Err))
	case m.compiled:
		status = successStyle.Render("✅ Rule compiled") + "\n" + m.result.Rule
	}

	help := adaptiveHelpStyle.Render("Tab/Shift+Tab: Navigate • Enter: Apply columns • Ctrl+A/Ctrl+X: Add/remove row • " +
		"Ctrl+O: Join operator • Ctrl+N/P, Ctrl+E: Suggestions • Ctrl+S: Compile • Esc: Back")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, status, help)
}

func (m *RuleFormModel) renderInput(label, name string) string {
	input, ok := m.inputs[name]
	if !ok {
		return ""
	}
	cursor := " "
	if name == m.Focused() {
		cursor = ">"
	}
	line := fmt.Sprintf("%s %s %s\n", cursor, label, input.View())
	if name == m.Focused() {
		line += m.renderSuggestions()
	}
	return line
}

func (m *RuleFormModel) renderSuggestions() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	start := 0
	if m.suggestion >= maxSuggestions {
		start = m.suggestion - maxSuggestions + 1
	}
	end := start + maxSuggestions
	if end > len(m.suggestions) {
		end = len(m.suggestions)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		style := suggestionStyle
		if i == m.suggestion {
			style = selectedSuggestionStyle
		}
		b.WriteString(style.Render(m.suggestions[i]) + "\n")
	}
	if rest := len(m.suggestions) - end; rest > 0 {
		b.WriteString(suggestionStyle.Render(fmt.Sprintf("… %d more", rest)) + "\n")
	}
	return b.String()
}

func outputLabel(name string) string {
	switch name {
	case form.RuleNameField:
		return "Rule name"
	case form.CommentField:
		return "Comment"
	case form.PolicyTableField:
		return "Policy table"
	}
	return name
}
