package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleform/internal/catalog"
	"ruleform/internal/form"
	"ruleform/internal/models"
)

func testCatalog() *catalog.Catalog {
	return catalog.FromRecords([]models.ColumnRecord{
		{Datasource: "nova", Table: "servers", Column: "id"},
		{Datasource: "nova", Table: "servers", Column: "name"},
		{Datasource: "nova", Table: "servers", Column: "tenant_id"},
		{Datasource: "keystone", Table: "tenants", Column: "id"},
	})
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func typeText(m *RuleFormModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func focus(t *testing.T, m *RuleFormModel, name string) {
	t.Helper()
	for i := 0; i < len(m.order); i++ {
		if m.Focused() == name {
			return
		}
		m.Update(key(tea.KeyTab))
	}
	require.Equal(t, name, m.Focused(), "field not reachable: %s", spew.Sdump(m.order))
}

func TestRuleForm_FocusLeavingColumnSyncs(t *testing.T) {
	t.Parallel()

	m := NewRuleFormModel(testCatalog())
	assert.Equal(t, form.RuleNameField, m.Focused())

	focus(t, m, "policy_column_name_0")
	typeText(m, "a")
	assert.Empty(t, m.Form().Mappings().Columns(), "typing alone does not sync")

	m.Update(key(tea.KeyTab))
	assert.Equal(t, []string{"a"}, m.Form().Mappings().Columns())
	assert.Equal(t, "a", m.Form().Combined())
	assert.Equal(t, "mapping_column_1", m.Focused())
}

func TestRuleForm_AddAndRemoveColumnRows(t *testing.T) {
	t.Parallel()

	m := NewRuleFormModel(testCatalog())
	focus(t, m, "policy_column_name_0")
	typeText(m, "a")

	m.Update(key(tea.KeyCtrlA))
	assert.Equal(t, "policy_column_name_1", m.Focused())
	assert.Equal(t, []string{"a"}, m.Form().Mappings().Columns())

	typeText(m, "b")
	m.Update(key(tea.KeyEnter))
	assert.Equal(t, []string{"a", "b"}, m.Form().Mappings().Columns())
	assert.Equal(t, "a, b", m.Form().Combined())

	m.Update(key(tea.KeyCtrlX))
	assert.Equal(t, []string{"a"}, m.Form().Mappings().Columns())
	assert.Equal(t, "a", m.Form().Combined())
	assert.NotContains(t, m.order, "policy_column_name_1")

	// row 0 stays
	focus(t, m, "policy_column_name_0")
	m.Update(key(tea.KeyCtrlX))
	assert.Len(t, m.Form().Rows(form.PolicyColumns), 1)
}

func TestRuleForm_Suggestions(t *testing.T) {
	t.Parallel()

	m := NewRuleFormModel(testCatalog())
	focus(t, m, "join_left_0")
	assert.Len(t, m.suggestions, 4)

	typeText(m, "ID")
	assert.Equal(t, []string{"keystone:tenants id", "nova:servers id", "nova:servers tenant_id"}, m.suggestions)

	m.Update(key(tea.KeyCtrlN))
	m.Update(key(tea.KeyCtrlE))
	assert.Equal(t, "nova:servers id", m.Form().Value("join_left_0"))
}

func TestRuleForm_ToggleOperator(t *testing.T) {
	t.Parallel()

	m := NewRuleFormModel(testCatalog())
	focus(t, m, "join_right_0")
	typeText(m, "nova")
	require.NotEmpty(t, m.suggestions)

	m.Update(key(tea.KeyCtrlO))
	assert.Equal(t, form.OpEquals, m.Form().Value("join_op_0"))
	assert.Empty(t, m.Form().Value("join_right_0"))
	assert.Empty(t, m.inputs["join_right_0"].Value())
	assert.Equal(t, "static value", m.inputs["join_right_0"].Placeholder)
	assert.Empty(t, m.suggestions)

	m.Update(key(tea.KeyCtrlO))
	assert.Equal(t, form.OpColumn, m.Form().Value("join_op_0"))
	assert.Equal(t, catalog.ColumnFormat, m.inputs["join_right_0"].Placeholder)
}

func TestRuleForm_Compile(t *testing.T) {
	t.Parallel()

	m := NewRuleFormModel(testCatalog())
	focus(t, m, form.PolicyTableField)
	typeText(m, "error")
	focus(t, m, "policy_column_name_0")
	typeText(m, "a")
	m.Update(key(tea.KeyTab))
	require.Equal(t, "mapping_column_1", m.Focused())
	typeText(m, "nova:servers id")

	_, cmd := m.Update(key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.True(t, m.compiling)

	msg := cmd()
	compiled, ok := msg.(RuleCompiledMsg)
	require.True(t, ok)
	require.NoError(t, compiled.Err)
	assert.Contains(t, compiled.Rule, "nova:servers(a, col_1, col_2)")

	m.Update(msg)
	assert.False(t, m.compiling)
	assert.Contains(t, m.View(), "Rule compiled")
}

func TestModel_QuitOnlyFromMenu(t *testing.T) {
	t.Parallel()

	var model tea.Model = NewModel(Options{Catalog: testCatalog(), SnapshotDir: t.TempDir()})
	model, _ = model.Update(ScreenChangeMsg{Screen: FormScreen})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	m := model.(Model)
	assert.False(t, m.quitting)
	assert.Equal(t, "q", m.formModel.Form().Value(form.RuleNameField))

	model, _ = model.Update(key(tea.KeyEsc))
	assert.Equal(t, MenuScreen, model.(Model).currentScreen)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, model.(Model).quitting)
}
