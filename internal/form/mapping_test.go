package form

import (
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleform/internal/autocomplete"
)

var testColumns = autocomplete.Source{Name: "columns", Raw: []byte(`["nova:servers id","nova:servers name","neutron:ports id"]`)}

func newTestForm(t *testing.T) (*Form, *autocomplete.Registry) {
	t.Helper()

	reg := autocomplete.NewRegistry()
	f := New(Options{
		Binder:  reg,
		Columns: testColumns,
		Tables:  autocomplete.Source{Name: "tables", Raw: []byte(`["nova:servers","neutron:ports"]`)},
	})
	return f, reg
}

// enterColumns types values into the policy column inputs, adding rows as
// needed, then fires the change handler.
func enterColumns(t *testing.T, f *Form, values ...string) Changes {
	t.Helper()

	for len(f.Rows(PolicyColumns)) < len(values) {
		f.AddColumn()
	}
	rows := f.Rows(PolicyColumns)
	for i, v := range values {
		require.True(t, f.SetValue(FieldName(ColumnRole, rows[i].Index), v))
	}
	return f.ColumnChanged()
}

func labels(rows []Row) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Column] = r.Label
	}
	return out
}

func labelCount(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Label != "" {
			n++
		}
	}
	return n
}

func columnRowID(t *testing.T, f *Form, value string) string {
	t.Helper()
	for _, r := range f.Rows(PolicyColumns) {
		if r.Value(ColumnRole) == value {
			return r.ID
		}
	}
	t.Fatalf("no policy column row holds %q", value)
	return ""
}

func TestColumnChanged_DeduplicatesAndMaps(t *testing.T) {
	t.Parallel()

	f, reg := newTestForm(t)
	changes := enterColumns(t, f, "a", "b", "a")

	assert.Equal(t, []string{"a", "b"}, changes.Added)
	assert.Empty(t, changes.Removed)
	assert.Equal(t, "a, b", f.Combined())
	assert.Equal(t, []string{"a", "b"}, f.Mappings().Columns())

	rows := f.Rows(Mappings)
	require.Len(t, rows, 2, spew.Sdump(rows))
	assert.Equal(t, "mapping_1", rows[0].ID)
	assert.Equal(t, "mapping_2", rows[1].ID)
	assert.Equal(t, DefaultLabel, rows[0].Label)
	assert.Empty(t, rows[1].Label)

	assert.True(t, reg.Bound("mapping_column_1"))
	assert.True(t, reg.Bound("mapping_column_2"))
	src, _ := reg.SourceOf("mapping_column_1")
	assert.Equal(t, "columns", src)
}

func TestColumnChanged_Idempotent(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "b")
	before := f.Rows(Mappings)

	changes := f.ColumnChanged()
	assert.True(t, changes.Empty())
	assert.Equal(t, before, f.Rows(Mappings))
	assert.Equal(t, 3, f.State().Peek(Mappings))
}

func TestColumnChanged_DuplicateEntryAddsNothing(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "b")

	changes := enterColumns(t, f, "a", "b", "b")
	assert.True(t, changes.Empty())
	assert.Equal(t, "a, b", f.Combined())
	assert.Len(t, f.Rows(Mappings), 2)
}

func TestColumnChanged_ClearedInputRemovesMapping(t *testing.T) {
	t.Parallel()

	f, reg := newTestForm(t)
	enterColumns(t, f, "a", "b", "c")
	require.Equal(t, map[string]string{"a": DefaultLabel, "b": "", "c": ""}, labels(f.Rows(Mappings)))

	changes := enterColumns(t, f, "", "b", "c")
	assert.Equal(t, []string{"a"}, changes.Removed)
	assert.Equal(t, []string{"b", "c"}, f.Mappings().Columns())
	assert.Equal(t, "b, c", f.Combined())
	assert.False(t, reg.Bound("mapping_column_1"))

	// two rows remain, so the label is not moved
	assert.Equal(t, map[string]string{"b": "", "c": ""}, labels(f.Rows(Mappings)))
}

func TestRemoveColumn_TransplantsLabelToLastRow(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "", "a", "b")
	require.Equal(t, map[string]string{"a": DefaultLabel, "b": ""}, labels(f.Rows(Mappings)))

	changes := f.RemoveColumn(columnRowID(t, f, "a"))
	assert.Equal(t, []string{"a"}, changes.Removed)

	rows := f.Rows(Mappings)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].Column)
	assert.Equal(t, DefaultLabel, rows[0].Label)
	assert.Equal(t, "b", f.Combined())
}

func TestSync_RetypedColumnIsAppended(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "d")
	changes := enterColumns(t, f, "b", "d")

	assert.Equal(t, []string{"b"}, changes.Added)
	assert.Equal(t, []string{"a"}, changes.Removed)
	assert.Equal(t, []string{"b", "d"}, f.Canonical())
	assert.Equal(t, "b, d", f.Combined())
	// rows keep their creation order; only the combined field follows the inputs
	assert.Equal(t, []string{"d", "b"}, f.Mappings().Columns())

	row, ok := f.Mappings().Row("b")
	require.True(t, ok)
	require.True(t, f.SetValue(FieldName(MappingRole, row.Index), "nova:servers id"))
	in := f.RuleInput()
	assert.Equal(t, []string{"b", "d"}, in.Columns)
	assert.Equal(t, []string{"nova:servers id", ""}, in.Mappings)
}

func TestRemoveColumn_FirstRowIsPermanent(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "b")

	changes := f.RemoveColumn("policy_column_0")
	assert.True(t, changes.Empty())
	assert.Len(t, f.Rows(PolicyColumns), 2)
}

func TestRemoveColumn_UnknownRowIsNoop(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a")

	assert.True(t, f.RemoveColumn("policy_column_42").Empty())
	assert.Equal(t, []string{"a"}, f.Mappings().Columns())
}

func TestSync_LabelSurvivesRepeatedRemoval(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "b", "c")

	enterColumns(t, f, "", "b", "c")
	assert.Equal(t, 0, labelCount(f.Rows(Mappings)))

	enterColumns(t, f, "", "", "c")
	rows := f.Rows(Mappings)
	require.Len(t, rows, 1)
	assert.Equal(t, DefaultLabel, rows[0].Label)
}

func TestSync_NewRowTakesLabelWhenNobodyHasIt(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a", "b", "c")
	enterColumns(t, f, "", "b", "c")

	enterColumns(t, f, "d", "b", "c")
	assert.Equal(t, map[string]string{"b": "", "c": "", "d": DefaultLabel}, labels(f.Rows(Mappings)))
}

func TestSync_IdentifiersAreNeverReused(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	enterColumns(t, f, "a")
	enterColumns(t, f, "")
	enterColumns(t, f, "a")

	rows := f.Rows(Mappings)
	require.Len(t, rows, 1)
	assert.Equal(t, "mapping_2", rows[0].ID)
	assert.Equal(t, "mapping_column_2", rows[0].Fields[0].Name)
}

func TestSync_ExplicitDesiredSet(t *testing.T) {
	t.Parallel()

	f, _ := newTestForm(t)
	changes := f.ScrubMappings([]string{"x", "x", "", "y"})
	assert.Equal(t, []string{"x", "y"}, changes.Added)
	assert.Equal(t, []string{"x", "y"}, f.Mappings().Columns())

	changes = f.ScrubMappings([]string{})
	assert.Equal(t, []string{"x", "y"}, changes.Removed)
	assert.Empty(t, f.Rows(Mappings))
}

func TestSync_NestedCallIsIgnored(t *testing.T) {
	t.Parallel()

	table := newMappingTable(DefaultTemplates(DefaultLabel)[Mappings], NewViewState(), nil, testColumns)
	table.syncing = true
	assert.True(t, table.Sync([]string{"a"}).Empty())
	assert.Empty(t, table.Rows())
}

func TestSync_RandomEditsKeepMappingsConsistent(t *testing.T) {
	t.Parallel()

	names := []string{"", "a", "b", "c", "d"}
	rnd := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		f, reg := newTestForm(t)
		addOnly := true

		for step := 0; step < 30; step++ {
			rows := f.Rows(PolicyColumns)
			switch op := rnd.Intn(4); {
			case op == 0:
				f.AddColumn()
			case op == 1 && len(rows) > 1:
				before := len(f.Rows(Mappings))
				f.RemoveColumn(rows[1+rnd.Intn(len(rows)-1)].ID)
				if len(f.Rows(Mappings)) < before {
					addOnly = false
				}
			default:
				r := rows[rnd.Intn(len(rows))]
				f.SetValue(FieldName(ColumnRole, r.Index), names[rnd.Intn(len(names))])
				if f.ColumnChanged().Removed != nil {
					addOnly = false
				}
			}

			want := f.Canonical()
			mappings := f.Rows(Mappings)
			require.ElementsMatch(t, want, f.Mappings().Columns(), spew.Sdump(f.Rows(PolicyColumns), mappings))
			require.Equal(t, JoinCombined(want), f.Combined())
			require.LessOrEqual(t, labelCount(mappings), 1, spew.Sdump(mappings))
			if len(mappings) == 1 || (addOnly && len(mappings) > 0) {
				require.Equal(t, 1, labelCount(mappings), spew.Sdump(mappings))
			}
			if len(mappings) == 0 {
				require.Equal(t, 0, labelCount(mappings))
			}
			for _, m := range mappings {
				require.True(t, reg.Bound(FieldName(MappingRole, m.Index)))
			}

			// a second pass with the same inputs never changes anything
			require.True(t, f.ScrubMappings(nil).Empty())
		}
	}
}
