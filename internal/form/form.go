// Package form models the policy rule form: the output columns, the
// mappings table derived from them, and the join, negation and alias rows.
//
// The form is single-user state mutated by one handler at a time. Every
// exported handler leaves the mapping rows consistent with the policy
// column inputs before it returns.
package form

import (
	"ruleform/internal/autocomplete"
	"ruleform/internal/logger"
	"ruleform/internal/rule"
)

type Options struct {
	Binder  autocomplete.Binder
	Columns autocomplete.Source
	Tables  autocomplete.Source
	// Label is the master copy of the mapping label cell. Defaults to DefaultLabel.
	Label string
}

type Form struct {
	state     *ViewState
	templates map[Group]Template
	binder    autocomplete.Binder
	columns   autocomplete.Source
	tables    autocomplete.Source

	output   []Field
	rows     map[Group][]Row
	mappings *MappingTable
	combined string
}

// New builds a form with the first row of every repeatable group in place
// and an empty mappings table.
func New(opts Options) *Form {
	label := opts.Label
	if label == "" {
		label = DefaultLabel
	}

	f := &Form{
		state:     NewViewState(),
		templates: DefaultTemplates(label),
		binder:    opts.Binder,
		columns:   opts.Columns,
		tables:    opts.Tables,
		output: []Field{
			{Name: RuleNameField, Attrs: Attrs{Placeholder: "rule name"}},
			{Name: CommentField, Attrs: Attrs{Placeholder: "comment"}},
			{Name: PolicyTableField, Attrs: Attrs{Placeholder: "policy table"}},
		},
		rows: make(map[Group][]Row),
	}
	f.mappings = newMappingTable(f.templates[Mappings], f.state, f.binder, f.columns)

	for _, g := range []Group{PolicyColumns, Joins, Negations, Aliases} {
		row := f.templates[g].first()
		f.rows[g] = []Row{row}
		f.bind(row)
	}
	return f
}

// Rows returns a copy of the rows of g.
func (f *Form) Rows(g Group) []Row {
	if g == Mappings {
		return f.mappings.Rows()
	}
	rows := make([]Row, len(f.rows[g]))
	for i, r := range f.rows[g] {
		rows[i] = r.clone()
	}
	return rows
}

func (f *Form) Mappings() *MappingTable {
	return f.mappings
}

// Output returns the fields above the repeatable groups.
func (f *Form) Output() []Field {
	return append([]Field(nil), f.output...)
}

// Combined returns the combined policy column field.
func (f *Form) Combined() string {
	return f.combined
}

func (f *Form) State() *ViewState {
	return f.state
}

// Canonical derives the column list from the live policy column inputs.
func (f *Form) Canonical() []string {
	values := make([]string, 0, len(f.rows[PolicyColumns]))
	for _, r := range f.rows[PolicyColumns] {
		values = append(values, r.Value(ColumnRole))
	}
	return CanonicalColumns(values)
}

// SetValue stores value in the named field. It does not synchronize; the
// change handler ColumnChanged does that once editing of a column is done.
func (f *Form) SetValue(name, value string) bool {
	for i := range f.output {
		if f.output[i].Name == name {
			f.output[i].Value = value
			return true
		}
	}
	if g, i, ok := f.locate(name); ok {
		f.rows[g][i].field(name).Value = value
		return true
	}
	return f.mappings.setValue(name, value)
}

func (f *Form) Value(name string) string {
	if name == CombinedField {
		return f.combined
	}
	for _, o := range f.output {
		if o.Name == name {
			return o.Value
		}
	}
	if g, i, ok := f.locate(name); ok {
		return f.rows[g][i].field(name).Value
	}
	v, _ := f.mappings.value(name)
	return v
}

// Field returns the named field with its attributes.
func (f *Form) Field(name string) (Field, bool) {
	for _, o := range f.output {
		if o.Name == name {
			return o, true
		}
	}
	if g, i, ok := f.locate(name); ok {
		return *f.rows[g][i].field(name), true
	}
	for _, r := range f.mappings.rows {
		if fl := r.field(name); fl != nil {
			return *fl, true
		}
	}
	return Field{}, false
}

// RowOf finds the group and row holding the named field.
func (f *Form) RowOf(name string) (Group, Row, bool) {
	if g, i, ok := f.locate(name); ok {
		return g, f.rows[g][i].clone(), true
	}
	for _, r := range f.mappings.rows {
		if r.field(name) != nil {
			return Mappings, r.clone(), true
		}
	}
	return 0, Row{}, false
}

// ColumnChanged is the change handler of the policy column inputs: it
// rewrites the combined field and synchronizes the mappings with it.
func (f *Form) ColumnChanged() Changes {
	columns := f.Canonical()
	f.combined = JoinCombined(columns)
	return f.ScrubMappings(columns)
}

// ScrubMappings synchronizes the mappings with desired, or with the live
// policy column inputs when desired is nil.
func (f *Form) ScrubMappings(desired []string) Changes {
	if desired == nil {
		desired = f.Canonical()
	}
	return f.mappings.Sync(desired)
}

func (f *Form) AddColumn() Row {
	return f.add(PolicyColumns)
}

// RemoveColumn removes a policy column row and drops the mappings of the
// names that no longer appear in any input.
func (f *Form) RemoveColumn(id string) Changes {
	if !f.remove(PolicyColumns, id) {
		return Changes{}
	}
	f.combined = JoinCombined(f.Canonical())
	return f.ScrubMappings(nil)
}

func (f *Form) AddJoin() Row {
	return f.add(Joins)
}

func (f *Form) RemoveJoin(id string) bool {
	return f.remove(Joins, id)
}

// SetJoinOperator switches a join between a column join and a comparison
// with a literal. The right-hand value is cleared either way.
func (f *Form) SetJoinOperator(id, op string) bool {
	i := f.find(Joins, id)
	if i < 0 {
		return false
	}
	row := &f.rows[Joins][i]
	row.field(FieldName(JoinOpRole, row.Index)).Value = op

	name := FieldName(JoinRightRole, row.Index)
	right := row.field(name)
	right.Value = ""
	if op == OpColumn {
		right.Attrs = right.Attrs.columnMode()
		f.attach(name, f.columns)
	} else {
		right.Attrs = right.Attrs.literalMode()
		f.detach(name)
	}
	return true
}

func (f *Form) AddNegation() Row {
	return f.add(Negations)
}

func (f *Form) RemoveNegation(id string) bool {
	return f.remove(Negations, id)
}

func (f *Form) AddAlias() Row {
	return f.add(Aliases)
}

func (f *Form) RemoveAlias(id string) bool {
	return f.remove(Aliases, id)
}

// RuleInput collects the submitted values. Columns come from the combined
// field and each is paired with the mapping row keyed by it.
func (f *Form) RuleInput() rule.Input {
	in := rule.Input{
		Name:        f.Value(RuleNameField),
		Comment:     f.Value(CommentField),
		PolicyTable: f.Value(PolicyTableField),
		Columns:     SplitCombined(f.combined),
	}
	for _, c := range in.Columns {
		row, _ := f.mappings.Row(c)
		in.Mappings = append(in.Mappings, row.Value(MappingRole))
	}
	for _, r := range f.rows[Joins] {
		in.Joins = append(in.Joins, rule.Join{
			Left:  r.Value(JoinLeftRole),
			Op:    r.Value(JoinOpRole),
			Right: r.Value(JoinRightRole),
		})
	}
	for _, r := range f.rows[Negations] {
		in.Negations = append(in.Negations, rule.Negation{
			Value:  r.Value(NegationValueRole),
			Column: r.Value(NegationColumnRole),
		})
	}
	for _, r := range f.rows[Aliases] {
		in.Aliases = append(in.Aliases, rule.Alias{
			Table: r.Value(AliasColumnRole),
			Name:  r.Value(AliasNameRole),
		})
	}
	return in
}

func (f *Form) add(g Group) Row {
	row := Repeat(f.state, f.templates[g])
	if g == Aliases {
		row.Label = ""
	}
	f.rows[g] = append(f.rows[g], row)
	f.bind(row)
	logger.Info("Added %s row %s", g, row.ID)
	return row.clone()
}

func (f *Form) remove(g Group, id string) bool {
	i := f.find(g, id)
	if i < 0 || !f.rows[g][i].Removable {
		return false
	}
	row := f.rows[g][i]
	f.rows[g] = append(f.rows[g][:i], f.rows[g][i+1:]...)
	for _, fl := range row.Fields {
		f.detach(fl.Name)
	}
	logger.Info("Removed %s row %s", g, row.ID)
	return true
}

// bind attaches autocompletion to the inputs of a freshly added row.
func (f *Form) bind(row Row) {
	switch row.Group {
	case Joins:
		f.attach(FieldName(JoinLeftRole, row.Index), f.columns)
		f.attach(FieldName(JoinRightRole, row.Index), f.columns)
	case Negations:
		f.attach(FieldName(NegationValueRole, row.Index), f.columns)
		f.attach(FieldName(NegationColumnRole, row.Index), f.columns)
	case Aliases:
		f.attach(FieldName(AliasColumnRole, row.Index), f.tables)
	}
}

func (f *Form) attach(input string, src autocomplete.Source) {
	if f.binder != nil {
		f.binder.Attach(input, src)
	}
}

func (f *Form) detach(input string) {
	if f.binder != nil {
		f.binder.Detach(input)
	}
}

func (f *Form) find(g Group, id string) int {
	for i, r := range f.rows[g] {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (f *Form) locate(name string) (Group, int, bool) {
	for _, g := range []Group{PolicyColumns, Joins, Negations, Aliases} {
		for i := range f.rows[g] {
			if f.rows[g][i].field(name) != nil {
				return g, i, true
			}
		}
	}
	return 0, 0, false
}
