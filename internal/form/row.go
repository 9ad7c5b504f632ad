package form

import (
	"fmt"

	"ruleform/internal/catalog"
)

// Group identifies a repeatable row collection of the rule form.
type Group int

const (
	PolicyColumns Group = iota
	Mappings
	Joins
	Negations
	Aliases
)

var groupNames = [...]string{"policy columns", "mappings", "joins", "negations", "aliases"}

func (g Group) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return fmt.Sprintf("Group(%d)", int(g))
	}
	return groupNames[g]
}

// Field roles. A field's name is its role plus the row index, e.g. join_left_3.
const (
	ColumnRole         = "policy_column_name"
	MappingRole        = "mapping_column"
	JoinLeftRole       = "join_left"
	JoinOpRole         = "join_op"
	JoinRightRole      = "join_right"
	NegationValueRole  = "negation_value"
	NegationColumnRole = "negation_column"
	AliasColumnRole    = "alias_column"
	AliasNameRole      = "alias_name"
)

// Output fields that are not part of any repeatable group.
const (
	RuleNameField    = "rule_name"
	CommentField     = "comment"
	PolicyTableField = "policy_table"
	CombinedField    = "policy_columns"
)

// DefaultLabel is the label cell content of the mapping template.
const DefaultLabel = "Policy table columns:"

// Join operators. An empty operator joins two columns; OpEquals compares a
// column with a literal value.
const (
	OpColumn = ""
	OpEquals = "="
)

type Field struct {
	Name  string
	Value string
	Attrs Attrs
}

type Row struct {
	ID        string
	Index     int
	Group     Group
	Fields    []Field
	Removable bool

	// Column and Label are only used by mapping rows: the name-display
	// cell and the shared label cell.
	Column string
	Label  string
}

func FieldName(role string, index int) string {
	return fmt.Sprintf("%s_%d", role, index)
}

// Value returns the value of the row's field with the given role.
func (r Row) Value(role string) string {
	if f := r.field(FieldName(role, r.Index)); f != nil {
		return f.Value
	}
	return ""
}

func (r *Row) field(name string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

func (r Row) clone() Row {
	r.Fields = append([]Field(nil), r.Fields...)
	return r
}

// Template is the zero-index row every repeatable group clones from.
type Template struct {
	Group  Group
	Base   string
	Fields []Field
	Label  string
}

func columnAttrs() Attrs {
	return Attrs{
		Placeholder:   catalog.ColumnFormat,
		Pattern:       catalog.ColumnPattern,
		Title:         catalog.ColumnPatternError,
		ColumnExample: catalog.ColumnFormat,
		DataPattern:   catalog.ColumnPattern,
		PatternError:  catalog.ColumnPatternError,
	}
}

func tableAttrs() Attrs {
	return Attrs{
		Placeholder:   catalog.TableFormat,
		Pattern:       catalog.TablePattern,
		Title:         catalog.TablePatternError,
		ColumnExample: catalog.TableFormat,
		DataPattern:   catalog.TablePattern,
		PatternError:  catalog.TablePatternError,
	}
}

// DefaultTemplates returns the templates of the rule form. label is the
// master copy of the mapping label cell.
func DefaultTemplates(label string) map[Group]Template {
	right := columnAttrs()
	right.StaticExample = "static value"

	return map[Group]Template{
		PolicyColumns: {
			Group:  PolicyColumns,
			Base:   "policy_column",
			Fields: []Field{{Name: FieldName(ColumnRole, 0), Attrs: Attrs{Placeholder: "column name"}}},
		},
		Mappings: {
			Group:  Mappings,
			Base:   "mapping",
			Fields: []Field{{Name: FieldName(MappingRole, 0), Attrs: columnAttrs()}},
			Label:  label,
		},
		Joins: {
			Group: Joins,
			Base:  "join",
			Fields: []Field{
				{Name: FieldName(JoinLeftRole, 0), Attrs: columnAttrs()},
				{Name: FieldName(JoinOpRole, 0), Value: OpColumn},
				{Name: FieldName(JoinRightRole, 0), Attrs: right},
			},
		},
		Negations: {
			Group: Negations,
			Base:  "negation",
			Fields: []Field{
				{Name: FieldName(NegationValueRole, 0), Attrs: columnAttrs()},
				{Name: FieldName(NegationColumnRole, 0), Attrs: columnAttrs()},
			},
		},
		Aliases: {
			Group: Aliases,
			Base:  "alias",
			Fields: []Field{
				{Name: FieldName(AliasColumnRole, 0), Attrs: tableAttrs()},
				{Name: FieldName(AliasNameRole, 0), Attrs: Attrs{Placeholder: "alias"}},
			},
		},
	}
}

// first renders the template as the visible, non-removable row 0.
func (t Template) first() Row {
	row := Row{
		ID:     fmt.Sprintf("%s_0", t.Base),
		Group:  t.Group,
		Fields: append([]Field(nil), t.Fields...),
	}
	return row
}
