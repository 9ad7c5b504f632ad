package form

import (
	"ruleform/internal/autocomplete"
	"ruleform/internal/logger"
)

// Changes reports what a synchronization pass did to the mapping rows.
type Changes struct {
	Added   []string
	Removed []string
}

func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// MappingTable is the collection of mapping rows, one per policy column.
//
// After every Sync the row keys are exactly the desired column names, and
// at most one row carries the label cell.
type MappingTable struct {
	template Template
	state    *ViewState
	binder   autocomplete.Binder
	columns  autocomplete.Source
	rows     []Row
	syncing  bool
}

func newMappingTable(tpl Template, state *ViewState, binder autocomplete.Binder, columns autocomplete.Source) *MappingTable {
	return &MappingTable{
		template: tpl,
		state:    state,
		binder:   binder,
		columns:  columns,
	}
}

// Columns returns the key of every mapping row in row order.
func (t *MappingTable) Columns() []string {
	columns := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		columns = append(columns, r.Column)
	}
	return columns
}

// Rows returns a copy of the mapping rows.
func (t *MappingTable) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.clone()
	}
	return rows
}

// Row returns the mapping row keyed by column.
func (t *MappingTable) Row(column string) (Row, bool) {
	if i := t.indexOf(column); i >= 0 {
		return t.rows[i].clone(), true
	}
	return Row{}, false
}

// Label returns the master label copied into rows.
func (t *MappingTable) Label() string {
	return t.template.Label
}

// Sync reconciles the rows against desired: rows are created for new names,
// rows whose name is no longer desired are removed, then the label is
// repaired. New rows go after the existing ones, so row order is creation
// order rather than the order of desired. A nested call while a pass is
// running does nothing.
func (t *MappingTable) Sync(desired []string) Changes {
	var changes Changes
	if t.syncing {
		return changes
	}
	t.syncing = true
	defer func() { t.syncing = false }()

	current := t.Columns()
	for _, name := range desired {
		if name == "" || t.indexOf(name) >= 0 {
			continue
		}
		t.add(name)
		changes.Added = append(changes.Added, name)
	}

	for _, name := range current {
		if containsString(desired, name) {
			continue
		}
		t.remove(name)
		changes.Removed = append(changes.Removed, name)
	}

	t.repairLabel()

	if !changes.Empty() {
		logger.Info("Synchronized mappings: added %v, removed %v", changes.Added, changes.Removed)
	}
	return changes
}

func (t *MappingTable) add(name string) {
	row := Repeat(t.state, t.template)
	row.Column = name
	if t.labelHolder() >= 0 {
		row.Label = ""
	}
	t.rows = append(t.rows, row)

	if t.binder != nil {
		t.binder.Attach(FieldName(MappingRole, row.Index), t.columns)
	}
}

func (t *MappingTable) remove(name string) {
	i := t.indexOf(name)
	if i < 0 {
		return
	}
	row := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)

	if t.binder != nil {
		t.binder.Detach(FieldName(MappingRole, row.Index))
	}
}

// repairLabel puts the label back when a single row is left without it.
// With two or more rows the label is never moved.
func (t *MappingTable) repairLabel() {
	if len(t.rows) == 1 && t.rows[0].Label == "" {
		t.rows[0].Label = t.template.Label
	}
}

func (t *MappingTable) labelHolder() int {
	for i, r := range t.rows {
		if r.Label != "" {
			return i
		}
	}
	return -1
}

func (t *MappingTable) indexOf(column string) int {
	for i, r := range t.rows {
		if r.Column == column {
			return i
		}
	}
	return -1
}

func (t *MappingTable) setValue(name, value string) bool {
	for i := range t.rows {
		if f := t.rows[i].field(name); f != nil {
			f.Value = value
			return true
		}
	}
	return false
}

func (t *MappingTable) value(name string) (string, bool) {
	for i := range t.rows {
		if f := t.rows[i].field(name); f != nil {
			return f.Value, true
		}
	}
	return "", false
}
