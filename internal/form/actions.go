package form

type ActionKind int

const (
	// ActionAdd appends a row to Group.
	ActionAdd ActionKind = iota
	// ActionRemove removes row RowID from Group.
	ActionRemove
	// ActionEdit stores Value in Field.
	ActionEdit
	// ActionChange commits edits of a policy column input.
	ActionChange
	// ActionOperator sets the operator of join RowID to Value.
	ActionOperator
)

type Action struct {
	Kind  ActionKind
	Group Group
	RowID string
	Field string
	Value string
}

// Handle dispatches one user action. The returned Changes describe the
// mapping rows touched by it, if any.
func (f *Form) Handle(a Action) Changes {
	switch a.Kind {
	case ActionAdd:
		if a.Group != Mappings {
			f.add(a.Group)
		}
	case ActionRemove:
		if a.Group == PolicyColumns {
			return f.RemoveColumn(a.RowID)
		}
		if a.Group != Mappings {
			f.remove(a.Group, a.RowID)
		}
	case ActionEdit:
		f.SetValue(a.Field, a.Value)
	case ActionChange:
		return f.ColumnChanged()
	case ActionOperator:
		f.SetJoinOperator(a.RowID, a.Value)
	}
	return Changes{}
}
