package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var indexSuffix = regexp.MustCompile(`^(.+_)\d+$`)

// ViewState holds the per-group row counters of one form session.
// A counter is the index the next cloned row of that group receives.
type ViewState struct {
	counters map[Group]int
}

// NewViewState starts every group at 1: index 0 always belongs to the
// template row.
func NewViewState() *ViewState {
	s := &ViewState{counters: make(map[Group]int)}
	for g := PolicyColumns; g <= Aliases; g++ {
		s.counters[g] = 1
	}
	return s
}

// Peek returns the index the next row of g will get.
func (s *ViewState) Peek(g Group) int {
	return s.counters[g]
}

func (s *ViewState) next(g Group) int {
	n := s.counters[g]
	s.counters[g] = n + 1
	return n
}

// Repeat clones tpl into a new removable row with a fresh index taken from
// state. Field names are rewritten to the new index and values are cleared,
// except that the join operator keeps the template's option.
func Repeat(state *ViewState, tpl Template) Row {
	n := state.next(tpl.Group)

	row := Row{
		ID:        fmt.Sprintf("%s_%d", tpl.Base, n),
		Index:     n,
		Group:     tpl.Group,
		Removable: true,
		Label:     tpl.Label,
		Fields:    make([]Field, len(tpl.Fields)),
	}
	for i, f := range tpl.Fields {
		// the operator keeps the template's option; everything else starts empty
		if !strings.HasPrefix(f.Name, JoinOpRole+"_") {
			f.Value = ""
		}
		f.Name = indexSuffix.ReplaceAllString(f.Name, "${1}"+strconv.Itoa(n))
		row.Fields[i] = f
	}
	return row
}
