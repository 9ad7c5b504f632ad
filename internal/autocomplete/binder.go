// Package autocomplete keeps track of which form inputs offer suggestions
// and from which candidate list.
package autocomplete

import (
	"encoding/json"
	"sort"
	"strings"

	"ruleform/internal/logger"
)

// MinLength is the number of characters needed before suggestions show.
// Zero means the full list is offered on focus.
const MinLength = 0

// Source is a named, read-only candidate list in its serialized form.
// Raw holds a JSON array of strings.
type Source struct {
	Name string
	Raw  []byte
}

// Binder attaches and detaches suggestion behavior on an input.
type Binder interface {
	Attach(input string, src Source)
	Detach(input string)
}

type binding struct {
	source     string
	candidates []string
}

// Registry is the in-memory Binder used by the form and the TUI.
type Registry struct {
	bindings map[string]binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]binding)}
}

// Attach binds input to src, replacing any previous binding. The source is
// parsed on every call; a malformed source binds an empty list.
func (r *Registry) Attach(input string, src Source) {
	var candidates []string
	if len(src.Raw) > 0 {
		if err := json.Unmarshal(src.Raw, &candidates); err != nil {
			logger.Warn("Ignoring malformed %s candidates for %s: %v", src.Name, input, err)
			candidates = nil
		}
	}
	r.bindings[input] = binding{source: src.Name, candidates: candidates}
}

func (r *Registry) Detach(input string) {
	delete(r.bindings, input)
}

func (r *Registry) Bound(input string) bool {
	_, ok := r.bindings[input]
	return ok
}

// SourceOf returns the name of the source bound to input.
func (r *Registry) SourceOf(input string) (string, bool) {
	b, ok := r.bindings[input]
	return b.source, ok
}

// Inputs lists the bound inputs in lexical order.
func (r *Registry) Inputs() []string {
	inputs := make([]string, 0, len(r.bindings))
	for input := range r.bindings {
		inputs = append(inputs, input)
	}
	sort.Strings(inputs)
	return inputs
}

// Suggest returns the candidates bound to input that contain query,
// ignoring case, in source order. Unbound inputs get nothing.
func (r *Registry) Suggest(input, query string) []string {
	b, ok := r.bindings[input]
	if !ok || len(query) < MinLength {
		return nil
	}

	q := strings.ToLower(query)
	var out []string
	for _, c := range b.candidates {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}
