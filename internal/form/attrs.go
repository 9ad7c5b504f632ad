package form

// Attrs are the display and validation hints of an input.
type Attrs struct {
	Placeholder string
	Pattern     string
	Title       string

	// FeedbackHidden hides the suggestion affordance next to the input.
	FeedbackHidden bool

	// Alternatives swapped in when a join switches between a column
	// reference and a literal value.
	ColumnExample string
	StaticExample string
	DataPattern   string
	PatternError  string
}

// columnMode makes the input expect a column reference.
func (a Attrs) columnMode() Attrs {
	a.Placeholder = a.ColumnExample
	a.Pattern = a.DataPattern
	a.Title = a.PatternError
	a.FeedbackHidden = false
	return a
}

// literalMode makes the input accept any literal value.
func (a Attrs) literalMode() Attrs {
	a.Placeholder = a.StaticExample
	a.Pattern = ""
	a.Title = ""
	a.FeedbackHidden = true
	return a
}
