package rule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ruleform/internal/catalog"
	"ruleform/internal/logger"
)

const (
	Separator         = ":-"
	LiteralsSeparator = "), "
)

var (
	ErrMissingColumns  = errors.New("missing policy table columns")
	ErrMissingMappings = errors.New("missing data source column mappings for policy table columns")
	ErrMappingMismatch = errors.New("missing data source column mappings for some policy table columns")
	ErrColumnFormat    = errors.New(catalog.ColumnPatternError)
	ErrUnknownTable    = errors.New("unable to get schema for table")
)

var (
	columnPattern = regexp.MustCompile(catalog.ColumnPattern)
	nonWord       = regexp.MustCompile(`[^\w\s-]`)
	dashesSpaces  = regexp.MustCompile(`[-\s]+`)
)

// SchemaSource resolves "<datasource>:<table>" to its column names.
type SchemaSource interface {
	Columns(table string) ([]string, bool)
}

// Compile builds the rule text for in. Head columns are the slugified policy
// columns; each body literal lists one variable per schema column, shared
// between columns that are mapped, joined or negated together.
func Compile(in Input, schemas SchemaSource) (string, error) {
	if len(in.Columns) == 0 {
		return "", ErrMissingColumns
	}
	if len(in.Mappings) == 0 {
		return "", ErrMissingMappings
	}
	if len(in.Columns) != len(in.Mappings) {
		return "", ErrMappingMismatch
	}

	head := make([]string, len(in.Columns))
	for i, c := range in.Columns {
		head[i] = strings.TrimSpace(Slugify(c))
	}

	variables := make(map[string]string)
	body := &tableSet{}
	negated := &tableSet{}

	for i, m := range in.Mappings {
		m = strings.TrimSpace(m)
		if !columnPattern.MatchString(m) {
			return "", fmt.Errorf("%w: %s", ErrColumnFormat, m)
		}
		m = normalize(m)
		variables[m] = head[i]
		body.add(tableOf(m))
	}

	// Columns given a shared variable get a numbered suffix so the names
	// stay unique.
	nameCount := 0
	share := func(a, b, column string) {
		if v, ok := variables[b]; ok {
			variables[a] = v
		} else if v, ok := variables[a]; ok {
			variables[b] = v
		} else {
			v := fmt.Sprintf("%s_%d", column, nameCount)
			nameCount++
			variables[a] = v
			variables[b] = v
		}
	}

	for _, j := range in.Joins {
		if j.Left == "" {
			continue
		}
		if !columnPattern.MatchString(j.Left) {
			return "", fmt.Errorf("%w: %s", ErrColumnFormat, j.Left)
		}
		left := normalize(j.Left)
		right := strings.TrimSpace(j.Right)

		if j.Op == "=" {
			if _, err := strconv.Atoi(right); err == nil {
				variables[left] = right
			} else {
				variables[left] = `"` + right + `"`
			}
			continue
		}

		if right == "" {
			continue
		}
		if !columnPattern.MatchString(right) {
			return "", fmt.Errorf("%w: %s", ErrColumnFormat, right)
		}
		right = normalize(right)
		body.add(tableOf(left))
		body.add(tableOf(right))
		share(left, right, columnOf(left))
	}

	for _, n := range in.Negations {
		if n.Value == "" {
			continue
		}
		if !columnPattern.MatchString(n.Value) {
			return "", fmt.Errorf("%w: %s", ErrColumnFormat, n.Value)
		}
		value := normalize(n.Value)
		if n.Column == "" {
			continue
		}
		if !columnPattern.MatchString(n.Column) {
			return "", fmt.Errorf("%w: %s", ErrColumnFormat, n.Column)
		}
		column := normalize(n.Column)

		body.add(tableOf(value))
		negated.add(tableOf(column))
		share(value, column, columnOf(value))
	}

	logger.Info("Column variables for rule %q: %v", in.Name, variables)

	// Columns unrelated to any other column get a unique col_<n> variable.
	columnCount := 0
	var literals []string
	for _, table := range body.tables {
		columns, ok := schemas.Columns(table)
		if !ok {
			return "", fmt.Errorf("%w %q", ErrUnknownTable, table)
		}
		if len(columns) == 0 {
			literals = append(literals, table)
			continue
		}

		args := make([]string, 0, len(columns))
		for _, c := range columns {
			v, ok := variables[table+" "+c]
			if !ok {
				v = fmt.Sprintf("col_%d", columnCount)
			}
			columnCount++
			args = append(args, v)
		}
		literals = append(literals, fmt.Sprintf("%s(%s)", table, strings.Join(args, ", ")))
	}

	for _, table := range negated.tables {
		columns, ok := schemas.Columns(table)
		if !ok {
			return "", fmt.Errorf("%w %q", ErrUnknownTable, table)
		}

		args := make([]string, 0, len(columns))
		bound := 0
		for _, c := range columns {
			if v, ok := variables[table+" "+c]; ok {
				args = append(args, v)
				bound++
			} else {
				args = append(args, fmt.Sprintf("col_%d", columnCount))
				columnCount++
			}
		}
		literal := fmt.Sprintf("%s(%s)", table, strings.Join(args, ", "))
		literals = append(literals, "not "+literal)

		// Every variable of a negated literal must also appear in a
		// positive literal.
		if bound != len(columns) && !body.has(table) {
			literals = append(literals, literal)
		}
	}

	return fmt.Sprintf("%s(%s) %s %s", Slugify(in.PolicyTable), strings.Join(head, ", "),
		Separator, strings.Join(literals, ", ")), nil
}

// Format puts the head and each body literal on its own line.
func Format(rule string) string {
	parts := strings.Split(rule, Separator)
	if len(parts) < 2 {
		return rule
	}
	body := strings.Join(strings.Split(parts[1], LiteralsSeparator), LiteralsSeparator+"\n")
	return parts[0] + Separator + "\n" + body
}

// Slugify lowercases name, strips accents and punctuation, and turns runs of
// spaces and hyphens into underscores.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s := nonWord.ReplaceAllString(b.String(), "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = dashesSpaces.ReplaceAllString(s, "-")
	return strings.ReplaceAll(s, "-", "_")
}

// normalize collapses the whitespace of "<datasource>:<table>  <column>".
func normalize(column string) string {
	return strings.Join(strings.Fields(column), " ")
}

func tableOf(column string) string {
	return strings.Fields(column)[0]
}

func columnOf(column string) string {
	return strings.Fields(column)[1]
}

// tableSet keeps tables in the order they were first referenced.
type tableSet struct {
	tables []string
}

func (s *tableSet) add(table string) {
	if !s.has(table) {
		s.tables = append(s.tables, table)
	}
}

func (s *tableSet) has(table string) bool {
	for _, t := range s.tables {
		if t == table {
			return true
		}
	}
	return false
}
