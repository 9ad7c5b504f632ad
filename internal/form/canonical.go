package form

import "strings"

const combinedSeparator = ", "

// CanonicalColumns drops empty values and later duplicates, keeping the
// order in which each name was first entered.
func CanonicalColumns(values []string) []string {
	columns := []string{}
	for _, v := range values {
		if v == "" || containsString(columns, v) {
			continue
		}
		columns = append(columns, v)
	}
	return columns
}

// JoinCombined serializes a column list into the single combined field.
func JoinCombined(columns []string) string {
	return strings.Join(columns, combinedSeparator)
}

// SplitCombined reads a combined field back. An empty field has no columns.
func SplitCombined(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, combinedSeparator)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
