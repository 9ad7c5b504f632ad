// Package catalog holds the data-source tables and columns that policy rules
// can reference, and renders them as autocomplete candidate lists.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"ruleform/internal/autocomplete"
	"ruleform/internal/models"
)

const (
	TableSeparator = ":"

	ColumnFormat       = "<datasource>" + TableSeparator + "<table> <column>"
	ColumnPattern      = `^\s*[\w.]+` + TableSeparator + `[\w.]+\s+[\w.]+\s*$`
	ColumnPatternError = `Column name must be in "` + ColumnFormat + `" format`

	TableFormat       = "<datasource>" + TableSeparator + "<table>"
	TablePattern      = `^\s*[\w.]+` + TableSeparator + `[\w.]+\s*$`
	TablePatternError = `Table name must be in "` + TableFormat + `" format`

	// placeholder column for tables without a schema
	emptyColumn = "_"
)

type Table struct {
	Name    string   `json:"table"`
	Columns []string `json:"columns"`
}

type Datasource struct {
	Name   string  `json:"datasource"`
	Tables []Table `json:"tables"`
}

type Catalog struct {
	Datasources []Datasource
}

// LoadFile reads a JSON catalog: an array of {"datasource", "tables": [{"table", "columns"}]}.
func LoadFile(filePath string) (*Catalog, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file '%s': %w", filePath, err)
	}

	var datasources []Datasource
	if err := json.Unmarshal(bytes, &datasources); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file '%s': %w", filePath, err)
	}
	return &Catalog{Datasources: datasources}, nil
}

// FromRecords groups flat records by datasource and table, keeping the
// order in which each datasource, table and column first appears.
func FromRecords(records []models.ColumnRecord) *Catalog {
	c := &Catalog{}
	for _, r := range records {
		if r.Datasource == "" || r.Table == "" {
			continue
		}
		t := c.table(r.Datasource, r.Table)
		if r.Column != "" && !contains(t.Columns, r.Column) {
			t.Columns = append(t.Columns, r.Column)
		}
	}
	return c
}

func (c *Catalog) table(datasource, table string) *Table {
	var ds *Datasource
	for i := range c.Datasources {
		if c.Datasources[i].Name == datasource {
			ds = &c.Datasources[i]
			break
		}
	}
	if ds == nil {
		c.Datasources = append(c.Datasources, Datasource{Name: datasource})
		ds = &c.Datasources[len(c.Datasources)-1]
	}
	for i := range ds.Tables {
		if ds.Tables[i].Name == table {
			return &ds.Tables[i]
		}
	}
	ds.Tables = append(ds.Tables, Table{Name: table})
	return &ds.Tables[len(ds.Tables)-1]
}

// Records flattens the catalog back into one record per column.
func (c *Catalog) Records() []models.ColumnRecord {
	var records []models.ColumnRecord
	for _, ds := range c.Datasources {
		for _, t := range ds.Tables {
			if len(t.Columns) == 0 {
				records = append(records, models.ColumnRecord{Datasource: ds.Name, Table: t.Name})
				continue
			}
			for _, col := range t.Columns {
				records = append(records, models.ColumnRecord{Datasource: ds.Name, Table: t.Name, Column: col})
			}
		}
	}
	return records
}

// MarshalJSON writes the same array layout LoadFile reads.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	if c.Datasources == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Datasources)
}

// ColumnNames lists every "<datasource>:<table> <column>" sorted by
// datasource, table and column. Tables whose name already carries the
// separator are derived from another source and are skipped.
func (c *Catalog) ColumnNames() []string {
	var names []string
	for _, ds := range c.sortedDatasources() {
		tables := append([]Table(nil), ds.Tables...)
		sort.SliceStable(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
		for _, t := range tables {
			if strings.Contains(t.Name, TableSeparator) {
				continue
			}
			columns := append([]string(nil), t.Columns...)
			if len(columns) == 0 {
				columns = []string{emptyColumn}
			}
			sort.Strings(columns)
			for _, col := range columns {
				names = append(names, ds.Name+TableSeparator+t.Name+" "+col)
			}
		}
	}
	return names
}

// TableNames lists every "<datasource>:<table>" sorted.
func (c *Catalog) TableNames() []string {
	var names []string
	for _, ds := range c.sortedDatasources() {
		tables := make([]string, 0, len(ds.Tables))
		for _, t := range ds.Tables {
			tables = append(tables, t.Name)
		}
		sort.Strings(tables)
		for _, t := range tables {
			names = append(names, ds.Name+TableSeparator+t)
		}
	}
	return names
}

func (c *Catalog) sortedDatasources() []Datasource {
	out := append([]Datasource(nil), c.Datasources...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Columns returns the schema of "<datasource>:<table>" in schema order.
func (c *Catalog) Columns(table string) ([]string, bool) {
	ds, name, ok := strings.Cut(strings.TrimSpace(table), TableSeparator)
	if !ok {
		return nil, false
	}
	for _, d := range c.Datasources {
		if d.Name != ds {
			continue
		}
		for _, t := range d.Tables {
			if t.Name == name {
				return t.Columns, true
			}
		}
	}
	return nil, false
}

// ColumnSource is the column candidate list handed to the autocomplete binder.
func (c *Catalog) ColumnSource() autocomplete.Source {
	return source("columns", c.ColumnNames())
}

// TableSource is the table candidate list handed to the autocomplete binder.
func (c *Catalog) TableSource() autocomplete.Source {
	return source("tables", c.TableNames())
}

func source(name string, values []string) autocomplete.Source {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return autocomplete.Source{Name: name, Raw: raw}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
