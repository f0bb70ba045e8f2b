// Package dataset holds the raw tabular inputs of the engine and the loaders
// that produce them.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Table names used in errors and in the dataset store.
const (
	RegistryTable = "registry"
	LedgerTable   = "ledger"
)

// Registry columns.
const (
	ColFilerEIN   = "filer_ein"
	ColFilerName  = "filer_name"
	ColReceiptAmt = "receipt_amt"
	ColGovtAmt    = "govt_amt"
	ColContribAmt = "contrib_amt"
)

// Ledger columns.
const (
	ColGrantEIN = "grant_ein"
	ColGrantAmt = "grant_amt"
	ColTaxYear  = "tax_year"
)

// RegistryColumns are required in a charity registry.
var RegistryColumns = []string{ColFilerEIN, ColFilerName}

// LedgerColumns are required in a grants ledger.
var LedgerColumns = []string{ColFilerEIN, ColGrantEIN, ColGrantAmt}

// ErrSchema is the sentinel wrapped by every SchemaError.
var ErrSchema = errors.New("schema error")

// SchemaError reports a required column missing from an input table.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table is missing required column %q", e.Table, e.Column)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Table is a row-oriented table as handed over by a loader. Every row has
// exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// NewTable creates a table, normalizing header names (trimmed, lower case)
// and padding or truncating rows to the header width.
func NewTable(name string, columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
	}

	t := &Table{Name: name, Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(row []string) {
	switch {
	case len(row) == len(t.Columns):
		t.Rows = append(t.Rows, row)
	case len(row) < len(t.Columns):
		padded := make([]string, len(t.Columns))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	default:
		t.Rows = append(t.Rows, row[:len(t.Columns)])
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table has column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Require returns a SchemaError for the first of columns the table lacks.
func (t *Table) Require(columns ...string) error {
	if t == nil {
		return &SchemaError{Table: "<nil>", Column: strings.Join(columns, ",")}
	}
	for _, c := range columns {
		if !t.Has(c) {
			return &SchemaError{Table: t.Name, Column: c}
		}
	}
	return nil
}

// Schema maps column names to positions for a validated table.
type Schema struct {
	positions map[string]int
	columns   []string
}

// SchemaOf validates that t has every required column and returns its schema.
func SchemaOf(t *Table, required ...string) (*Schema, error) {
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	s := &Schema{positions: make(map[string]int, len(t.Columns)), columns: t.Columns}
	for i, c := range t.Columns {
		if _, dup := s.positions[c]; !dup {
			s.positions[c] = i
		}
	}
	return s, nil
}

// Get returns the cell of row in column, or "" if the column is absent.
func (s *Schema) Get(row []string, column string) string {
	i, ok := s.positions[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Has reports whether the schema includes column.
func (s *Schema) Has(column string) bool {
	_, ok := s.positions[column]
	return ok
}

// Extras returns the cells of row whose columns are not in mapped.
func (s *Schema) Extras(row []string, mapped ...string) map[string]string {
	skip := make(map[string]struct{}, len(mapped))
	for _, m := range mapped {
		skip[m] = struct{}{}
	}
	var extras map[string]string
	for i, c := range s.columns {
		if _, ok := skip[c]; ok || i >= len(row) || c == "" {
			continue
		}
		if extras == nil {
			extras = make(map[string]string)
		}
		extras[c] = row[i]
	}
	return extras
}
