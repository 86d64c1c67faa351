package types

import (
	"errors"
	"fmt"
)

// IdentifierColumn is the header of the property registration identifier
// ("inscrição imobiliária") in the municipal extracts.
const IdentifierColumn = "Inscrição imobiliária"

// ErrColumnNotFound is returned when a table lacks a required column.
var ErrColumnNotFound = errors.New("column not found")

// Record is one row of a registry extract keyed by trimmed header name.
// A column that is absent from the map, or present with an empty value,
// is treated as missing.
type Record map[string]string

// Get returns the value stored under column and whether it is present and
// non-empty.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of records sharing a common column set.
// Row order is the order the rows were read in and is preserved by every
// transform in this module.
type Table struct {
	// Source names where the table was loaded from (file path, query).
	Source  string
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Require returns a *ColumnError if the table does not carry column.
func (t Table) Require(column string) error {
	if t.HasColumn(column) {
		return nil
	}
	return &ColumnError{Column: column, Source: t.Source}
}

// WithColumn returns the column list with name appended unless it is
// already present.
func (t Table) WithColumn(name string) []string {
	cols := make([]string, len(t.Columns), len(t.Columns)+1)
	copy(cols, t.Columns)
	if !t.HasColumn(name) {
		cols = append(cols, name)
	}
	return cols
}

// Values returns the raw value of column for every row, in row order.
// Missing values are returned as "".
func (t Table) Values(column string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[column]
	}
	return out
}

// ColumnError reports a required column missing from a table.
type ColumnError struct {
	Column string
	Source string
}

// Error implements the error interface
func (e *ColumnError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("column %q not found in %s", e.Column, e.Source)
	}
	return fmt.Sprintf("column %q not found", e.Column)
}

// Is implements errors.Is support
func (e *ColumnError) Is(target error) bool {
	return target == ErrColumnNotFound
}
