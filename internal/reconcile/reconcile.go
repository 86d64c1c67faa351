// Package reconcile finds the records of a candidate registry extract whose
// identifiers do not appear in a reference extract.
package reconcile

import (
	"fmt"

	"inscricoes/internal/inscricao"
	"inscricoes/internal/types"
)

// Default names of the derived columns appended to the output.
const (
	DefaultNormalizedColumn = "inscricao_normalizada"
	DefaultFlagColumn       = "esta_no_imoveis"
)

// Options configures a reconciliation.
type Options struct {
	// Column holds the raw identifier in both tables.
	Column string
	// NormalizedColumn receives the normalized identifier in the output.
	NormalizedColumn string
	// FlagColumn receives the membership flag in the output.
	FlagColumn string
}

// DefaultOptions returns the column names used by the municipal extracts.
func DefaultOptions() Options {
	return Options{
		Column:           types.IdentifierColumn,
		NormalizedColumn: DefaultNormalizedColumn,
		FlagColumn:       DefaultFlagColumn,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Column == "" {
		o.Column = d.Column
	}
	if o.NormalizedColumn == "" {
		o.NormalizedColumn = d.NormalizedColumn
	}
	if o.FlagColumn == "" {
		o.FlagColumn = d.FlagColumn
	}
	return o
}

// Result is the outcome of Reconcile.
type Result struct {
	// Missing holds the corrected rows absent from the complete table, in
	// their original order, with the two derived columns appended.
	Missing types.Table

	CompleteRows     int
	CompleteDistinct int
	CorrectedRows    int
	Matched          int
}

// Flag renders a membership flag the way the reference tooling writes it.
func Flag(present bool) string {
	if present {
		return "True"
	}
	return "False"
}

// Reconcile returns the rows of corrected whose normalized identifier has no
// exact match among the normalized identifiers of complete. Lookup is
// set-based: order of complete is irrelevant and duplicates count once.
// Neither input is modified.
func Reconcile(complete, corrected types.Table, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if err := complete.Require(opts.Column); err != nil {
		return nil, fmt.Errorf("complete table: %w", err)
	}
	if err := corrected.Require(opts.Column); err != nil {
		return nil, fmt.Errorf("corrected table: %w", err)
	}

	known := make(map[string]struct{}, len(complete.Rows))
	for _, rec := range complete.Rows {
		known[inscricao.Normalize(rec[opts.Column])] = struct{}{}
	}

	missing := types.Table{
		Source:  corrected.Source,
		Columns: corrected.WithColumn(opts.NormalizedColumn),
	}
	missing.Columns = missing.WithColumn(opts.FlagColumn)

	res := &Result{
		CompleteRows:     len(complete.Rows),
		CompleteDistinct: len(known),
		CorrectedRows:    len(corrected.Rows),
	}
	for _, rec := range corrected.Rows {
		norm := inscricao.Normalize(rec[opts.Column])
		if _, ok := known[norm]; ok {
			res.Matched++
			continue
		}
		row := rec.Clone()
		row[opts.NormalizedColumn] = norm
		row[opts.FlagColumn] = Flag(false)
		missing.Rows = append(missing.Rows, row)
	}
	res.Missing = missing
	return res, nil
}
