package inscricao

import (
	"errors"
	"fmt"
	"strings"

	"inscricoes/internal/types"
)

// ErrInvalidSegment is returned when the last segment of an identifier is
// not a non-negative decimal integer.
var ErrInvalidSegment = errors.New("invalid final segment")

// SegmentError reports an identifier whose final segment cannot be
// corrected.
type SegmentError struct {
	Value   string
	Segment string
}

// Error implements the error interface
func (e *SegmentError) Error() string {
	return fmt.Sprintf("identifier %q: final segment %q is not a non-negative integer", e.Value, e.Segment)
}

// Is implements errors.Is support
func (e *SegmentError) Is(target error) bool {
	return target == ErrInvalidSegment
}

// Correct strips leading zeros from the last period-separated segment of
// raw and leaves every other segment untouched. A missing identifier ("")
// is returned unchanged. "12.034.0007" becomes "12.034.7" and an all-zero
// segment collapses to "0".
func Correct(raw string) (string, error) {
	if raw == "" {
		return raw, nil
	}
	parts := strings.Split(raw, ".")
	last := len(parts) - 1
	digits, ok := stripZeros(parts[last])
	if !ok {
		return "", &SegmentError{Value: raw, Segment: parts[last]}
	}
	parts[last] = digits
	return strings.Join(parts, "."), nil
}

// stripZeros parses seg as a non-negative decimal integer, tolerating
// surrounding whitespace and a leading "+", and returns its canonical
// digits. Digits are handled as text so arbitrarily long segments do not
// overflow.
func stripZeros(seg string) (string, bool) {
	seg = strings.TrimPrefix(strings.TrimSpace(seg), "+")
	if seg == "" {
		return "", false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return "", false
		}
	}
	seg = strings.TrimLeft(seg, "0")
	if seg == "" {
		return "0", true
	}
	return seg, true
}

// InvalidPolicy decides what CorrectTable does with identifiers whose
// final segment is not numeric.
type InvalidPolicy string

const (
	// PolicyError aborts the correction on the first invalid identifier.
	PolicyError InvalidPolicy = "error"
	// PolicyKeep leaves invalid identifiers unchanged and reports them.
	PolicyKeep InvalidPolicy = "keep"
)

// ParsePolicy validates a policy name. The empty string selects PolicyError.
func ParsePolicy(s string) (InvalidPolicy, error) {
	switch InvalidPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyError:
		return PolicyError, nil
	case PolicyKeep:
		return PolicyKeep, nil
	}
	return "", fmt.Errorf("unknown invalid-identifier policy %q (want %q or %q)", s, PolicyError, PolicyKeep)
}

// InvalidRow is an identifier left unchanged under PolicyKeep.
type InvalidRow struct {
	Row   int // zero-based data row index
	Value string
	Err   error
}

// Stats summarizes a CorrectTable run.
type Stats struct {
	Rows    int
	Changed int
	Missing int
	Invalid []InvalidRow
}

// CorrectTable returns a copy of t with column corrected in place. Row order
// and every other column are unchanged; t itself is not modified.
func CorrectTable(t types.Table, column string, policy InvalidPolicy) (types.Table, Stats, error) {
	if err := t.Require(column); err != nil {
		return types.Table{}, Stats{}, err
	}

	out := types.Table{
		Source:  t.Source,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]types.Record, len(t.Rows)),
	}
	stats := Stats{Rows: len(t.Rows)}

	for i, rec := range t.Rows {
		row := rec.Clone()
		out.Rows[i] = row

		raw, ok := rec.Get(column)
		if !ok {
			stats.Missing++
			continue
		}
		fixed, err := Correct(raw)
		if err != nil {
			if policy != PolicyKeep {
				return types.Table{}, stats, fmt.Errorf("row %d: %w", i+1, err)
			}
			stats.Invalid = append(stats.Invalid, InvalidRow{Row: i, Value: raw, Err: err})
			continue
		}
		if fixed != raw {
			stats.Changed++
		}
		row[column] = fixed
	}
	return out, stats, nil
}
