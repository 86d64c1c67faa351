package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	r := Record{"a": "1", "b": ""}

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = r.Get("b")
	assert.False(t, ok, "empty value is missing")

	_, ok = r.Get("c")
	assert.False(t, ok, "absent column is missing")
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := Record{"a": "1"}
	c := r.Clone()
	c["a"] = "2"
	assert.Equal(t, "1", r["a"])
}

func TestTableRequire(t *testing.T) {
	tbl := Table{Source: "x.csv", Columns: []string{"a", IdentifierColumn}}

	require.NoError(t, tbl.Require(IdentifierColumn))

	err := tbl.Require("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Equal(t, `column "missing" not found in x.csv`, err.Error())

	var colErr *ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "missing", colErr.Column)
}

func TestTableWithColumn(t *testing.T) {
	tbl := Table{Columns: []string{"a", "b"}}

	assert.Equal(t, []string{"a", "b", "c"}, tbl.WithColumn("c"))
	assert.Equal(t, []string{"a", "b"}, tbl.WithColumn("b"))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns, "original columns untouched")
}

func TestTableValues(t *testing.T) {
	tbl := Table{
		Columns: []string{"a"},
		Rows:    []Record{{"a": "x"}, {}, {"a": "z"}},
	}
	assert.Equal(t, []string{"x", "", "z"}, tbl.Values("a"))
	assert.Equal(t, 3, tbl.Len())
}
