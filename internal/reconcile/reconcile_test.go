package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscricoes/internal/types"
)

const col = types.IdentifierColumn

func table(source string, ids ...string) types.Table {
	t := types.Table{Source: source, Columns: []string{"Seq", col}}
	for i, id := range ids {
		t.Rows = append(t.Rows, types.Record{"Seq": string(rune('a' + i)), col: id})
	}
	return t
}

func TestReconcileReturnsOnlyUnmatched(t *testing.T) {
	complete := table("completo.csv", "111", "222")
	corrected := table("corrigido.csv", "111", "333")

	res, err := Reconcile(complete, corrected, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Missing.Rows, 1)
	assert.Equal(t, "333", res.Missing.Rows[0][col])
	assert.Equal(t, "333", res.Missing.Rows[0][DefaultNormalizedColumn])
	assert.Equal(t, "False", res.Missing.Rows[0][DefaultFlagColumn])

	assert.Equal(t, 2, res.CompleteRows)
	assert.Equal(t, 2, res.CompleteDistinct)
	assert.Equal(t, 2, res.CorrectedRows)
	assert.Equal(t, 1, res.Matched)
}

func TestReconcileMatchesNormalizedForms(t *testing.T) {
	complete := table("a", "01.002.0003-4", " 05.06.07 ")
	corrected := table("b", "01002 0003–4", "0506.07", "08.09")

	res, err := Reconcile(complete, corrected, Options{})
	require.NoError(t, err)

	require.Len(t, res.Missing.Rows, 1)
	assert.Equal(t, "08.09", res.Missing.Rows[0][col])
	assert.Equal(t, "0809", res.Missing.Rows[0][DefaultNormalizedColumn])
}

func TestReconcilePreservesOrderAndColumns(t *testing.T) {
	complete := table("a", "2", "4")
	corrected := types.Table{
		Source:  "b",
		Columns: []string{"Proprietário", col, "Bairro"},
		Rows: []types.Record{
			{"Proprietário": "Eva", col: "5", "Bairro": "Centro"},
			{"Proprietário": "Ivo", col: "2", "Bairro": "Barro Branco"},
			{"Proprietário": "Ana", col: "1", "Bairro": "Guatá"},
			{"Proprietário": "Rui", col: "3"},
		},
	}

	res, err := Reconcile(complete, corrected, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Proprietário", col, "Bairro", DefaultNormalizedColumn, DefaultFlagColumn},
		res.Missing.Columns)
	assert.Equal(t, []string{"Eva", "Ana", "Rui"}, res.Missing.Values("Proprietário"))
	assert.Equal(t, []string{"Centro", "Guatá", ""}, res.Missing.Values("Bairro"))
	_, hasBairro := res.Missing.Rows[2]["Bairro"]
	assert.False(t, hasBairro, "missing values stay missing")

	assert.Len(t, corrected.Columns, 3, "input columns untouched")
	_, tagged := corrected.Rows[0][DefaultFlagColumn]
	assert.False(t, tagged, "input rows untouched")
}

func TestReconcileDuplicatesAndOrderInComplete(t *testing.T) {
	corrected := table("b", "1", "2", "3")

	a := table("a", "3", "1", "1", "1")
	b := table("a", "1", "3")

	ra, err := Reconcile(a, corrected, DefaultOptions())
	require.NoError(t, err)
	rb, err := Reconcile(b, corrected, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ra.Missing.Rows, rb.Missing.Rows)
	assert.Equal(t, 2, ra.CompleteDistinct)
	assert.Equal(t, 4, ra.CompleteRows)
}

func TestReconcileMissingIdentifiers(t *testing.T) {
	// Missing identifiers normalize to "" on both sides and therefore match.
	complete := table("a", "", "1")
	corrected := table("b", "", "2")
	corrected.Rows = append(corrected.Rows, types.Record{"Seq": "z"})

	res, err := Reconcile(complete, corrected, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.Missing.Values(col))
	assert.Equal(t, 2, res.Matched)
}

func TestReconcileOverwritesExistingDerivedColumns(t *testing.T) {
	complete := table("a", "1")
	corrected := types.Table{
		Columns: []string{col, DefaultFlagColumn},
		Rows:    []types.Record{{col: "9", DefaultFlagColumn: "stale"}},
	}

	res, err := Reconcile(complete, corrected, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{col, DefaultFlagColumn, DefaultNormalizedColumn}, res.Missing.Columns)
	assert.Equal(t, "False", res.Missing.Rows[0][DefaultFlagColumn])
}

func TestReconcileRequiresColumn(t *testing.T) {
	good := table("good.csv", "1")
	bad := types.Table{Source: "bad.csv", Columns: []string{"Inscricao"}}

	_, err := Reconcile(bad, good, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrColumnNotFound))
	assert.Contains(t, err.Error(), "complete table")

	_, err = Reconcile(good, bad, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "True", Flag(true))
	assert.Equal(t, "False", Flag(false))
}
