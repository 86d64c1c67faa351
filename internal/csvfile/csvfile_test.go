package csvfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"inscricoes/internal/types"
)

const col = types.IdentifierColumn

func TestParseSemicolon(t *testing.T) {
	data := " Inscrição imobiliária ;Proprietário;Endereço\n" +
		"01.002.0003;Ana;\"Rua A; 12\"\n" +
		"01.002.0004;Bruno\n"

	tbl, err := Parse([]byte(data), "in.csv", Options{Delimiter: ';'})
	require.NoError(t, err)

	assert.Equal(t, "in.csv", tbl.Source)
	assert.Equal(t, []string{col, "Proprietário", "Endereço"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Rua A; 12", tbl.Rows[0]["Endereço"])

	_, present := tbl.Rows[1]["Endereço"]
	assert.False(t, present, "short row leaves value missing")
}

func TestParseDropsExtraFields(t *testing.T) {
	tbl, err := Parse([]byte("a;b\n1;2;3\n"), "x", Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"a": "1", "b": "2"}, tbl.Rows[0])
}

func TestParseKeepsValuesVerbatim(t *testing.T) {
	tbl, err := Parse([]byte("a;b\n 01.02 ;x\n"), "x", Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, " 01.02 ", tbl.Rows[0]["a"])
}

func TestParseHeaderCleanup(t *testing.T) {
	// BOM, decomposed accents and a repeated column name.
	decomposed := "Inscric\u0327a\u0303o imobilia\u0301ria"
	data := "\ufeff" + decomposed + ";Obs;Obs;Obs\n1;a;b;c\n"

	tbl, err := Parse([]byte(data), "x", Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{col, "Obs", "Obs.1", "Obs.2"}, tbl.Columns)
	assert.Equal(t, "c", tbl.Rows[0]["Obs.2"])
}

func TestParseDuplicateSuffixSkipsExistingNames(t *testing.T) {
	tbl, err := Parse([]byte("a;a.1;a;a\n1;2;3;4\n"), "x", Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.1", "a.2", "a.3"}, tbl.Columns)
	assert.Equal(t, types.Record{"a": "1", "a.1": "2", "a.2": "3", "a.3": "4"}, tbl.Rows[0])
}

func TestParseLatin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("Inscrição imobiliária;Bairro\n01.02;Guatá\n")
	require.NoError(t, err)

	tbl, err := Parse([]byte(raw), "x", Options{Delimiter: ';', Charset: "iso-8859-1"})
	require.NoError(t, err)
	assert.Equal(t, "Guatá", tbl.Rows[0]["Bairro"])
	assert.True(t, tbl.HasColumn(col))
}

func TestParseEmpty(t *testing.T) {
	for _, data := range []string{"", "  \n\n"} {
		_, err := Parse([]byte(data), "vazio.csv", Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyFile))
		assert.Contains(t, err.Error(), "vazio.csv")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	tbl, err := Parse([]byte("a;b\n"), "x", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"semicolon with commas in values", "a;b\n1;Rua X, 10\n2;Rua Y, 20, fundos\n", ';'},
		{"single column", "a\n1\n", ','},
		{"inconsistent falls back to header", "a;b;c\n1;2\n", ';'},
		{"crlf", "a;b\r\n1;2\r\n", ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.text)))
		})
	}
}

func TestReadAutoDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lauroMuller.csv")
	require.NoError(t, os.WriteFile(path, []byte("Inscrição imobiliária,Área\n01.02.003,300\n"), 0o644))

	tbl, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "01.02.003", tbl.Rows[0][col])
	assert.Equal(t, "300", tbl.Rows[0]["Área"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestEncode(t *testing.T) {
	tbl := types.Table{
		Columns: []string{col, "Endereço", "Obs"},
		Rows: []types.Record{
			{col: "01.02", "Endereço": "Rua A; 12", "Obs": "x"},
			{col: "01.03"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tbl, Semicolon))
	assert.Equal(t, "Inscrição imobiliária;Endereço;Obs\n01.02;\"Rua A; 12\";x\n01.03;;\n", buf.String())
}

func TestWriteRoundTripsThroughRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "faltantes.csv")
	tbl := types.Table{
		Columns: []string{col, "Bairro"},
		Rows: []types.Record{
			{col: "01.02", "Bairro": "Guatá"},
			{col: "01.03", "Bairro": "Linha \"Torrens\""},
		},
	}
	require.NoError(t, Write(path, tbl))

	got, err := Read(path, Options{Delimiter: Semicolon})
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Rows, got.Rows)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left: %s", e.Name())
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, Write(path, types.Table{Columns: []string{"a"}, Rows: []types.Record{{"a": "1"}}}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(b))
}
