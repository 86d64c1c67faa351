package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relatorio.yaml")

	r := New("compare", "Inscrição imobiliária")
	r.Inputs = []string{"LauroMullerCompleto.csv", "LauroMullerCorrigido.csv"}
	r.Output = "inscricoes_faltantes.csv"
	r.Counts["missing"] = 3
	r.Counts["matched"] = 10
	r.Finish()

	require.NoError(t, Write(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeline: compare")
	assert.NotContains(t, string(data), "unchanged:")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "inscricoes_faltantes.csv", got["output"])
	assert.Equal(t, "Inscrição imobiliária", got["column"])
	counts, ok := got["counts"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, counts["missing"])
}

func TestWriteEmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, Write("", New("correct", "x")))
}
