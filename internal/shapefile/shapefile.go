// Package shapefile loads the attribute table of a cadastral parcel layer
// as a registry table, one record per shape.
package shapefile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"inscricoes/internal/charset"
	"inscricoes/internal/types"
)

// Options controls how DBF attributes become table columns.
type Options struct {
	// Fields renames DBF fields (at most 10 characters) to table columns,
	// e.g. INSCRICAO → "Inscrição imobiliária". Unlisted fields keep
	// their DBF name.
	Fields map[string]string
	// Charset of the DBF text; "" or "auto" keeps valid UTF-8 and decodes
	// anything else as windows-1252.
	Charset string
}

// Load reads the shapefile at path (the .shp; the .dbf beside it holds the
// attributes) and returns its attribute rows in shape order. Geometry is
// ignored. A missing .dbf is an error wrapping fs.ErrNotExist.
func Load(path string, opts Options) (types.Table, error) {
	// shp.Open does not report a missing .dbf; the rows would load with no
	// columns.
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		if os.IsNotExist(err) {
			return types.Table{}, fmt.Errorf("shapefile %s: attribute table %s: %w", path, dbf, fs.ErrNotExist)
		}
		return types.Table{}, fmt.Errorf("shapefile %s: %w", path, err)
	}

	r, err := shp.Open(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	fields := r.Fields()
	t := types.Table{Source: path, Columns: make([]string, len(fields))}
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00 ")
		if renamed, ok := lookupField(opts.Fields, name); ok {
			name = renamed
		}
		t.Columns[i] = name
	}

	for r.Next() {
		idx, _ := r.Shape()
		rec := make(types.Record, len(fields))
		for i := range fields {
			v := strings.TrimSpace(strings.TrimRight(r.ReadAttribute(idx, i), "\x00"))
			if v == "" {
				continue
			}
			v, err = charset.DecodeString(v, opts.Charset)
			if err != nil {
				return types.Table{}, fmt.Errorf("shapefile %s row %d: %w", path, idx, err)
			}
			rec[t.Columns[i]] = v
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// lookupField matches DBF names case-insensitively; DBF tooling is
// inconsistent about case.
func lookupField(fields map[string]string, name string) (string, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
