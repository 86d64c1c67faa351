// Package source resolves a pipeline input (delimited file, parcel
// shapefile or cadastre query) to a table.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"inscricoes/internal/csvfile"
	"inscricoes/internal/database"
	"inscricoes/internal/shapefile"
	"inscricoes/internal/types"
)

// OraclePrefix marks an input that is a SQL query against the cadastre
// database: "oracle:SELECT ...".
const OraclePrefix = "oracle:"

// ErrUnsupportedSource is returned for inputs no loader can read.
var ErrUnsupportedSource = errors.New("unsupported source")

// Kind identifies which loader handles an input.
type Kind int

const (
	Unsupported Kind = iota
	Delimited
	Shapefile
	Oracle
)

func (k Kind) String() string {
	switch k {
	case Delimited:
		return "delimited"
	case Shapefile:
		return "shapefile"
	case Oracle:
		return "oracle"
	}
	return "unsupported"
}

// Classify returns the loader kind for spec.
func Classify(spec string) Kind {
	if strings.HasPrefix(strings.ToLower(spec), OraclePrefix) {
		return Oracle
	}
	switch strings.ToLower(filepath.Ext(spec)) {
	case ".shp":
		return Shapefile
	case ".xls", ".xlsx", ".ods", ".dbf", ".shx":
		return Unsupported
	}
	return Delimited
}

// Loader loads inputs with shared settings.
type Loader struct {
	Charset   string
	Shapefile shapefile.Options
	Database  database.DBConfig
	Logger    *zerolog.Logger
}

// Load reads spec as a table. delim applies to delimited files only; zero
// sniffs it.
func (l *Loader) Load(ctx context.Context, spec string, delim rune) (types.Table, error) {
	log := l.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	kind := Classify(spec)
	log.Debug().Str("input", spec).Stringer("kind", kind).Msg("Loading input")

	switch kind {
	case Delimited:
		return csvfile.Read(spec, csvfile.Options{Delimiter: delim, Charset: l.Charset, Logger: log})
	case Shapefile:
		return shapefile.Load(spec, l.Shapefile)
	case Oracle:
		return l.query(ctx, strings.TrimSpace(spec[len(OraclePrefix):]), log)
	}
	return types.Table{}, fmt.Errorf("%s: %w (export it as semicolon-delimited text, or pass the .shp of a shapefile)", spec, ErrUnsupportedSource)
}

func (l *Loader) query(ctx context.Context, query string, log *zerolog.Logger) (types.Table, error) {
	if query == "" {
		return types.Table{}, fmt.Errorf("oracle input: %w: empty query", ErrUnsupportedSource)
	}
	if !l.Database.Configured() {
		return types.Table{}, fmt.Errorf("oracle input: database host, service and username must be configured")
	}
	db, err := database.NewDatabase(ctx, l.Database, log)
	if err != nil {
		return types.Table{}, err
	}
	defer db.Close()
	return db.QueryTable(ctx, query)
}
