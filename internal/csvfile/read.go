// Package csvfile loads and writes the delimited text extracts the registry
// pipelines work on.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"inscricoes/internal/charset"
	"inscricoes/internal/types"
)

// Semicolon is the delimiter of every file this module writes.
const Semicolon = ';'

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("empty file")

// Options controls how a table is read.
type Options struct {
	// Delimiter separates fields. Zero sniffs it from the first lines.
	Delimiter rune
	// Charset is the input encoding label; "" or "auto" detects it.
	Charset string
	Logger  *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Read loads the table stored at path.
func Read(path string, opts Options) (types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, path, opts)
}

// Parse decodes data into a table. source is recorded on the table and used
// in error messages.
func Parse(data []byte, source string, opts Options) (types.Table, error) {
	log := opts.logger()

	text, label, err := charset.Decode(data, opts.Charset)
	if err != nil {
		return types.Table{}, fmt.Errorf("%s: %w", source, err)
	}
	text = bytes.TrimPrefix(text, []byte("\ufeff"))
	if len(bytes.TrimSpace(text)) == 0 {
		return types.Table{}, fmt.Errorf("%s: %w", source, ErrEmptyFile)
	}

	comma := opts.Delimiter
	if comma == 0 {
		comma = Sniff(text)
		log.Debug().Str("file", source).Str("delimiter", strconv.QuoteRune(comma)).Msg("Detected delimiter")
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return types.Table{}, fmt.Errorf("%s: %w", source, ErrEmptyFile)
		}
		return types.Table{}, fmt.Errorf("%s: header: %w", source, err)
	}

	t := types.Table{Source: source, Columns: cleanHeader(header)}
	for line := 2; ; line++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Table{}, fmt.Errorf("%s: %w", source, err)
		}
		if len(fields) > len(t.Columns) {
			log.Debug().Str("file", source).Int("line", line).
				Int("fields", len(fields)).Int("columns", len(t.Columns)).
				Msg("Dropping extra fields")
		}
		rec := make(types.Record, len(t.Columns))
		for j, h := range t.Columns {
			if j < len(fields) {
				rec[h] = fields[j]
			}
		}
		t.Rows = append(t.Rows, rec)
	}

	log.Debug().Str("file", source).Str("charset", label).
		Int("columns", len(t.Columns)).Int("rows", len(t.Rows)).
		Msg("Loaded table")
	return t, nil
}

// cleanHeader trims and NFC-normalizes column names so "Inscrição" matches
// regardless of how the exporting system composed its accents. Repeated
// names get the first free ".1", ".2" suffix, skipping names that already
// appear in the header.
func cleanHeader(header []string) []string {
	cols := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		cols[i] = norm.NFC.String(strings.TrimSpace(h))
		taken[cols[i]] = true
	}

	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	for i, name := range cols {
		if used[name] {
			base := name
			for {
				next[base]++
				name = fmt.Sprintf("%s.%d", base, next[base])
				if !taken[name] && !used[name] {
					break
				}
			}
			cols[i] = name
		}
		used[name] = true
	}
	return cols
}

// candidates are tried in order; earlier entries win ties.
var candidates = []rune{';', ',', '\t', '|'}

// sniffLines bounds how much of the file Sniff inspects.
const sniffLines = 10

// Sniff guesses the field delimiter from the first lines of text. A
// delimiter that appears the same number of times on every sampled line is
// preferred; otherwise the one most frequent in the header wins. Comma is
// returned when nothing matches.
func Sniff(text []byte) rune {
	var lines []string
	for _, l := range strings.Split(string(text), "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == sniffLines {
			break
		}
	}
	if len(lines) == 0 {
		return ','
	}

	best, bestCount := rune(0), 0
	consistent, consistentCount := rune(0), 0
	for _, c := range candidates {
		n := strings.Count(lines[0], string(c))
		if n == 0 {
			continue
		}
		if n > bestCount {
			best, bestCount = c, n
		}
		same := true
		for _, l := range lines[1:] {
			if strings.Count(l, string(c)) != n {
				same = false
				break
			}
		}
		if same && n > consistentCount {
			consistent, consistentCount = c, n
		}
	}
	switch {
	case consistent != 0:
		return consistent
	case best != 0:
		return best
	}
	return ','
}
