// Package charset converts registry extracts to UTF-8. Municipal systems
// frequently export ISO-8859-1 or windows-1252 text; everything downstream
// works on UTF-8.
package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Auto selects detection instead of a fixed charset label.
const Auto = "auto"

// Fallback is used when detection yields a charset x/text does not know.
const Fallback = "windows-1252"

// Detect returns the most likely charset label for data. Valid UTF-8 is
// reported as "utf-8" without consulting the detector.
func Detect(data []byte) string {
	if utf8.Valid(data) {
		return "utf-8"
	}
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return Fallback
	}
	label := strings.ToLower(result.Charset)
	if _, err := htmlindex.Get(label); err != nil {
		return Fallback
	}
	return label
}

// Lookup resolves a charset label to an encoding. "" and Auto are not
// accepted here; callers resolve them with Detect first.
func Lookup(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc, nil
}

// Decode converts data from label to UTF-8. label may be "" or Auto to
// detect the charset. The resolved label is returned alongside the text.
func Decode(data []byte, label string) ([]byte, string, error) {
	if label == "" || strings.EqualFold(label, Auto) {
		label = Detect(data)
	}
	enc, err := Lookup(label)
	if err != nil {
		return nil, "", err
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return data, name, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", label, err)
	}
	return out, label, nil
}

// DecodeString is Decode for short values such as DBF attributes. Invalid
// UTF-8 under Auto is decoded as Fallback; detection is unreliable on a few
// bytes.
func DecodeString(s, label string) (string, error) {
	if label == "" || strings.EqualFold(label, Auto) {
		if utf8.ValidString(s) {
			return s, nil
		}
		label = Fallback
	}
	out, _, err := Decode([]byte(s), label)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
