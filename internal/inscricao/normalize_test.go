package inscricao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing", "", ""},
		{"em dash period and space", "123.456—789 .012", "123456-789012"},
		{"en dash", "01–02", "01-02"},
		{"hyphen kept", "01-02", "01-02"},
		{"periods only", "01.002.0003", "010020003"},
		{"surrounding whitespace", "\t 12.34 \n", "1234"},
		{"inner tab kept", "12\t34", "12\t34"},
		{"only punctuation", ". . .", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"123.456—789 .012",
		"  01.02.03–04  ",
		"1\t.\t",
		"a  b",
		"—.— ",
		"00.00.0000",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
