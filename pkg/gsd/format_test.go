package gsd

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	values := map[string]string{"name": "gsd", "date": "2026-01-02", "empty": ""}

	tests := []struct {
		name     string
		tmpl     string
		expected string
	}{
		{"plain text", "no placeholders", "no placeholders"},
		{"single field", "# {name}", "# gsd"},
		{"repeated fields", "{name}/{name} on {date}", "gsd/gsd on 2026-01-02"},
		{"empty value", "[{empty}]", "[]"},
		{"escaped braces", "{{literal}} and {name}", "{literal} and gsd"},
		{"escaped closing only", "a }} b", "a } b"},
		{"multibyte text", "héllo {name} ✓", "héllo gsd ✓"},
		{"string conversion", "# {name!s} on {date}", "# gsd on 2026-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.tmpl, values)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatValuesAreInsertedVerbatim(t *testing.T) {
	got, err := Format("{a}", map[string]string{"a": "{b} }"})
	require.NoError(t, err)
	assert.Equal(t, "{b} }", got)
}

func TestFormatErrors(t *testing.T) {
	values := map[string]string{"name": "gsd"}

	tests := []struct {
		name   string
		tmpl   string
		field  string
		reason string
	}{
		{"missing key", "{nope}", "nope", "missing template key"},
		{"positional", "{0}", "0", "positional fields are not supported"},
		{"auto numbered", "{}", "", "positional fields are not supported"},
		{"attribute access", "{name.upper}", "name.upper", "field modifiers are not supported"},
		{"index access", "{name[0]}", "name[0]", "field modifiers are not supported"},
		{"conversion", "{name!r}", "name!r", "field modifiers are not supported"},
		{"format spec", "{name:>10}", "name:>10", "field modifiers are not supported"},
		{"unclosed", "{name", "", "single '{' encountered in format string"},
		{"nested open", "{na{me}", "", "single '{' encountered in format string"},
		{"stray close", "name}", "", "single '}' encountered in format string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.tmpl, values)
			require.Error(t, err)

			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, tt.field, formatErr.Field)
			assert.Equal(t, tt.reason, formatErr.Reason)
		})
	}
}

func TestFormatErrorMessage(t *testing.T) {
	assert.Equal(t, `missing template key: "x"`, (&FormatError{Field: "x", Reason: "missing template key"}).Error())
	assert.Equal(t, "single '}' encountered in format string", (&FormatError{Reason: "single '}' encountered in format string"}).Error())
}
