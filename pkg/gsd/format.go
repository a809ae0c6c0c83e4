package gsd

import (
	"fmt"
	"strings"
)

// FormatError describes why a template could not be rendered.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Field)
}

// Format substitutes {name} placeholders in tmpl with values. Doubled braces
// produce literal braces. Named fields may carry the !s conversion, which is
// a no-op on strings. Positional fields, other conversions, format specs, and
// keys missing from values all fail with *FormatError, leaving the caller to
// decide on a fallback.
func Format(tmpl string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}

			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end == -1 || tmpl[i+1+end] == '{' {
				return "", &FormatError{Reason: "single '{' encountered in format string"}
			}

			field := tmpl[i+1 : i+1+end]
			value, err := lookupField(field, values)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &FormatError{Reason: "single '}' encountered in format string"}
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

func lookupField(field string, values map[string]string) (string, error) {
	field = strings.TrimSuffix(field, "!s")
	if field == "" || isDigits(field) {
		return "", &FormatError{Field: field, Reason: "positional fields are not supported"}
	}
	if strings.ContainsAny(field, "!:.[") {
		return "", &FormatError{Field: field, Reason: "field modifiers are not supported"}
	}

	value, ok := values[field]
	if !ok {
		return "", &FormatError{Field: field, Reason: "missing template key"}
	}
	return value, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
