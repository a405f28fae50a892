package textkeep

import (
	"fmt"
	"regexp"

	"github.com/textkeep/textkeep/textkeep/storage"
)

// Reserved column names. Both are stored but never full-text matched.
const (
	FieldID      = storage.ColID
	FieldPayload = storage.ColPayload
)

// Schema is the ordered column list of the document table as resolved
// from the live table at open time, reserved columns included. Every
// non-reserved column is a full-text indexed field.
type Schema struct {
	Fields []string
}

// Indexed returns the field names eligible for full-text matching,
// preserving column order.
func (s Schema) Indexed() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f != FieldID && f != FieldPayload {
			out = append(out, f)
		}
	}
	return out
}

func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

func (s Schema) Empty() bool {
	return len(s.Fields) == 0
}

var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NormalizeFields validates a caller-supplied field list for index
// creation: names must be identifiers, duplicates collapse, and the
// reserved id/__payload columns are silently excluded since the
// adapter adds them itself. At least one indexed field must remain.
func NormalizeFields(fields []string) ([]string, error) {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == FieldID || f == FieldPayload {
			continue
		}
		if !fieldNameRe.MatchString(f) {
			return nil, New(ErrSchema, fmt.Sprintf("invalid field name %q (must match %s)", f, fieldNameRe.String()))
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, New(ErrSchema, "index needs at least one indexed field")
	}
	return out, nil
}
