// Package query compiles the loose `field: value` / free-text query
// syntax into field-scoped match clauses. Rendering the clauses into
// an engine-native match expression is the storage adapter's job.
package query

import (
	"regexp"
	"strings"

	"github.com/textkeep/textkeep/textkeep/storage"
)

// qualifierRe detects field-qualifier syntax anywhere in the query.
// Its presence switches the entire query into qualified-parsing mode:
// free-text remnants are dropped, not searched.
var qualifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\s*:`)

// pairRe extracts one `field: value` pair. The value may be wrapped in
// double or single quotes; unquoted values run to the next whitespace.
var pairRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(?:"([^"]*)"|'([^']*)'|(\S+))`)

// Compile parses raw into match clauses scoped to fields. fields is
// the set of indexed field names; qualified pairs naming any other
// field are discarded. A query without qualifier syntax is applied as
// free text to every indexed field. near > 0 marks every clause for
// proximity matching. An empty or all-dropped query compiles to nil.
func Compile(raw string, fields []string, near int) []storage.MatchClause {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(fields) == 0 {
		return nil
	}

	if !qualifierRe.MatchString(raw) {
		clauses := make([]storage.MatchClause, 0, len(fields))
		for _, f := range fields {
			clauses = append(clauses, storage.MatchClause{Field: f, Value: raw, Near: near})
		}
		return clauses
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}

	var clauses []storage.MatchClause
	for _, m := range pairRe.FindAllStringSubmatch(raw, -1) {
		field := m[1]
		if !known[field] {
			continue
		}
		value := m[4]
		if m[2] != "" {
			value = m[2]
		} else if m[3] != "" {
			value = m[3]
		}
		if value == "" {
			continue
		}
		clauses = append(clauses, storage.MatchClause{Field: field, Value: value, Near: near})
	}
	return clauses
}
