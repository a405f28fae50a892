package sqlite

import (
	"fmt"
	"strings"

	"github.com/textkeep/textkeep/textkeep/storage"
)

// buildMatchString renders clauses as a single fts5 match string using
// column-filter syntax, clauses combined with OR. The whole string is
// bound as one parameter, never interpolated into the statement.
func buildMatchString(clauses []storage.MatchClause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		parts = append(parts, fmt.Sprintf("%s : %s", c.Field, matchTerm(c)))
	}
	return strings.Join(parts, " OR ")
}

func matchTerm(c storage.MatchClause) string {
	toks := strings.Fields(c.Value)
	if len(toks) <= 1 {
		return quoteFTSTerm(c.Value)
	}
	quoted := make([]string, 0, len(toks))
	for _, t := range toks {
		quoted = append(quoted, quoteFTSTerm(t))
	}
	if c.Near > 0 {
		return fmt.Sprintf("NEAR(%s, %d)", strings.Join(quoted, " "), c.Near)
	}
	// Implicit AND of the tokens, scoped to the column.
	return fmt.Sprintf("(%s)", strings.Join(quoted, " "))
}

// quoteFTSTerm wraps a term in fts5 string quotes when it contains
// characters the fts5 query grammar would otherwise interpret.
func quoteFTSTerm(term string) string {
	need := false
	for _, r := range term {
		switch {
		case r == '"' || r == ':' || r == '*' || r == '(' || r == ')' || r == '^' || r == '-' || r == '+':
			need = true
		case r <= ' ':
			need = true
		}
		if need {
			break
		}
	}
	if !need {
		return term
	}
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
