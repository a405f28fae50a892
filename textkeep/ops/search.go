package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/textkeep/textkeep/textkeep/query"
	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// ErrPayloadDecode marks a stored __payload that no longer parses as
// JSON. It indicates corruption or a write path bypassing this module
// and is always surfaced, never swallowed.
var ErrPayloadDecode = errors.New("payload decode failed")

// ErrInvalidProjection marks a projection field that is not a bare
// identifier. Unlike the raw filter, the projection is not trusted
// pass-through input.
var ErrInvalidProjection = errors.New("invalid projection field")

// DefaultLimit is the page size applied when SearchOptions.Limit is
// unset.
const DefaultLimit = 50

// SearchOptions configures one search call.
type SearchOptions struct {
	// Fields is the column projection; empty or "*" selects every
	// column. A non-wildcard projection always fetches __payload too,
	// reconstruction depends on it.
	Fields []string
	Limit  int
	Offset int
	// Filter is a raw predicate in the engine's expression syntax,
	// ANDed with the compiled match expression. Caller-trusted input.
	Filter string
	// Payload merges every payload key onto the result document,
	// payload winning over indexed-column duplicates. When false the
	// result shape is driven by the projected columns only.
	Payload bool
	// Near enables proximity matching with the given token distance.
	Near int
}

// FacetOptions configures a facet aggregation. Limit == 0 disables
// pagination entirely and returns all groups.
type FacetOptions struct {
	Limit  int
	Offset int
	Filter string
	Near   int
}

// FacetCount is one aggregation group.
type FacetCount struct {
	Value string
	Count uint64
}

var projectionRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Count returns the number of documents matching queryStr and filter.
// Both empty yields the unfiltered total.
func Count(ctx context.Context, db *sql.DB, adapter storage.Adapter, indexed []string, queryStr, filter string) (uint64, error) {
	b := sqlbuilder.New(adapter.PlaceholderStyle())
	cond, _ := adapter.CompileMatch(b, query.Compile(queryStr, indexed, 0))

	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", storage.Table, whereClause(cond, filter))
	var n uint64
	if err := db.QueryRowContext(ctx, stmt, b.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Search executes a paginated match query and reconstructs documents
// from the projected columns merged with the stored payload.
func Search(ctx context.Context, db *sql.DB, adapter storage.Adapter, indexed []string, queryStr string, opts SearchOptions) ([]map[string]any, error) {
	proj, err := buildProjection(opts.Fields)
	if err != nil {
		return nil, err
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	cond, orderBy := adapter.CompileMatch(b, query.Compile(queryStr, indexed, opts.Near))

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s%s", proj, storage.Table, whereClause(cond, opts.Filter))
	if cond != "" && orderBy != "" {
		sb.WriteString(" ORDER BY " + orderBy)
	}
	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", b.Arg(limit), b.Arg(opts.Offset))

	rows, err := db.QueryContext(ctx, sb.String(), b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("result columns: %w", err)
	}

	docs := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		doc, err := reconstruct(cols, vals, opts.Payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	// No rows means no keys to derive: the empty list is returned
	// as-is.
	return docs, nil
}

// Facet groups matching rows by an arbitrary caller-supplied field
// expression and counts rows per group, descending. The expression is
// pass-through trusted input like Filter.
func Facet(ctx context.Context, db *sql.DB, adapter storage.Adapter, indexed []string, queryStr, facetExpr string, opts FacetOptions) ([]FacetCount, error) {
	if strings.TrimSpace(facetExpr) == "" {
		return nil, fmt.Errorf("empty facet expression")
	}

	b := sqlbuilder.New(adapter.PlaceholderStyle())
	cond, _ := adapter.CompileMatch(b, query.Compile(queryStr, indexed, opts.Near))

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s AS value, COUNT(*) AS count FROM %s%s GROUP BY %s ORDER BY count DESC",
		facetExpr, storage.Table, whereClause(cond, opts.Filter), facetExpr)
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", b.Arg(opts.Limit), b.Arg(opts.Offset))
	}

	rows, err := db.QueryContext(ctx, sb.String(), b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("execute facet: %w", err)
	}
	defer rows.Close()

	var groups []FacetCount
	for rows.Next() {
		var val any
		var n uint64
		if err := rows.Scan(&val, &n); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, FacetCount{Value: valueString(val), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// reconstruct merges one result row with its decoded payload. With
// withPayload the payload keys win and every one of them appears; the
// result shape is otherwise the projected columns, each backfilled
// from the payload when it carries the key.
func reconstruct(cols []string, vals []any, withPayload bool) (map[string]any, error) {
	var payload map[string]any
	raw := map[string]any{}
	for i, col := range cols {
		raw[col] = normalizeValue(vals[i])
	}

	if pv, ok := raw[storage.ColPayload]; ok && pv != nil {
		s, ok := pv.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected column type %T", ErrPayloadDecode, pv)
		}
		if err := json.Unmarshal([]byte(s), &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayloadDecode, err)
		}
	}

	doc := make(map[string]any, len(cols))
	for _, col := range cols {
		if col == storage.ColPayload {
			continue
		}
		if col != storage.ColID {
			if pv, ok := payload[col]; ok {
				doc[col] = pv
				continue
			}
		}
		doc[col] = raw[col]
	}
	if withPayload {
		for k, v := range payload {
			doc[k] = v
		}
	}
	return doc, nil
}

func buildProjection(fields []string) (string, error) {
	if len(fields) == 0 {
		return "*", nil
	}
	hasPayload := false
	cols := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if f == "*" {
			return "*", nil
		}
		if !projectionRe.MatchString(f) {
			return "", fmt.Errorf("%w %q", ErrInvalidProjection, f)
		}
		if f == storage.ColPayload {
			hasPayload = true
		}
		cols = append(cols, f)
	}
	if !hasPayload {
		cols = append(cols, storage.ColPayload)
	}
	return strings.Join(cols, ", "), nil
}

func whereClause(matchCond, filter string) string {
	filter = strings.TrimSpace(filter)
	switch {
	case matchCond != "" && filter != "":
		return fmt.Sprintf(" WHERE %s AND (%s)", matchCond, filter)
	case matchCond != "":
		return " WHERE " + matchCond
	case filter != "":
		return " WHERE " + filter
	default:
		return ""
	}
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func valueString(v any) string {
	switch t := normalizeValue(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
