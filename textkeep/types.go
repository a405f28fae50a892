package textkeep

import "github.com/textkeep/textkeep/textkeep/ops"

// Document is a caller-facing document: field name to value, always
// carrying "id". Values may be nested structures; they are flattened
// for indexing but preserved verbatim in the payload.
type Document = map[string]any

// SearchOptions configures a search call.
type SearchOptions struct {
	// Fields is the column projection; nil or "*" selects everything.
	Fields []string
	// Limit defaults to DefaultSearchLimit when zero or negative.
	Limit  int
	Offset int
	// Filter is a raw predicate in the engine's native expression
	// syntax, ANDed with the compiled match expression. It is passed
	// through unmodified; the caller owns its safety.
	Filter string
	// Payload merges every stored payload key onto each result,
	// payload winning over indexed-column duplicates.
	Payload bool
	// Near switches match clauses to proximity mode with the given
	// token distance.
	Near int
}

// FacetOptions configures a facet aggregation. A zero Limit disables
// pagination and returns all groups.
type FacetOptions struct {
	Limit  int
	Offset int
	Filter string
	Near   int
}

// FacetCount is one facet group with its row count.
type FacetCount struct {
	Value string
	Count uint64
}

// Options configures index creation and open behavior.
type Options struct {
	Tokenizer string
}

func DefaultOptions() Options {
	return Options{Tokenizer: DefaultTokenizer}
}

func toOpsSearch(o SearchOptions) ops.SearchOptions {
	return ops.SearchOptions{
		Fields:  o.Fields,
		Limit:   o.Limit,
		Offset:  o.Offset,
		Filter:  o.Filter,
		Payload: o.Payload,
		Near:    o.Near,
	}
}

func toOpsFacet(o FacetOptions) ops.FacetOptions {
	return ops.FacetOptions{
		Limit:  o.Limit,
		Offset: o.Offset,
		Filter: o.Filter,
		Near:   o.Near,
	}
}
