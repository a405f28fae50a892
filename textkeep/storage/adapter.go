package storage

import (
	"context"
	"database/sql"

	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// Table is the name of the document table every backend materializes.
const Table = "documents"

// Reserved column names present in every index regardless of the
// caller's field list. Both are stored but excluded from full-text
// matching.
const (
	ColID      = "id"
	ColPayload = "__payload"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// MatchClause is one field-scoped full-text predicate produced by the
// query compiler. Near > 0 requests a proximity phrase match with the
// given token distance instead of an exact match.
type MatchClause struct {
	Field string
	Value string
	Near  int
}

// Adapter abstracts database-specific operations.
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// CreateTable creates the document table idempotently. fields is
	// the caller's indexed field list; the adapter appends the
	// reserved id/__payload columns itself.
	CreateTable(ctx context.Context, db *sql.DB, fields []string, tokenizer string) error

	// ResolveSchema introspects the live table and returns its ordered
	// column list, reserved columns included. ok is false when the
	// table does not exist.
	ResolveSchema(ctx context.Context, db *sql.DB) (cols []string, ok bool, err error)

	// CompileMatch renders the clauses as one engine-native boolean
	// condition with OR semantics, allocating placeholders on b.
	// orderBy is the relevance expression a caller appends after
	// ORDER BY when cond is non-empty. Both are empty for an empty
	// clause set.
	CompileMatch(b *sqlbuilder.Builder, clauses []MatchClause) (cond string, orderBy string)
}
