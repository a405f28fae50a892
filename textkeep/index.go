// Package textkeep is a lightweight document indexing and full-text
// search layer over an embedded SQL engine. Callers define a field
// list, ingest JSON-like documents, and run full-text queries with
// per-field targeting, raw filters, faceted aggregation, and
// pagination. The original document is preserved verbatim in a
// __payload column and merged back into search results.
package textkeep

import (
	"context"
	"database/sql"
	"errors"

	"github.com/textkeep/textkeep/textkeep/ops"
	"github.com/textkeep/textkeep/textkeep/storage"
)

// Index is an open document index bound to one storage backend.
type Index struct {
	adapter storage.Adapter
	db      *sql.DB
	schema  Schema
	opts    Options
}

// Create connects to the backend, creates the document table
// idempotently from fields, and returns the open index. Reserved
// field names in the list are silently dropped.
func Create(ctx context.Context, adapter storage.Adapter, fields []string, opts Options) (*Index, error) {
	normalized, err := NormalizeFields(fields)
	if err != nil {
		return nil, err
	}

	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.CreateTable(ctx, db, normalized, opts.Tokenizer); err != nil {
		_ = db.Close()
		return nil, Wrap(ErrSQL, "create index table", err)
	}

	return openResolved(ctx, adapter, db, opts)
}

// Open connects to the backend and resolves the field schema from the
// live table. An absent table surfaces ErrSchemaNotFound; the caller
// decides whether to Create or fail.
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Index, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	return openResolved(ctx, adapter, db, opts)
}

func openResolved(ctx context.Context, adapter storage.Adapter, db *sql.DB, opts Options) (*Index, error) {
	cols, ok, err := adapter.ResolveSchema(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, Wrap(ErrSQL, "resolve schema", err)
	}
	if !ok {
		_ = db.Close()
		return nil, SchemaNotFoundError(string(adapter.Backend()))
	}
	return &Index{adapter: adapter, db: db, schema: Schema{Fields: cols}, opts: opts}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	if ix.db != nil {
		if err := ix.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return ix.adapter.Close()
}

// Schema returns the resolved field schema.
func (ix *Index) Schema() Schema {
	return ix.schema
}

// Add indexes one document under id. In safe mode (the default for
// callers emulating upsert) any prior row with the same id is deleted
// first; delete and insert share one transaction.
func (ix *Index) Add(ctx context.Context, id any, doc Document, safe bool) error {
	clone := make(Document, len(doc)+1)
	for k, v := range doc {
		clone[k] = v
	}
	clone[FieldID] = id

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	style := ix.adapter.PlaceholderStyle()
	if safe {
		if _, err := ops.DeleteByID(ctx, tx, style, id); err != nil {
			return Wrap(ErrSQL, "remove prior document", err)
		}
	}
	if err := ix.insertOne(ctx, tx, clone); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return Wrap(ErrSQL, "commit", err)
	}
	return nil
}

// AddBatch indexes documents in one transaction. Every document must
// carry an "id"; a missing one aborts the whole batch, nothing is
// persisted.
func (ix *Index) AddBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if err := ix.insertOne(ctx, tx, doc); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return Wrap(ErrSQL, "commit", err)
	}
	return nil
}

func (ix *Index) insertOne(ctx context.Context, tx *sql.Tx, doc Document) error {
	prep, err := ops.Prepare(ix.schema.Indexed(), doc)
	if err != nil {
		if errors.Is(err, ops.ErrMissingID) {
			return Wrap(ErrMissingID, "document in batch", err)
		}
		return Wrap(ErrSchema, "prepare document", err)
	}
	if err := ops.ExecuteInsert(ctx, tx, ix.adapter.PlaceholderStyle(), prep); err != nil {
		return Wrap(ErrSQL, "insert document", err)
	}
	return nil
}

// Remove deletes at most one document. Removing an absent id is not
// an error; the return value reports whether a row went away.
func (ix *Index) Remove(ctx context.Context, id any) (bool, error) {
	removed, err := ops.DeleteByID(ctx, ix.db, ix.adapter.PlaceholderStyle(), id)
	if err != nil {
		return false, Wrap(ErrSQL, "remove document", err)
	}
	return removed, nil
}

// Update replaces the document stored under id with doc, rewriting
// every indexed column and the payload. Partial column updates are
// deliberately not offered: they would let the payload and the
// indexed columns diverge.
func (ix *Index) Update(ctx context.Context, id any, doc Document) error {
	return ix.Add(ctx, id, doc, true)
}

// Count returns the number of documents matching query and filter.
// Both empty yields the unfiltered total.
func (ix *Index) Count(ctx context.Context, queryStr, filter string) (uint64, error) {
	n, err := ops.Count(ctx, ix.db, ix.adapter, ix.schema.Indexed(), queryStr, filter)
	if err != nil {
		return 0, Wrap(ErrSQL, "count documents", err)
	}
	return n, nil
}

// Search runs a full-text query and reconstructs result documents
// from the projected columns merged with each row's stored payload.
// A non-empty match expression orders results by the engine's
// relevance rank; an empty one leaves engine row order.
func (ix *Index) Search(ctx context.Context, queryStr string, opts SearchOptions) ([]Document, error) {
	docs, err := ops.Search(ctx, ix.db, ix.adapter, ix.schema.Indexed(), queryStr, toOpsSearch(opts))
	if err != nil {
		if errors.Is(err, ops.ErrPayloadDecode) {
			return nil, Wrap(ErrPayload, "reconstruct document", err)
		}
		if errors.Is(err, ops.ErrInvalidProjection) {
			return nil, Wrap(ErrQuery, "build projection", err)
		}
		return nil, Wrap(ErrSQL, "search", err)
	}
	return docs, nil
}

// FacetSearch groups matching rows by facetExpr and counts rows per
// group, ordered by descending count. facetExpr is raw engine syntax,
// passed through like a filter; results are not payload-reconstructed.
func (ix *Index) FacetSearch(ctx context.Context, queryStr, facetExpr string, opts FacetOptions) ([]FacetCount, error) {
	groups, err := ops.Facet(ctx, ix.db, ix.adapter, ix.schema.Indexed(), queryStr, facetExpr, toOpsFacet(opts))
	if err != nil {
		return nil, Wrap(ErrSQL, "facet search", err)
	}
	out := make([]FacetCount, len(groups))
	for i, g := range groups {
		out[i] = FacetCount{Value: g.Value, Count: g.Count}
	}
	return out, nil
}

// Adapter returns the underlying storage adapter.
func (ix *Index) Adapter() storage.Adapter {
	return ix.adapter
}

// DB exposes the underlying database handle for advanced use.
func (ix *Index) DB() *sql.DB {
	return ix.db
}
