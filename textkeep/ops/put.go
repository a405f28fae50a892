package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// ErrMissingID marks a document submitted to a write batch without an
// "id" key. The caller aborts the whole batch on it.
var ErrMissingID = errors.New("document missing 'id'")

// Prepared holds one document ready for insertion: the column values
// in schema order plus the canonical JSON snapshot of the original
// document.
type Prepared struct {
	ID      any
	Payload []byte
	Cols    []string
	Vals    []any
}

// Prepare derives the indexed column values for doc. fields is the
// indexed portion of the schema (reserved columns excluded). Every
// present value goes through Stringify so the match columns hold the
// same text a query term is compared against (false becomes "false",
// 0 becomes "0"); absent keys bind NULL. The payload is serialized
// from the document exactly as supplied, including keys outside the
// schema, so native types survive reconstruction.
func Prepare(fields []string, doc map[string]any) (*Prepared, error) {
	id, ok := doc[storage.ColID]
	if !ok || id == nil {
		return nil, ErrMissingID
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	prep := &Prepared{
		ID:      id,
		Payload: payload,
		Cols:    make([]string, 0, len(fields)+2),
		Vals:    make([]any, 0, len(fields)+2),
	}
	for _, f := range fields {
		v, ok := doc[f]
		prep.Cols = append(prep.Cols, f)
		if !ok || v == nil {
			prep.Vals = append(prep.Vals, nil)
			continue
		}
		prep.Vals = append(prep.Vals, Stringify(v))
	}
	prep.Cols = append(prep.Cols, storage.ColID, storage.ColPayload)
	prep.Vals = append(prep.Vals, id, string(payload))
	return prep, nil
}

// ExecuteInsert inserts one prepared document inside tx.
func ExecuteInsert(ctx context.Context, tx *sql.Tx, style sqlbuilder.PlaceholderStyle, prep *Prepared) error {
	b := sqlbuilder.New(style)
	placeholders := make([]string, 0, len(prep.Vals))
	for _, v := range prep.Vals {
		placeholders = append(placeholders, b.Arg(v))
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		storage.Table,
		strings.Join(prep.Cols, ", "),
		strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}
