package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// Execer is the subset of *sql.DB / *sql.Tx delete needs, so the safe
// write path can reuse it inside a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DeleteByID removes the row matching id, if any. Idempotent: deleting
// a missing id is not an error.
func DeleteByID(ctx context.Context, ex Execer, style sqlbuilder.PlaceholderStyle, id any) (bool, error) {
	b := sqlbuilder.New(style)
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", storage.Table, storage.ColID, b.Arg(id))
	res, err := ex.ExecContext(ctx, stmt, b.Args()...)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report affected rows; the delete itself
		// succeeded
		return false, nil
	}
	return n > 0, nil
}
