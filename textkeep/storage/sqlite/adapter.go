package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// Tuning holds the pragmas applied to every new connection. The
// defaults trade durability for write throughput: an in-memory journal
// and synchronous=OFF mean a crash during or shortly after a write can
// lose committed data. Callers that need stronger guarantees override
// these before Connect.
type Tuning struct {
	JournalMode   string
	Synchronous   string
	PageSize      int
	BusyTimeoutMS int
}

func DefaultTuning() Tuning {
	return Tuning{
		JournalMode:   "MEMORY",
		Synchronous:   "OFF",
		PageSize:      4096,
		BusyTimeoutMS: 5000,
	}
}

type Adapter struct {
	Path       string
	DriverName string
	Tuning     Tuning
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: "sqlite", Tuning: DefaultTuning()}
}

// NewWithDriver selects an alternative registered driver, e.g.
// "sqlite3" for mattn/go-sqlite3.
func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver, Tuning: DefaultTuning()}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendSQLite }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

var pragmaValueRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.Path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per-connection; pin the pool to one connection so
	// they hold, which also matches the single-writer regime.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := a.applyTuning(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) applyTuning(ctx context.Context, db *sql.DB) error {
	t := a.Tuning
	if t.JournalMode != "" && !pragmaValueRe.MatchString(t.JournalMode) {
		return fmt.Errorf("invalid journal_mode %q", t.JournalMode)
	}
	if t.Synchronous != "" && !pragmaValueRe.MatchString(t.Synchronous) {
		return fmt.Errorf("invalid synchronous %q", t.Synchronous)
	}
	if t.PageSize > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA page_size=%d", t.PageSize)); err != nil {
			return err
		}
	}
	if t.JournalMode != "" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode="+t.JournalMode); err != nil {
			return err
		}
	}
	if t.Synchronous != "" {
		if _, err := db.ExecContext(ctx, "PRAGMA synchronous="+t.Synchronous); err != nil {
			return err
		}
	}
	if t.BusyTimeoutMS > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", t.BusyTimeoutMS)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Close() error { return nil }

var tokenizerRe = regexp.MustCompile(`^[A-Za-z0-9_ ']+$`)

func (a *Adapter) CreateTable(ctx context.Context, db *sql.DB, fields []string, tokenizer string) error {
	if tokenizer == "" {
		tokenizer = "unicode61"
	}
	if !tokenizerRe.MatchString(tokenizer) {
		return fmt.Errorf("invalid tokenizer %q", tokenizer)
	}
	cols := make([]string, 0, len(fields)+2)
	cols = append(cols, fields...)
	cols = append(cols, storage.ColID+" UNINDEXED", storage.ColPayload+" UNINDEXED")
	ddl := fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(%s, tokenize = '%s')",
		storage.Table,
		strings.Join(cols, ", "),
		strings.ReplaceAll(tokenizer, "'", "''"),
	)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create fts table: %w", err)
	}
	return nil
}

func (a *Adapter) ResolveSchema(ctx context.Context, db *sql.DB) ([]string, bool, error) {
	// pragma_table_info works for fts5 virtual tables and returns zero
	// rows for a missing table.
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') ORDER BY cid", storage.Table))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, false, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(cols) == 0 {
		return nil, false, nil
	}
	return cols, true, nil
}

func (a *Adapter) CompileMatch(b *sqlbuilder.Builder, clauses []storage.MatchClause) (string, string) {
	if len(clauses) == 0 {
		return "", ""
	}
	match := buildMatchString(clauses)
	cond := fmt.Sprintf("%s MATCH %s", storage.Table, b.Arg(match))
	// fts5 exposes bm25 relevance through the rank column; ascending
	// order is best-first.
	return cond, "rank"
}
