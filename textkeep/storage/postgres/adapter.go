package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/sqlbuilder"
)

// Adapter stores documents in a plain table with one TEXT column per
// field and matches them through expression GIN indexes over
// to_tsvector. The original column text is kept as-is so search
// results can be reconstructed from it.
type Adapter struct {
	DSN    string
	Schema string // optional dedicated schema, pinned via search_path
	// TextConfig is the text search configuration used for both the
	// expression indexes and query-time matching.
	TextConfig string
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema, TextConfig: "simple"}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderDollar
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// validated against identRe before use; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) config() string {
	if a.TextConfig != "" && identRe.MatchString(a.TextConfig) {
		return a.TextConfig
	}
	return "simple"
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	if a.Schema != "" {
		if !identRe.MatchString(a.Schema) {
			return nil, fmt.Errorf("invalid postgres schema name %q", a.Schema)
		}
		cfg0, err := pgx.ParseConfig(a.DSN)
		if err != nil {
			return nil, err
		}
		db0 := stdlib.OpenDB(*cfg0)
		if err := db0.PingContext(ctx); err != nil {
			_ = db0.Close()
			return nil, err
		}
		if _, err := db0.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema)); err != nil {
			_ = db0.Close()
			return nil, err
		}
		_ = db0.Close()
	}

	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if a.Schema != "" {
		if cfg.RuntimeParams == nil {
			cfg.RuntimeParams = make(map[string]string)
		}
		cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", quoteIdent(a.Schema))
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error { return nil }

func (a *Adapter) CreateTable(ctx context.Context, db *sql.DB, fields []string, tokenizer string) error {
	cols := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		cols = append(cols, quoteIdent(f)+" TEXT")
	}
	cols = append(cols, quoteIdent(storage.ColID)+" TEXT", quoteIdent(storage.ColPayload)+" TEXT")

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", storage.Table, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	cfg := a.config()
	for _, f := range fields {
		idx := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (to_tsvector('%s', coalesce(%s, '')))",
			quoteIdent(storage.Table+"_"+f+"_fts"), storage.Table, cfg, quoteIdent(f))
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create gin index for %s: %w", f, err)
		}
	}
	return nil
}

func (a *Adapter) ResolveSchema(ctx context.Context, db *sql.DB) ([]string, bool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_name = $1 AND table_schema = current_schema()
		 ORDER BY ordinal_position`, storage.Table)
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
	cfg := a.config()
	conds := make([]string, 0, len(clauses))
	ranks := make([]string, 0, len(clauses))
	for _, c := range clauses {
		fn := "plainto_tsquery"
		if c.Near > 0 {
			// closest native analogue of a bounded-distance phrase
			fn = "phraseto_tsquery"
		}
		vec := fmt.Sprintf("to_tsvector('%s', coalesce(%s, ''))", cfg, quoteIdent(c.Field))
		// one placeholder per clause, referenced by both the condition
		// and the rank expression, so callers that drop the order-by
		// still bind every argument
		ph := b.Arg(c.Value)
		tsq := fmt.Sprintf("%s('%s', %s)", fn, cfg, ph)
		conds = append(conds, fmt.Sprintf("%s @@ %s", vec, tsq))
		ranks = append(ranks, fmt.Sprintf("ts_rank(%s, %s)", vec, tsq))
	}
	cond := "(" + strings.Join(conds, " OR ") + ")"
	orderBy := "GREATEST(" + strings.Join(ranks, ", ") + ") DESC"
	return cond, orderBy
}
