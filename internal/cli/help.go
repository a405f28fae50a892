package cli

import (
	"fmt"
	"io"
)

// PrintRootHelp writes the top-level usage text.
func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, "textkeep - document indexing and full-text search over an embedded SQL engine")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  textkeep [global flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  index create --fields f1,f2,...    create the index table (idempotent)")
	fmt.Fprintln(w, "  index schema                       print the resolved field schema")
	fmt.Fprintln(w, "  add [--id <id>] [--json <doc>]     index one document (JSON from --json or stdin)")
	fmt.Fprintln(w, "  add --batch                        index JSON-lines documents from stdin in one transaction")
	fmt.Fprintln(w, "  remove --id <id>                   delete one document")
	fmt.Fprintln(w, "  update --id <id> [--json <doc>]    replace one document")
	fmt.Fprintln(w, "  search <query>                     full-text search")
	fmt.Fprintln(w, "  count [<query>]                    count matching documents")
	fmt.Fprintln(w, "  facet --by <expr> [<query>]        facet aggregation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  -config <file>      YAML config file (default textkeep.yaml if present)")
	fmt.Fprintln(w, "  -backend <name>     sqlite|postgres (default sqlite)")
	fmt.Fprintln(w, "  -driver <name>      sqlite driver: sqlite|sqlite3")
	fmt.Fprintln(w, "  -index <path>       sqlite index file (default textkeep.db)")
	fmt.Fprintln(w, "  -pg-dsn <dsn>       postgres DSN")
	fmt.Fprintln(w, "  -pg-schema <name>   postgres schema")
	fmt.Fprintln(w, "  -tokenizer <name>   fts tokenizer at creation (default unicode61)")
	fmt.Fprintln(w, "  -format <fmt>       json|compact")
	fmt.Fprintln(w, "  -log-level <lvl>    debug|info|warn|error")
	fmt.Fprintln(w, "  -pretty             pretty console logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: TEXTKEEP_BACKEND, TEXTKEEP_INDEX_PATH, TEXTKEEP_PG_DSN, ...")
}
