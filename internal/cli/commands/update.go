package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
)

// RunUpdate replaces one document by id. Replacement is full-document:
// the payload and every indexed column are rewritten together.
func RunUpdate(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		id      string
		docJSON string
	)
	fs.StringVar(&id, "id", "", "document id")
	fs.StringVar(&docJSON, "json", "", "replacement document JSON (stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "update: -id is required")
		return 2
	}

	ctx := context.Background()
	ix, err := openIndex(ctx, g)
	if err != nil {
		return fail(log, "open index", err)
	}
	defer ix.Close()

	doc, err := readDoc(docJSON)
	if err != nil {
		return fail(log, "read document", err)
	}
	if err := ix.Update(ctx, id, doc); err != nil {
		return fail(log, "update document", err)
	}
	log.Debug().Str("id", id).Msg("document replaced")
	printJSON(g, map[string]any{"id": id})
	return 0
}
