package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
)

// RunRemove deletes one document by id.
func RunRemove(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var id string
	fs.StringVar(&id, "id", "", "document id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "remove: -id is required")
		return 2
	}

	ctx := context.Background()
	ix, err := openIndex(ctx, g)
	if err != nil {
		return fail(log, "open index", err)
	}
	defer ix.Close()

	removed, err := ix.Remove(ctx, id)
	if err != nil {
		return fail(log, "remove document", err)
	}
	log.Debug().Str("id", id).Bool("removed", removed).Msg("remove")
	printJSON(g, map[string]any{"id": id, "removed": removed})
	return 0
}
