package commands

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
)

// RunCount counts matching documents.
func RunCount(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var filter string
	fs.StringVar(&filter, "filter", "", "raw engine predicate ANDed with the match expression")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	queryStr := strings.Join(fs.Args(), " ")

	ctx := context.Background()
	ix, err := openIndex(ctx, g)
	if err != nil {
		return fail(log, "open index", err)
	}
	defer ix.Close()

	n, err := ix.Count(ctx, queryStr, filter)
	if err != nil {
		return fail(log, "count", err)
	}
	printJSON(g, map[string]any{"count": n})
	return 0
}
