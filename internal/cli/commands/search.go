package commands

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
	"github.com/textkeep/textkeep/textkeep"
)

// RunSearch executes a full-text query.
func RunSearch(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		fields  string
		limit   int
		offset  int
		filter  string
		payload bool
		near    int
	)
	fs.StringVar(&fields, "fields", "", "comma-separated projection (default all columns)")
	fs.IntVar(&limit, "limit", textkeep.DefaultSearchLimit, "page size")
	fs.IntVar(&offset, "offset", 0, "page offset")
	fs.StringVar(&filter, "filter", "", "raw engine predicate ANDed with the match expression")
	fs.BoolVar(&payload, "payload", false, "merge all payload keys onto each result")
	fs.IntVar(&near, "near", 0, "proximity token distance (0 = exact)")
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

	opts := textkeep.SearchOptions{
		Limit:   limit,
		Offset:  offset,
		Filter:  filter,
		Payload: payload,
		Near:    near,
	}
	if fields != "" {
		for _, f := range strings.Split(fields, ",") {
			opts.Fields = append(opts.Fields, strings.TrimSpace(f))
		}
	}

	docs, err := ix.Search(ctx, queryStr, opts)
	if err != nil {
		return fail(log, "search", err)
	}
	log.Debug().Str("query", queryStr).Int("results", len(docs)).Msg("search")
	printJSON(g, docs)
	return 0
}
