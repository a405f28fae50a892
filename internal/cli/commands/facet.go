package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
	"github.com/textkeep/textkeep/textkeep"
)

// RunFacet aggregates matching rows by a field expression.
func RunFacet(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("facet", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		by     string
		limit  int
		offset int
		filter string
		near   int
	)
	fs.StringVar(&by, "by", "", "facet field or raw expression")
	fs.IntVar(&limit, "limit", 0, "max groups (0 = all)")
	fs.IntVar(&offset, "offset", 0, "group offset (with -limit)")
	fs.StringVar(&filter, "filter", "", "raw engine predicate ANDed with the match expression")
	fs.IntVar(&near, "near", 0, "proximity token distance (0 = exact)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if by == "" {
		fmt.Fprintln(os.Stderr, "facet: -by is required")
		return 2
	}
	queryStr := strings.Join(fs.Args(), " ")

	ctx := context.Background()
	ix, err := openIndex(ctx, g)
	if err != nil {
		return fail(log, "open index", err)
	}
	defer ix.Close()

	groups, err := ix.FacetSearch(ctx, queryStr, by, textkeep.FacetOptions{
		Limit:  limit,
		Offset: offset,
		Filter: filter,
		Near:   near,
	})
	if err != nil {
		return fail(log, "facet search", err)
	}
	out := make([]map[string]any, 0, len(groups))
	for _, grp := range groups {
		out = append(out, map[string]any{"value": grp.Value, "count": grp.Count})
	}
	printJSON(g, out)
	return 0
}
