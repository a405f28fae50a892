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

// RunIndex handles `index create` and `index schema`.
func RunIndex(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: textkeep index <create|schema>")
		return 2
	}
	ctx := context.Background()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("index create", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		var fieldList string
		fs.StringVar(&fieldList, "fields", "", "comma-separated indexed field names")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fieldList == "" {
			fmt.Fprintln(os.Stderr, "index create: -fields is required")
			return 2
		}

		adapter, err := resolveAdapter(g)
		if err != nil {
			return fail(log, "resolve backend", err)
		}
		opts := textkeep.DefaultOptions()
		opts.Tokenizer = g.Tokenizer

		fields := strings.Split(fieldList, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		ix, err := textkeep.Create(ctx, adapter, fields, opts)
		if err != nil {
			return fail(log, "create index", err)
		}
		defer ix.Close()

		log.Info().Strs("fields", ix.Schema().Indexed()).Msg("index ready")
		printJSON(g, map[string]any{"fields": ix.Schema().Fields})
		return 0

	case "schema":
		ix, err := openIndex(ctx, g)
		if err != nil {
			return fail(log, "open index", err)
		}
		defer ix.Close()
		printJSON(g, map[string]any{
			"fields":  ix.Schema().Fields,
			"indexed": ix.Schema().Indexed(),
		})
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown index subcommand: %s\n", args[0])
		return 2
	}
}
