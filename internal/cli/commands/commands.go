// Package commands implements the CLI subcommands. Each Run* function
// parses its own flags, opens the index, and prints JSON results.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
	"github.com/textkeep/textkeep/textkeep"
	"github.com/textkeep/textkeep/textkeep/storage"
	"github.com/textkeep/textkeep/textkeep/storage/postgres"
	"github.com/textkeep/textkeep/textkeep/storage/sqlite"
)

func resolveAdapter(g cliopt.GlobalOptions) (storage.Adapter, error) {
	switch g.Backend {
	case "sqlite", "":
		return sqlite.NewWithDriver(g.IndexPath, g.Driver), nil
	case "postgres":
		if g.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend needs -pg-dsn")
		}
		return postgres.New(g.PostgresDSN, g.PgSchema), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", g.Backend)
	}
}

func openIndex(ctx context.Context, g cliopt.GlobalOptions) (*textkeep.Index, error) {
	adapter, err := resolveAdapter(g)
	if err != nil {
		return nil, err
	}
	opts := textkeep.DefaultOptions()
	opts.Tokenizer = g.Tokenizer
	return textkeep.Open(ctx, adapter, opts)
}

func printJSON(g cliopt.GlobalOptions, v any) {
	enc := json.NewEncoder(os.Stdout)
	if g.Format != "compact" {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func fail(log zerolog.Logger, msg string, err error) int {
	log.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return 1
}
