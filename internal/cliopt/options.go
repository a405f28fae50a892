// Package cliopt holds the global CLI options and their config-file,
// environment, and flag binding. Precedence: defaults, then config
// file, then TEXTKEEP_* environment, then flags.
//
// NOTE: separate package so the command router and per-command code
// can both import it without a cycle.
package cliopt

import (
	"flag"
	"os"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

// GlobalOptions are parsed once at the CLI root and passed to
// subcommands.
type GlobalOptions struct {
	Backend     string
	Driver      string // sqlite driver name: sqlite (modernc) or sqlite3 (mattn)
	IndexPath   string
	PostgresDSN string
	PgSchema    string
	Tokenizer   string

	Format   string
	LogLevel string
	Pretty   bool
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:   "sqlite",
		Driver:    "sqlite",
		IndexPath: "textkeep.db",
		Tokenizer: "unicode61",
		Format:    "json",
		LogLevel:  "info",
	}
}

// Load layers an optional YAML config file and the environment onto
// the defaults. A missing file at the default location is fine; an
// explicitly named file must exist.
func Load(configPath string) (GlobalOptions, error) {
	g := DefaultGlobalOptions()

	k := koanf.New(".")
	explicit := configPath != ""
	if configPath == "" {
		configPath = "textkeep.yaml"
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return g, err
		}
	} else if explicit {
		return g, err
	}

	if err := k.Load(env.Provider("TEXTKEEP_", ".", envKey), nil); err != nil {
		return g, err
	}

	apply := func(key string, dst *string) {
		if v := k.String(key); v != "" {
			*dst = v
		}
	}
	apply("backend", &g.Backend)
	apply("driver", &g.Driver)
	apply("index_path", &g.IndexPath)
	apply("pg_dsn", &g.PostgresDSN)
	apply("pg_schema", &g.PgSchema)
	apply("tokenizer", &g.Tokenizer)
	apply("format", &g.Format)
	apply("log_level", &g.LogLevel)
	if k.Exists("pretty") {
		g.Pretty = k.Bool("pretty")
	}
	return g, nil
}

func envKey(s string) string {
	// TEXTKEEP_INDEX_PATH -> index_path
	out := make([]byte, 0, len(s))
	for i := len("TEXTKEEP_"); i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")
	fs.StringVar(&g.Driver, "driver", g.Driver, "sqlite driver: sqlite (pure Go) or sqlite3 (cgo)")
	fs.StringVar(&g.IndexPath, "index", g.IndexPath, "sqlite index file path")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PgSchema, "pg-schema", g.PgSchema, "postgres schema name")
	fs.StringVar(&g.Tokenizer, "tokenizer", g.Tokenizer, "fts tokenizer used at index creation")
	fs.StringVar(&g.Format, "format", g.Format, "output format: json|compact")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&g.Pretty, "pretty", g.Pretty, "pretty console logging")
}
