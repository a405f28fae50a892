package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/textkeep/textkeep/internal/cli/commands"
	"github.com/textkeep/textkeep/internal/cliopt"
	"github.com/textkeep/textkeep/internal/logger"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	// The config file and environment sit under the flags, so the
	// config path is pulled out before flag parsing and the flags are
	// bound over the loaded values.
	g, err := cliopt.Load(configPathArg(argv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	globalFS := flag.NewFlagSet("textkeep", flag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	var configPath string
	globalFS.StringVar(&configPath, "config", "", "path to YAML config file")
	cliopt.BindGlobalFlags(globalFS, &g)

	if err := globalFS.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	log := logger.New(logger.Config{Level: g.LogLevel, Pretty: g.Pretty})

	args := globalFS.Args()
	if len(args) == 0 {
		PrintRootHelp(os.Stdout)
		return 0
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		PrintRootHelp(os.Stdout)
		return 0
	case "index":
		return commands.RunIndex(g, log, rest)
	case "add":
		return commands.RunAdd(g, log, rest)
	case "remove":
		return commands.RunRemove(g, log, rest)
	case "update":
		return commands.RunUpdate(g, log, rest)
	case "search":
		return commands.RunSearch(g, log, rest)
	case "count":
		return commands.RunCount(g, log, rest)
	case "facet":
		return commands.RunFacet(g, log, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		PrintRootHelp(os.Stderr)
		return 2
	}
}

func configPathArg(argv []string) string {
	for i, a := range argv {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(argv) {
				return argv[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}
