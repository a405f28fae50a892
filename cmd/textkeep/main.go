package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" for -driver sqlite3
	_ "modernc.org/sqlite"          // registers "sqlite", the default driver

	"github.com/textkeep/textkeep/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
