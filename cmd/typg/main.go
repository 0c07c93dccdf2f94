// Command typg is the CLI entry point for the font discovery engine: find,
// cache {add,list,find,clean,info}, and serve, per spec.md §6.
package main

import (
	"os"

	"github.com/fontlaborg/typg/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
