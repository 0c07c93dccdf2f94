// Package cli implements the typg command-line façade: subcommands
// find, cache {add,list,find,clean,info}, and serve, per spec.md §6's
// CLI surface. All domain logic is delegated to search, fontindex, and
// query; this package only parses flags, formats output, and maps
// errors to exit codes.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fontlaborg/typg/internal/envdefaults"
	"github.com/fontlaborg/typg/internal/output"
	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
)

// Execute runs the typg CLI and returns the process exit code: 0 on
// success, 1 on any error surfaced from the core, per spec.md §6.
func Execute(args []string, stdout, stderr io.Writer) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: false}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "typg",
		Short:         "high-throughput font discovery engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newFindCommand(stdout))
	root.AddCommand(newCacheCommand(stdout))
	root.AddCommand(newServeCommand(logger))

	if err := root.Execute(); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

func reportError(stderr io.Writer, err error) {
	var te *typgerr.Error
	if errors.As(err, &te) {
		fmt.Fprintln(stderr, output.FormatError(te.Error()))
		return
	}
	fmt.Fprintln(stderr, output.FormatError(err.Error()))
}

func defaultRoots(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return envdefaults.FontDirs()
}

func emit(w io.Writer, matches []sfntmeta.FaceMatch, of *outputFlags) error {
	switch {
	case of.asCount:
		return output.WriteCount(w, len(matches))
	case of.asJSON:
		return output.WriteJSON(w, matches)
	case of.asNDJSON:
		return output.WriteNDJSON(w, matches)
	case of.asPaths:
		return output.WritePaths(w, matches)
	default:
		return output.WriteColumns(w, matches)
	}
}

func applyColor(of *outputFlags) {
	output.ParseColorMode(of.color).Apply()
}
