package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fontlaborg/typg/search"
)

func newFindCommand(stdout io.Writer) *cobra.Command {
	var qf queryFlags
	var of outputFlags
	var followSymlinks bool
	var jobs int

	cmd := &cobra.Command{
		Use:   "find [roots...]",
		Short: "search filesystem roots for matching faces",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor(&of)
			q, err := qf.build()
			if err != nil {
				return err
			}
			roots := defaultRoots(args)
			opts := search.Options{FollowSymlinks: followSymlinks}
			if cmd.Flags().Changed("jobs") {
				opts.Jobs = &jobs
			}
			matches, err := search.Search(roots, q, opts)
			if err != nil {
				return err
			}
			return emit(stdout, matches, &of)
		},
	}

	qf.register(cmd)
	of.register(cmd)
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow directory symlinks while walking")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "parallel extraction worker count (default: GOMAXPROCS)")

	return cmd
}
