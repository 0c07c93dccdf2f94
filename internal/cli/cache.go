package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fontlaborg/typg/discovery"
	"github.com/fontlaborg/typg/fontindex"
	"github.com/fontlaborg/typg/internal/envdefaults"
	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
)

func resolveIndexDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir, ok := envdefaults.IndexDir(); ok {
		return dir
	}
	return ".typg-index"
}

func newCacheCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "manage the persistent index",
	}
	cmd.AddCommand(newCacheAddCommand(stdout))
	cmd.AddCommand(newCacheListCommand(stdout))
	cmd.AddCommand(newCacheFindCommand(stdout))
	cmd.AddCommand(newCacheCleanCommand(stdout))
	cmd.AddCommand(newCacheInfoCommand(stdout))
	return cmd
}

func indexDirFlag(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVar(dir, "index-dir", "", "persistent index directory (default: $TYPG_INDEX_DIR or .typg-index)")
}

func newCacheAddCommand(stdout io.Writer) *cobra.Command {
	var indexDir string
	var followSymlinks bool

	cmd := &cobra.Command{
		Use:   "add [roots...]",
		Short: "incrementally index the given filesystem roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := defaultRoots(args)
			idx, err := fontindex.Open(resolveIndexDir(indexDir))
			if err != nil {
				return err
			}
			defer idx.Close()

			paths, err := discovery.Walk(roots, discovery.Options{FollowSymlinks: followSymlinks})
			if err != nil {
				return err
			}

			w, err := idx.BeginWrite()
			if err != nil {
				return err
			}
			added := 0
			for _, path := range paths {
				info, err := os.Stat(path)
				if err != nil {
					_ = w.Abort()
					return typgerr.Wrap(typgerr.IndexIO, err, "statting font file").WithPath(path)
				}
				needs, err := w.NeedsUpdate(path, info.ModTime())
				if err != nil {
					_ = w.Abort()
					return err
				}
				if !needs {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					_ = w.Abort()
					return typgerr.Wrap(typgerr.ParseError, err, "reading font file").WithPath(path)
				}
				faces, err := sfntmeta.Extract(path, data)
				if err != nil {
					_ = w.Abort()
					return err
				}
				for _, face := range faces {
					if _, err := w.AddFont(path, face.Source.TTCIndex, info.ModTime(), face.Metadata); err != nil {
						_ = w.Abort()
						return err
					}
					added++
				}
			}
			if err := w.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "indexed %d face(s) from %d file(s)\n", added, len(paths))
			return nil
		},
	}
	indexDirFlag(cmd, &indexDir)
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow directory symlinks while walking")
	return cmd
}

func newCacheListCommand(stdout io.Writer) *cobra.Command {
	var indexDir string
	var of outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list every face in the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor(&of)
			idx, err := fontindex.Open(resolveIndexDir(indexDir))
			if err != nil {
				return err
			}
			defer idx.Close()
			r, err := idx.BeginRead()
			if err != nil {
				return err
			}
			defer r.Close()
			matches, err := r.ListAll()
			if err != nil {
				return err
			}
			return emit(stdout, matches, &of)
		},
	}
	indexDirFlag(cmd, &indexDir)
	of.register(cmd)
	return cmd
}

func newCacheFindCommand(stdout io.Writer) *cobra.Command {
	var indexDir string
	var qf queryFlags
	var of outputFlags

	cmd := &cobra.Command{
		Use:   "find",
		Short: "query the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyColor(&of)
			q, err := qf.build()
			if err != nil {
				return err
			}
			idx, err := fontindex.Open(resolveIndexDir(indexDir))
			if err != nil {
				return err
			}
			defer idx.Close()
			r, err := idx.BeginRead()
			if err != nil {
				return err
			}
			defer r.Close()
			matches, err := r.Find(q)
			if err != nil {
				return err
			}
			return emit(stdout, matches, &of)
		},
	}
	indexDirFlag(cmd, &indexDir)
	qf.register(cmd)
	of.register(cmd)
	return cmd
}

func newCacheCleanCommand(stdout io.Writer) *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "remove index entries whose backing file no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := fontindex.Open(resolveIndexDir(indexDir))
			if err != nil {
				return err
			}
			defer idx.Close()
			w, err := idx.BeginWrite()
			if err != nil {
				return err
			}
			before, after, err := w.PruneMissing()
			if err != nil {
				_ = w.Abort()
				return err
			}
			if err := w.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "pruned %d face(s): %d -> %d\n", before-after, before, after)
			return nil
		},
	}
	indexDirFlag(cmd, &indexDir)
	return cmd
}

func newCacheInfoCommand(stdout io.Writer) *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "report the index's location and face count",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveIndexDir(indexDir)
			idx, err := fontindex.Open(dir)
			if err != nil {
				return err
			}
			defer idx.Close()
			n, err := idx.Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "index: %s\nfaces: %d\n", dir, n)
			return nil
		},
	}
	indexDirFlag(cmd, &indexDir)
	return cmd
}
