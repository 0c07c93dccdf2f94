// Package discovery enumerates candidate font files under a set of
// filesystem roots, per spec.md §4.2.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fontlaborg/typg/internal/typgerr"
)

// fontExtensions are the file extensions (without the leading dot,
// lower-cased) recognized as font containers.
var fontExtensions = map[string]bool{
	"ttf": true,
	"otf": true,
	"ttc": true,
	"otc": true,
}

// Options configures a walk.
type Options struct {
	// FollowSymlinks makes the walk traverse symbolic links, both to
	// directories (recursing into them) and to files (including them if
	// they resolve to a regular font file). Off by default to avoid
	// infinite loops on cyclic link structures.
	FollowSymlinks bool
}

// Walk enumerates every regular file under any of roots whose extension
// matches a known font container format, in traversal order; the caller
// is responsible for any further sorting. It fails with a
// typgerr.RootMissing error if any root does not exist, and surfaces
// unreadable subdirectories as an error rather than skipping them
// silently, per spec.md §4.2's failure policy.
func Walk(roots []string, opts Options) ([]string, error) {
	w := &walker{opts: opts, visited: map[string]bool{}}

	var found []string
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			return nil, typgerr.Wrap(typgerr.RootMissing, err, "root path does not exist").WithPath(root)
		}
		matches, err := w.walkOne(root)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	return found, nil
}

type walker struct {
	opts    Options
	visited map[string]bool // absolute paths already descended into
}

func (w *walker) walkOne(root string) ([]string, error) {
	var found []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return typgerr.Wrap(typgerr.RootMissing, err, "walking directory").WithPath(path)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				return nil
			}
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil // broken symlink: ignore, not fatal
			}
			if w.visited[resolved] {
				return nil
			}
			w.visited[resolved] = true

			info, err := os.Stat(resolved)
			if err != nil {
				return nil
			}
			if info.IsDir() {
				sub, err := w.walkOne(resolved)
				if err != nil {
					return err
				}
				found = append(found, sub...)
				return nil
			}
			if info.Mode().IsRegular() && isFontFile(path) {
				found = append(found, path)
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if isFontFile(path) {
			found = append(found, path)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}
	return found, nil
}

func isFontFile(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return fontExtensions[ext]
}
