// Package search implements the live query path: walk roots, extract
// metadata in parallel, apply the matcher, and emit a deterministically
// sorted result list, per spec.md §4.5.
package search

import (
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/fontlaborg/typg/discovery"
	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/query"
	"github.com/fontlaborg/typg/sfntmeta"
)

// Options configures a live search, per spec.md §4.5's Configuration
// note: Jobs == 0 is rejected, nil means "let the system decide".
type Options struct {
	FollowSymlinks bool
	Jobs           *int
}

// Search walks roots, extracts every candidate face in parallel, matches
// each against q, and returns the matches sorted by (path, ttc_index).
// It fails with RootMissing, ParseError, or InvalidArgument (for a
// zero Jobs value), per spec.md §4.5.
func Search(roots []string, q query.Query, opts Options) ([]sfntmeta.FaceMatch, error) {
	jobs, err := resolveJobs(opts.Jobs)
	if err != nil {
		return nil, err
	}

	paths, err := discovery.Walk(roots, discovery.Options{FollowSymlinks: opts.FollowSymlinks})
	if err != nil {
		return nil, err
	}

	extracted, err := extractAll(paths, jobs)
	if err != nil {
		return nil, err
	}

	var matches []sfntmeta.FaceMatch
	for _, fm := range extracted {
		if q.Matches(fm.Metadata) {
			matches = append(matches, fm)
		}
	}
	sortMatches(matches)
	return matches, nil
}

// FilterCached applies q to an already-extracted slice of faces without
// touching the filesystem, supporting the JSON-cache collaborator
// workflow described in spec.md §6. It is the Go counterpart of
// filter_cached in original_source/typg-core/src/search.rs.
func FilterCached(entries []sfntmeta.FaceMatch, q query.Query) []sfntmeta.FaceMatch {
	var matches []sfntmeta.FaceMatch
	for _, e := range entries {
		if q.Matches(e.Metadata) {
			matches = append(matches, e)
		}
	}
	sortMatches(matches)
	return matches
}

func resolveJobs(jobs *int) (int, error) {
	if jobs == nil {
		return runtime.GOMAXPROCS(0), nil
	}
	if *jobs == 0 {
		return 0, typgerr.New(typgerr.InvalidArgument, "jobs must be a positive integer, got 0")
	}
	return *jobs, nil
}

// extractAll runs Extract over paths using a bounded worker pool of size
// jobs, one task per file (collection faces are expanded within that
// task), and reduces into a single slice. Workers send their results over
// a channel and only the collecting goroutine appends to the output
// slice, matching the teacher's "parallel scan, reduction owns the output
// vector" pattern (see DESIGN.md).
func extractAll(paths []string, jobs int) ([]sfntmeta.FaceMatch, error) {
	type result struct {
		matches []sfntmeta.FaceMatch
		err     error
	}

	tasks := make(chan string)
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				data, err := os.ReadFile(path)
				if err != nil {
					results <- result{err: typgerr.Wrap(typgerr.ParseError, err, "reading font file").WithPath(path)}
					continue
				}
				faces, err := sfntmeta.Extract(path, data)
				if err != nil {
					results <- result{err: err}
					continue
				}
				results <- result{matches: faces}
			}
		}()
	}

	go func() {
		for _, p := range paths {
			tasks <- p
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []sfntmeta.FaceMatch
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out = append(out, r.matches...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func sortMatches(matches []sfntmeta.FaceMatch) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i].Source, matches[j].Source
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		ai, bi := ttcOrdinal(a.TTCIndex), ttcOrdinal(b.TTCIndex)
		return ai < bi
	})
}

// ttcOrdinal maps a possibly-nil TTC index to a comparable ordinal, with
// "no index" sorting before any indexed face of the same path.
func ttcOrdinal(idx *uint32) int64 {
	if idx == nil {
		return -1
	}
	return int64(*idx)
}
