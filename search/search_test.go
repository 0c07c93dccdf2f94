package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fontlaborg/typg/query"
	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

func TestResolveJobsRejectsZero(t *testing.T) {
	zero := 0
	if _, err := resolveJobs(&zero); err == nil {
		t.Fatalf("expected InvalidArgument for jobs=0")
	}
}

func TestResolveJobsDefaultsToGOMAXPROCS(t *testing.T) {
	jobs, err := resolveJobs(nil)
	if err != nil {
		t.Fatalf("resolveJobs(nil): %v", err)
	}
	if jobs < 1 {
		t.Fatalf("expected at least 1 job, got %d", jobs)
	}
}

func TestSearchMissingRoot(t *testing.T) {
	_, err := Search([]string{"/does/not/exist"}, query.New(), Options{})
	if err == nil {
		t.Fatalf("expected RootMissing error")
	}
}

func TestSearchSkipsNonFonts(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	matches, err := Search([]string{tmp}, query.New(), Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches)
	}
}

func TestFilterCachedAppliesQuery(t *testing.T) {
	entries := []sfntmeta.FaceMatch{
		{
			Source:   sfntmeta.FaceSource{Path: "b.ttf"},
			Metadata: sfntmeta.FaceMetadata{FeatureTags: tag.NewSet(tag.MustParse("liga"))},
		},
		{
			Source:   sfntmeta.FaceSource{Path: "a.ttf"},
			Metadata: sfntmeta.FaceMetadata{FeatureTags: tag.NewSet(tag.MustParse("smcp"))},
		},
	}
	q := query.New().WithFeatures(tag.NewSet(tag.MustParse("smcp")))
	got := FilterCached(entries, q)
	if len(got) != 1 || got[0].Source.Path != "a.ttf" {
		t.Fatalf("FilterCached() = %v, want [a.ttf]", got)
	}
}

func TestSortMatchesOrdersByPathThenTTCIndex(t *testing.T) {
	idx0 := uint32(0)
	idx1 := uint32(1)
	matches := []sfntmeta.FaceMatch{
		{Source: sfntmeta.FaceSource{Path: "b.ttc", TTCIndex: &idx1}},
		{Source: sfntmeta.FaceSource{Path: "a.ttf"}},
		{Source: sfntmeta.FaceSource{Path: "b.ttc", TTCIndex: &idx0}},
	}
	sortMatches(matches)
	want := []string{"a.ttf", "b.ttc#0", "b.ttc#1"}
	for i, w := range want {
		if matches[i].Source.String() != w {
			t.Fatalf("sortMatches()[%d] = %s, want %s", i, matches[i].Source.String(), w)
		}
	}
}
