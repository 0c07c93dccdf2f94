package fontindex

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fontlaborg/typg/query"
	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndexOpenAndClose(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir)
	require.NoError(t, err)
	n, err := idx.Count()
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	n, err = reopened.Count()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestAddAndQueryFont(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	meta := sfntmeta.FaceMetadata{
		Names:       []string{"Example Sans"},
		FeatureTags: tag.NewSet(tag.MustParse("smcp"), tag.MustParse("liga")),
	}
	id, err := w.AddFont("/fonts/example.ttf", nil, time.Unix(1000, 0), meta)
	require.NoError(t, err)
	require.Equal(t, FontID(1), id)
	require.NoError(t, w.Commit())

	r, err := idx.BeginRead()
	require.NoError(t, err)
	defer r.Close()

	q := query.New().WithFeatures(tag.NewSet(tag.MustParse("smcp")))
	matches, err := r.Find(q)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "/fonts/example.ttf", matches[0].Source.Path)
	require.Equal(t, []string{"Example Sans"}, matches[0].Metadata.Names)
}

func TestIncrementalUpdate(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	needs, err := w.NeedsUpdate("/fonts/a.ttf", time.Unix(500, 0))
	require.NoError(t, err)
	require.True(t, needs)

	_, err = w.AddFont("/fonts/a.ttf", nil, time.Unix(500, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	w2, err := idx.BeginWrite()
	require.NoError(t, err)
	defer w2.Abort()
	needs, err = w2.NeedsUpdate("/fonts/a.ttf", time.Unix(500, 0))
	require.NoError(t, err)
	require.False(t, needs, "unchanged mtime should not need update")

	needs, err = w2.NeedsUpdate("/fonts/a.ttf", time.Unix(600, 0))
	require.NoError(t, err)
	require.True(t, needs, "changed mtime should need update")
}

func TestOverwriteClearsStaleBitmapEntries(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	_, err = w.AddFont("/fonts/a.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{
		FeatureTags: tag.NewSet(tag.MustParse("liga")),
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	w2, err := idx.BeginWrite()
	require.NoError(t, err)
	newID, err := w2.AddFont("/fonts/a.ttf", nil, time.Unix(2, 0), sfntmeta.FaceMetadata{
		FeatureTags: tag.NewSet(tag.MustParse("smcp")),
	})
	require.NoError(t, err)
	require.Equal(t, FontID(2), newID, "overwrite allocates a fresh id")
	require.NoError(t, w2.Commit())

	r, err := idx.BeginRead()
	require.NoError(t, err)
	defer r.Close()

	ligaMatches, err := r.Find(query.New().WithFeatures(tag.NewSet(tag.MustParse("liga"))))
	require.NoError(t, err)
	require.Empty(t, ligaMatches, "stale liga bitmap entry must be cleared on overwrite")

	smcpMatches, err := r.Find(query.New().WithFeatures(tag.NewSet(tag.MustParse("smcp"))))
	require.NoError(t, err)
	require.Len(t, smcpMatches, 1)
}

func TestBitmapIntersection(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	_, err = w.AddFont("/fonts/x.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{
		FeatureTags: tag.NewSet(tag.MustParse("smcp"), tag.MustParse("liga")),
	})
	require.NoError(t, err)
	_, err = w.AddFont("/fonts/y.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{
		FeatureTags: tag.NewSet(tag.MustParse("smcp")),
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := idx.BeginRead()
	require.NoError(t, err)
	defer r.Close()

	both, err := r.Find(query.New().WithFeatures(tag.NewSet(tag.MustParse("smcp"))))
	require.NoError(t, err)
	require.Len(t, both, 2)

	onlyX, err := r.Find(query.New().WithFeatures(tag.NewSet(tag.MustParse("smcp"), tag.MustParse("liga"))))
	require.NoError(t, err)
	require.Len(t, onlyX, 1)
	require.Equal(t, "/fonts/x.ttf", onlyX[0].Source.Path)
}

func TestCmapBitmap(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	_, err = w.AddFont("/fonts/latin.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{
		Codepoints: []rune{'A', 'B', 'C'},
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	r, err := idx.BeginRead()
	require.NoError(t, err)
	defer r.Close()

	matches, err := r.Find(query.New().WithCodepoints([]rune{'A', 'B'}))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	none, err := r.Find(query.New().WithCodepoints([]rune{'Z'}))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestFontIDNotReusedAfterDelete(t *testing.T) {
	idx := openTestIndex(t)
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.ttf")
	require.NoError(t, os.WriteFile(aPath, nil, 0o644))

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	idA, err := w.AddFont(aPath, nil, time.Unix(1, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	require.Equal(t, FontID(1), idA)
	_, err = w.AddFont("/fonts/b.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	require.NoError(t, os.Remove(aPath))

	w2, err := idx.BeginWrite()
	require.NoError(t, err)
	before, after, err := w2.PruneMissing()
	require.NoError(t, err)
	require.Equal(t, 2, before)
	require.Equal(t, 1, after)
	require.NoError(t, w2.Commit())

	w3, err := idx.BeginWrite()
	require.NoError(t, err)
	idC, err := w3.AddFont("/fonts/c.ttf", nil, time.Unix(1, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	require.Equal(t, FontID(3), idC, "freed id 1 must not be reused within the index's lifetime")
	require.NoError(t, w3.Commit())
}

func TestFontIDAllocationCrossesByteBoundary(t *testing.T) {
	idx := openTestIndex(t)

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	var lastID FontID
	for i := 0; i < 260; i++ {
		lastID, err = w.AddFont(fmt.Sprintf("/fonts/f%03d.ttf", i), nil, time.Unix(int64(i), 0), sfntmeta.FaceMetadata{})
		require.NoError(t, err)
	}
	require.NoError(t, w.Commit())
	require.Equal(t, FontID(260), lastID, "allocation must stay numerically monotonic across the 255/256 byte boundary")
}

func TestPruneMissing(t *testing.T) {
	idx := openTestIndex(t)
	dir := t.TempDir()
	keepPath := filepath.Join(dir, "keep.ttf")
	removePath := filepath.Join(dir, "remove.ttf")
	require.NoError(t, os.WriteFile(keepPath, nil, 0o644))
	require.NoError(t, os.WriteFile(removePath, nil, 0o644))

	w, err := idx.BeginWrite()
	require.NoError(t, err)
	_, err = w.AddFont(keepPath, nil, time.Unix(1, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	_, err = w.AddFont(removePath, nil, time.Unix(1, 0), sfntmeta.FaceMetadata{})
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	require.NoError(t, os.Remove(removePath))

	w2, err := idx.BeginWrite()
	require.NoError(t, err)
	before, after, err := w2.PruneMissing()
	require.NoError(t, err)
	require.Equal(t, 2, before)
	require.Equal(t, 1, after)
	require.NoError(t, w2.Commit())

	r, err := idx.BeginRead()
	require.NoError(t, err)
	defer r.Close()
	all, err := r.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, keepPath, all[0].Source.Path)
}
