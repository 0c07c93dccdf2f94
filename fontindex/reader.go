package fontindex

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"go.etcd.io/bbolt"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/query"
	"github.com/fontlaborg/typg/sfntmeta"
)

// Reader is a read-only snapshot of the index, stable for its entire
// lifetime even if a writer commits concurrently, per spec.md §4.6's
// MVCC transaction model.
type Reader struct {
	idx *Index
	tx  *bbolt.Tx
}

// BeginRead opens a read-only snapshot.
func (idx *Index) BeginRead() (*Reader, error) {
	tx, err := idx.db.Begin(false)
	if err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "beginning read transaction")
	}
	return &Reader{idx: idx, tx: tx}, nil
}

// Close releases the read snapshot.
func (r *Reader) Close() error {
	if err := r.tx.Rollback(); err != nil {
		return typgerr.Wrap(typgerr.IndexIO, err, "closing read transaction")
	}
	return nil
}

// Count returns the number of faces visible in this snapshot.
func (r *Reader) Count() int {
	return r.tx.Bucket(bucketMetadata).Stats().KeyN
}

// ListAll returns every face in the snapshot, sorted by (path, ttc_index).
func (r *Reader) ListAll() ([]sfntmeta.FaceMatch, error) {
	metaBucket := r.tx.Bucket(bucketMetadata)
	var matches []sfntmeta.FaceMatch
	c := metaBucket.Cursor()
	for _, v := c.First(); v != nil; _, v = c.Next() {
		row, err := unmarshalRow(v)
		if err != nil {
			return nil, err
		}
		match, err := row.toFaceMatch()
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	sortMatches(matches)
	return matches, nil
}

// Find evaluates q in two phases (spec.md §4.7): a sound candidate set by
// intersecting the inverted bitmaps named in q's tag clauses, then an
// exact residual filter over hydrated metadata for every candidate.
func (r *Reader) Find(q query.Query) ([]sfntmeta.FaceMatch, error) {
	metaBucket := r.tx.Bucket(bucketMetadata)
	invBucket := r.tx.Bucket(bucketInverted)

	var candidateIDs []FontID
	tagKeys := collectTagKeys(q)
	if len(tagKeys) > 0 {
		bm, err := intersectBitmaps(invBucket, tagKeys)
		if err != nil {
			return nil, err
		}
		for _, v := range bm.ToArray() {
			candidateIDs = append(candidateIDs, FontID(v))
		}
	} else {
		c := metaBucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			candidateIDs = append(candidateIDs, decodeFontIDKey(k))
		}
	}

	var matches []sfntmeta.FaceMatch
	for _, id := range candidateIDs {
		data := metaBucket.Get(fontIDKey(id))
		if data == nil {
			continue
		}
		row, err := unmarshalRow(data)
		if err != nil {
			return nil, err
		}
		match, err := row.toFaceMatch()
		if err != nil {
			return nil, err
		}
		if q.Matches(match.Metadata) {
			matches = append(matches, match)
		}
	}
	sortMatches(matches)
	return matches, nil
}

// collectTagKeys returns the inverted-table keys named by q's tag
// clauses in a stable order (axes, features, scripts, tables, then the
// variable marker); intersectBitmaps folds over them in that order and
// does not reorder them by bitmap size.
func collectTagKeys(q query.Query) [][]byte {
	var keys [][]byte
	for _, t := range q.Axes() {
		keys = append(keys, invertedKey(t))
	}
	for _, t := range q.Features() {
		keys = append(keys, invertedKey(t))
	}
	for _, t := range q.Scripts() {
		keys = append(keys, invertedKey(t))
	}
	for _, t := range q.Tables() {
		keys = append(keys, invertedKey(t))
	}
	if q.RequiresVariable() {
		keys = append(keys, varMarkerKey)
	}
	return keys
}

func intersectBitmaps(bucket *bbolt.Bucket, keys [][]byte) (*roaring.Bitmap, error) {
	result, err := loadBitmap(bucket, keys[0])
	if err != nil {
		return nil, err
	}
	for _, k := range keys[1:] {
		bm, err := loadBitmap(bucket, k)
		if err != nil {
			return nil, err
		}
		result.And(bm)
	}
	return result, nil
}

func sortMatches(matches []sfntmeta.FaceMatch) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i].Source, matches[j].Source
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return ttcOrdinal(a.TTCIndex) < ttcOrdinal(b.TTCIndex)
	})
}

func ttcOrdinal(idx *uint32) int64 {
	if idx == nil {
		return -1
	}
	return int64(*idx)
}
