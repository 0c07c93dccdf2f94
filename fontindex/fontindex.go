// Package fontindex implements the persistent inverted index over
// FaceMetadata: a single-writer/multi-reader embedded store with exact
// tag bitmaps, per spec.md §4.6. It is built on go.etcd.io/bbolt (the
// idiomatic Go analogue of the original's memory-mapped LMDB store).
package fontindex

import (
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/fontlaborg/typg/internal/typgerr"
)

var (
	bucketMetadata = []byte("metadata")
	bucketInverted = []byte("inverted")
	bucketPathToID = []byte("path_to_id")
	bucketCounters = []byte("counters")
	varMarkerKey   = []byte("_VAR")
	nextIDKey      = []byte("next_id")
)

// FontID is the monotonically assigned identifier of a face within an
// index. It never exceeds 2^32-1, since inverted bitmaps are 32-bit
// Roaring bitmaps (spec.md §4.6).
type FontID uint64

const maxFontID = FontID(1<<32 - 1)

// Index is an open handle to the on-disk store. It is safe to share
// across goroutines: bbolt serializes writers and gives readers a
// consistent snapshot for their lifetime.
type Index struct {
	db *bbolt.DB
}

// Open creates the index directory and its backing store if missing, and
// seeds the counters bucket's next_id from the highest FontID observed in
// the metadata table (1 if empty) the first time the store is created.
// Once seeded, next_id is a persisted monotonic counter: per spec.md §3,
// new IDs must strictly exceed the maximum observed at open time even
// across later deletions within the index's lifetime, so it is never
// re-derived from the live table again. It fails with IndexIO if the
// directory cannot be created or the store is corrupt.
func Open(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "creating index directory").WithPath(dir)
	}
	dbPath := filepath.Join(dir, "typg.db")
	db, err := bbolt.Open(dbPath, 0o644, nil)
	if err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "opening index store").WithPath(dbPath)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMetadata, bucketInverted, bucketPathToID, bucketCounters} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		counters := tx.Bucket(bucketCounters)
		if counters.Get(nextIDKey) != nil {
			return nil
		}
		var maxID FontID
		c := tx.Bucket(bucketMetadata).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if id := decodeFontIDKey(k); id > maxID {
				maxID = id
			}
		}
		return counters.Put(nextIDKey, fontIDKey(maxID+1))
	})
	if err != nil {
		_ = db.Close()
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "initializing index buckets").WithPath(dbPath)
	}
	return &Index{db: db}, nil
}

// Close releases the backing store's file handles.
func (idx *Index) Close() error {
	if err := idx.db.Close(); err != nil {
		return typgerr.Wrap(typgerr.IndexIO, err, "closing index store")
	}
	return nil
}

// Count returns the number of faces (metadata rows) currently stored.
// Per the Counting semantics for TTC faces decision in SPEC_FULL.md §4.6,
// this counts faces, not distinct files.
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketMetadata).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, typgerr.Wrap(typgerr.IndexIO, err, "counting index")
	}
	return n, nil
}

// allocateFontID returns the next unused FontID and advances the
// persisted counter past it. It never reuses an ID freed by a deletion
// within the index's lifetime, per spec.md §3: the counter only moves
// forward, regardless of what PruneMissing or an overwrite later removes
// from the metadata bucket. Must be called with a writable transaction
// already open so the allocation and the row it is used for commit
// atomically.
func allocateFontID(tx *bbolt.Tx) (FontID, error) {
	counters := tx.Bucket(bucketCounters)
	raw := counters.Get(nextIDKey)
	if raw == nil {
		return 0, typgerr.New(typgerr.IndexIO, "next_id counter missing")
	}
	id := decodeFontIDKey(raw)
	if id > maxFontID {
		return 0, typgerr.New(typgerr.IndexIO, "font id space exhausted")
	}
	if err := counters.Put(nextIDKey, fontIDKey(id+1)); err != nil {
		return 0, typgerr.Wrap(typgerr.IndexIO, err, "advancing next_id counter")
	}
	return id, nil
}
