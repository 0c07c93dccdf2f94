package fontindex

import (
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
)

// Writer is a single write transaction against the index. At most one
// Writer may be open at a time per Index; BeginWrite blocks until any
// prior writer commits or aborts, per spec.md §4.6's single-writer model.
type Writer struct {
	idx *Index
	tx  *bbolt.Tx
}

// BeginWrite starts a new write transaction.
func (idx *Index) BeginWrite() (*Writer, error) {
	tx, err := idx.db.Begin(true)
	if err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "beginning write transaction")
	}
	return &Writer{idx: idx, tx: tx}, nil
}

// NeedsUpdate reports whether path is unindexed or its stored mtime
// differs from mtime, per spec.md §4.6's needs_update.
func (w *Writer) NeedsUpdate(path string, mtime time.Time) (bool, error) {
	data := w.tx.Bucket(bucketPathToID).Get(pathHashKey(path))
	if data == nil {
		return true, nil
	}
	entry := decodePathEntry(data)
	return entry.MtimeSecs != mtime.Unix(), nil
}

// AddFont indexes one face's metadata, overwriting any existing entry for
// the same path. Per the Stale inverted bitmap entries on overwrite Open
// Questions resolution (SPEC_FULL.md §4.6), an overwrite eagerly removes
// the old FontID from exactly the bitmaps its previous tag sets touched,
// before the new ID is inserted into the new tag sets' bitmaps.
func (w *Writer) AddFont(path string, ttcIndex *uint32, mtime time.Time, meta sfntmeta.FaceMetadata) (FontID, error) {
	metaBucket := w.tx.Bucket(bucketMetadata)
	invBucket := w.tx.Bucket(bucketInverted)
	pathBucket := w.tx.Bucket(bucketPathToID)

	phKey := pathHashKey(path)
	if existing := pathBucket.Get(phKey); existing != nil {
		oldID := decodePathEntry(existing).FontID
		if oldData := metaBucket.Get(fontIDKey(oldID)); oldData != nil {
			oldRow, err := unmarshalRow(oldData)
			if err != nil {
				return 0, err
			}
			oldMatch, err := oldRow.toFaceMatch()
			if err != nil {
				return 0, err
			}
			for _, key := range tagsAndMarkers(oldMatch.Metadata) {
				if err := removeFromBitmap(invBucket, key, oldID); err != nil {
					return 0, err
				}
			}
		}
		if err := metaBucket.Delete(fontIDKey(oldID)); err != nil {
			return 0, typgerr.Wrap(typgerr.IndexIO, err, "deleting overwritten metadata row")
		}
	}

	id, err := allocateFontID(w.tx)
	if err != nil {
		return 0, err
	}

	row, err := toMetadataRow(path, ttcIndex, meta)
	if err != nil {
		return 0, err
	}
	data, err := marshalRow(row)
	if err != nil {
		return 0, err
	}
	if err := metaBucket.Put(fontIDKey(id), data); err != nil {
		return 0, typgerr.Wrap(typgerr.IndexIO, err, "writing metadata row")
	}
	entry := pathEntry{FontID: id, MtimeSecs: mtime.Unix()}
	if err := pathBucket.Put(phKey, encodePathEntry(entry)); err != nil {
		return 0, typgerr.Wrap(typgerr.IndexIO, err, "writing path entry")
	}
	for _, key := range tagsAndMarkers(meta) {
		if err := addToBitmap(invBucket, key, id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// PruneMissing deletes every metadata row and path entry whose file no
// longer exists on disk, and returns the face counts before and after,
// per spec.md §4.6's prune_missing.
func (w *Writer) PruneMissing() (before, after int, err error) {
	metaBucket := w.tx.Bucket(bucketMetadata)
	invBucket := w.tx.Bucket(bucketInverted)
	pathBucket := w.tx.Bucket(bucketPathToID)

	before = metaBucket.Stats().KeyN

	var stale []FontID
	c := metaBucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		row, err := unmarshalRow(v)
		if err != nil {
			return 0, 0, err
		}
		if _, statErr := os.Stat(row.Path); os.IsNotExist(statErr) {
			stale = append(stale, decodeFontIDKey(k))
		}
	}

	staleSet := make(map[FontID]bool, len(stale))
	for _, id := range stale {
		staleSet[id] = true
		data := metaBucket.Get(fontIDKey(id))
		row, err := unmarshalRow(data)
		if err != nil {
			return 0, 0, err
		}
		match, err := row.toFaceMatch()
		if err != nil {
			return 0, 0, err
		}
		for _, key := range tagsAndMarkers(match.Metadata) {
			if err := removeFromBitmap(invBucket, key, id); err != nil {
				return 0, 0, err
			}
		}
		if err := metaBucket.Delete(fontIDKey(id)); err != nil {
			return 0, 0, typgerr.Wrap(typgerr.IndexIO, err, "deleting pruned metadata row")
		}
	}

	var deadPathKeys [][]byte
	pc := pathBucket.Cursor()
	for k, v := pc.First(); k != nil; k, v = pc.Next() {
		if staleSet[decodePathEntry(v).FontID] {
			deadPathKeys = append(deadPathKeys, append([]byte(nil), k...))
		}
	}
	for _, k := range deadPathKeys {
		if err := pathBucket.Delete(k); err != nil {
			return 0, 0, typgerr.Wrap(typgerr.IndexIO, err, "deleting pruned path entry")
		}
	}

	return before, before - len(stale), nil
}

// Commit makes the writer's changes visible to subsequently started
// readers, atomically.
func (w *Writer) Commit() error {
	if err := w.tx.Commit(); err != nil {
		return typgerr.Wrap(typgerr.IndexIO, err, "committing write transaction")
	}
	return nil
}

// Abort discards the writer's changes.
func (w *Writer) Abort() error {
	if err := w.tx.Rollback(); err != nil {
		return typgerr.Wrap(typgerr.IndexIO, err, "aborting write transaction")
	}
	return nil
}
