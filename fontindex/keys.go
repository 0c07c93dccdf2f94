package fontindex

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/fontlaborg/typg/tag"
)

// fontIDKey encodes a FontID as an 8-byte value in host byte order,
// matching the on-disk contract in spec.md §6. Used both as the
// metadata-table key and as the counters-table next_id value; bbolt
// never needs to order these lexicographically by numeric value, since
// lookups are always by exact key (metadata) or through the dedicated
// next_id counter (allocateFontID), never by Cursor.Last().
func fontIDKey(id FontID) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeFontIDKey(b []byte) FontID {
	return FontID(binary.NativeEndian.Uint64(b))
}

// pathHash returns the 64-bit xxh3 hash of path, matching the original's
// xxhash_rust::xxh3 exactly (see DESIGN.md).
func pathHash(path string) uint64 {
	return xxh3.HashString(path)
}

func pathHashKey(path string) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, pathHash(path))
	return buf
}

// pathEntry is the path_to_id table's value: (font_id, mtime_secs) packed
// as two host-byte-order uint64s, per spec.md §6.
type pathEntry struct {
	FontID    FontID
	MtimeSecs int64
}

func encodePathEntry(e pathEntry) []byte {
	buf := make([]byte, 16)
	binary.NativeEndian.PutUint64(buf[0:8], uint64(e.FontID))
	binary.NativeEndian.PutUint64(buf[8:16], uint64(e.MtimeSecs))
	return buf
}

func decodePathEntry(b []byte) pathEntry {
	return pathEntry{
		FontID:    FontID(binary.NativeEndian.Uint64(b[0:8])),
		MtimeSecs: int64(binary.NativeEndian.Uint64(b[8:16])),
	}
}

// invertedKey returns the inverted-table key for a tag: its 4 raw bytes in
// big-endian (on-the-wire) order, per the Tag byte order Open Questions
// resolution in SPEC_FULL.md §4.6.
func invertedKey(t tag.Tag) []byte {
	b := t.Bytes()
	return b[:]
}
