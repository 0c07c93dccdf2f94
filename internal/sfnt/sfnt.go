// Package sfnt implements the minimal binary parsing of OpenType/TrueType
// font containers needed by the metadata extractor: the table directory,
// and the name/OS2/cmap/fvar/GSUB/GPOS tables it depends on.
//
// The style follows the pack's truetype table readers (offset/length
// table-directory, on-demand per-table parsing) rather than a generic
// reflection-based binary decoder.
package sfnt

import (
	"encoding/binary"
	"fmt"

	"github.com/fontlaborg/typg/tag"
)

const (
	tagTTCF = 0x74746366 // "ttcf"
	tagOTTO = 0x4F54544F // "OTTO" (CFF outlines)
	tagTrue = 0x74727565 // "true" (legacy Mac TrueType)
	tagV1   = 0x00010000 // sfnt version 1.0 (TrueType outlines)
)

// reader is a bounds-checked big-endian cursor over a font byte slice.
type reader struct {
	data []byte
}

func (r reader) u8(off uint32) (byte, error) {
	if uint64(off)+1 > uint64(len(r.data)) {
		return 0, fmt.Errorf("sfnt: read past end of buffer at offset %d", off)
	}
	return r.data[off], nil
}

func (r reader) u16(off uint32) (uint16, error) {
	if uint64(off)+2 > uint64(len(r.data)) {
		return 0, fmt.Errorf("sfnt: read past end of buffer at offset %d", off)
	}
	return binary.BigEndian.Uint16(r.data[off:]), nil
}

func (r reader) i16(off uint32) (int16, error) {
	v, err := r.u16(off)
	return int16(v), err
}

func (r reader) u32(off uint32) (uint32, error) {
	if uint64(off)+4 > uint64(len(r.data)) {
		return 0, fmt.Errorf("sfnt: read past end of buffer at offset %d", off)
	}
	return binary.BigEndian.Uint32(r.data[off:]), nil
}

func (r reader) tag(off uint32) (tag.Tag, error) {
	v, err := r.u32(off)
	return tag.Tag(v), err
}

func (r reader) slice(off, length uint32) ([]byte, error) {
	end := uint64(off) + uint64(length)
	if end > uint64(len(r.data)) {
		return nil, fmt.Errorf("sfnt: slice [%d:%d] out of bounds (len %d)", off, end, len(r.data))
	}
	return r.data[off:end], nil
}

// TableRecord is one entry of the sfnt table directory.
type TableRecord struct {
	Tag            tag.Tag
	Offset, Length uint32
}

// Face is a single parsed font within a file (one per TTF/OTF, many per
// TTC/OTC). It only records the table directory; individual tables are
// decoded lazily by the per-table methods (AxisTags, Names, OS2,
// Codepoints, ScriptAndFeatureTags) in the table_*.go files.
type Face struct {
	data   []byte
	Tables map[tag.Tag]TableRecord
	TTCIdx *uint32 // nil for non-collection files
	Tags   []tag.Tag
}

// ParseFaces detects a single font or a TTC/OTC collection in data and
// returns one Face per contained font, in file order.
func ParseFaces(data []byte) ([]*Face, error) {
	r := reader{data}
	if len(data) < 4 {
		return nil, fmt.Errorf("sfnt: file too small to be a font")
	}
	magic, err := r.u32(0)
	if err != nil {
		return nil, err
	}

	if magic == tagTTCF {
		return parseCollection(data)
	}
	if magic != tagV1 && magic != tagOTTO && magic != tagTrue {
		return nil, fmt.Errorf("sfnt: unrecognized font magic 0x%08x", magic)
	}
	f, err := parseOffsetTable(data, 0)
	if err != nil {
		return nil, err
	}
	return []*Face{f}, nil
}

func parseCollection(data []byte) ([]*Face, error) {
	r := reader{data}
	numFonts, err := r.u32(8)
	if err != nil {
		return nil, fmt.Errorf("sfnt: reading TTC header: %w", err)
	}
	faces := make([]*Face, 0, numFonts)
	for i := uint32(0); i < numFonts; i++ {
		offset, err := r.u32(12 + 4*i)
		if err != nil {
			return nil, fmt.Errorf("sfnt: reading TTC directory entry %d: %w", i, err)
		}
		f, err := parseOffsetTable(data, offset)
		if err != nil {
			return nil, fmt.Errorf("sfnt: parsing TTC face %d: %w", i, err)
		}
		idx := i
		f.TTCIdx = &idx
		faces = append(faces, f)
	}
	return faces, nil
}

func parseOffsetTable(data []byte, base uint32) (*Face, error) {
	r := reader{data}
	numTables, err := r.u16(base + 4)
	if err != nil {
		return nil, fmt.Errorf("reading offset table at %d: %w", base, err)
	}

	const recordStart = 12
	const recordSize = 16
	tables := make(map[tag.Tag]TableRecord, numTables)
	tags := make([]tag.Tag, 0, numTables)
	for i := uint16(0); i < numTables; i++ {
		recOff := base + recordStart + uint32(i)*recordSize
		t, err := r.tag(recOff)
		if err != nil {
			return nil, fmt.Errorf("reading table record %d: %w", i, err)
		}
		offset, err := r.u32(recOff + 8)
		if err != nil {
			return nil, err
		}
		length, err := r.u32(recOff + 12)
		if err != nil {
			return nil, err
		}
		tables[t] = TableRecord{Tag: t, Offset: offset, Length: length}
		tags = append(tags, t)
	}

	return &Face{data: data, Tables: tables, Tags: tags}, nil
}

// HasTable reports whether the face's table directory contains t.
func (f *Face) HasTable(t tag.Tag) bool {
	_, ok := f.Tables[t]
	return ok
}

// TableBytes returns the raw bytes of table t, or an error if absent.
func (f *Face) TableBytes(t tag.Tag) ([]byte, error) {
	rec, ok := f.Tables[t]
	if !ok {
		return nil, fmt.Errorf("sfnt: missing table %q", t.String())
	}
	r := reader{f.data}
	return r.slice(rec.Offset, rec.Length)
}
