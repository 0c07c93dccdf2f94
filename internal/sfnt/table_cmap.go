package sfnt

import "github.com/fontlaborg/typg/tag"

var tagCmap = tag.MustParse("cmap")

// preferred (platformID, encodingID) pairs for the Unicode character map,
// in priority order: full-repertoire Windows Unicode, Unicode platform
// full repertoire (encoding 4), BMP Windows Unicode, Unicode platform BMP
// (encoding 3), then Unicode platform full repertoire (encoding 6).
var cmapPreference = [][2]uint16{
	{3, 10},
	{0, 4},
	{3, 1},
	{0, 3},
	{0, 6},
}

// Codepoints walks the face's best available Unicode cmap subtable and
// returns every Unicode scalar value it maps, unsorted and possibly with
// duplicates; the caller normalizes. Faces without a usable Unicode cmap
// yield an empty, non-error result, since cmap absence does not invalidate
// a face for non-coverage queries.
func (f *Face) Codepoints() ([]rune, error) {
	if !f.HasTable(tagCmap) {
		return nil, nil
	}
	buf, err := f.TableBytes(tagCmap)
	if err != nil {
		return nil, err
	}
	r := reader{buf}

	numTables, err := r.u16(2)
	if err != nil {
		return nil, err
	}

	type encRecord struct {
		platform, encoding uint16
		offset             uint32
	}
	var records []encRecord
	for i := uint16(0); i < numTables; i++ {
		base := uint32(4 + int(i)*8)
		platform, err := r.u16(base)
		if err != nil {
			return nil, err
		}
		encoding, err := r.u16(base + 2)
		if err != nil {
			return nil, err
		}
		offset, err := r.u32(base + 4)
		if err != nil {
			return nil, err
		}
		records = append(records, encRecord{platform, encoding, offset})
	}

	var chosen *encRecord
	for _, pref := range cmapPreference {
		for i := range records {
			if records[i].platform == pref[0] && records[i].encoding == pref[1] {
				chosen = &records[i]
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil {
		return nil, nil
	}

	format, err := r.u16(chosen.offset)
	if err != nil {
		return nil, err
	}

	switch format {
	case 4:
		return parseCmapFormat4(r, chosen.offset)
	case 12:
		return parseCmapFormat12(r, chosen.offset)
	case 0:
		return parseCmapFormat0(r, chosen.offset)
	default:
		// Other formats (2, 6, 13, 14) are rare for the Unicode platform
		// selections above; skip rather than fail the whole face.
		return nil, nil
	}
}

func parseCmapFormat0(r reader, base uint32) ([]rune, error) {
	var out []rune
	for c := 0; c < 256; c++ {
		gid, err := r.u8(base + 6 + uint32(c))
		if err != nil {
			return out, nil
		}
		if gid != 0 {
			out = append(out, rune(c))
		}
	}
	return out, nil
}

func parseCmapFormat4(r reader, base uint32) ([]rune, error) {
	segCountX2, err := r.u16(base + 6)
	if err != nil {
		return nil, err
	}
	segCount := int(segCountX2 / 2)

	endCodeBase := base + 14
	startCodeBase := endCodeBase + uint32(segCountX2) + 2 // +2 skips reservedPad
	idDeltaBase := startCodeBase + uint32(segCountX2)
	idRangeOffsetBase := idDeltaBase + uint32(segCountX2)

	var out []rune
	for s := 0; s < segCount; s++ {
		endCode, err := r.u16(endCodeBase + uint32(s*2))
		if err != nil {
			return out, nil
		}
		startCode, err := r.u16(startCodeBase + uint32(s*2))
		if err != nil {
			return out, nil
		}
		idRangeOffset, err := r.u16(idRangeOffsetBase + uint32(s*2))
		if err != nil {
			return out, nil
		}
		if startCode == 0xFFFF && endCode == 0xFFFF {
			continue
		}
		if idRangeOffset == 0 {
			for c := uint32(startCode); c <= uint32(endCode); c++ {
				out = append(out, rune(c))
			}
			continue
		}
		// idRangeOffset != 0: glyph ID is looked up via the glyphIdArray;
		// we only need coverage, so resolve each code point's glyph id and
		// skip ones that map to .notdef (glyph 0).
		for c := uint32(startCode); c <= uint32(endCode); c++ {
			glyphOffset := idRangeOffsetBase + uint32(s*2) + uint32(idRangeOffset) + (c-uint32(startCode))*2
			gid, err := r.u16(glyphOffset)
			if err != nil {
				continue
			}
			if gid != 0 {
				out = append(out, rune(c))
			}
		}
	}
	return out, nil
}

func parseCmapFormat12(r reader, base uint32) ([]rune, error) {
	numGroups, err := r.u32(base + 12)
	if err != nil {
		return nil, err
	}
	var out []rune
	for g := uint32(0); g < numGroups; g++ {
		groupBase := base + 16 + g*12
		startChar, err := r.u32(groupBase)
		if err != nil {
			return out, nil
		}
		endChar, err := r.u32(groupBase + 4)
		if err != nil {
			return out, nil
		}
		for c := startChar; c <= endChar; c++ {
			if c > 0x10FFFF || (c >= 0xD800 && c <= 0xDFFF) {
				continue // invalid/surrogate scalar values are skipped
			}
			out = append(out, rune(c))
		}
	}
	return out, nil
}
