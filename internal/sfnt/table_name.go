package sfnt

import (
	"github.com/fontlaborg/typg/tag"
	"golang.org/x/text/encoding/unicode"
)

var tagName = tag.MustParse("name")

// NameID identifies a name record's semantic role; only the subset the
// catalog cares about is named here.
type NameID uint16

const (
	NameFamily            NameID = 1
	NameSubfamily         NameID = 2
	NameFull              NameID = 4
	NamePostScript        NameID = 6
	NameTypographicFamily NameID = 16
	NameTypographicSubfam NameID = 17
)

// wantedNameIDs are the name records collected into FaceMetadata.Names, per
// spec.md §4.3: family, typographic family, subfamily, typographic
// subfamily, full, PostScript.
var wantedNameIDs = map[NameID]bool{
	NameFamily:            true,
	NameTypographicFamily: true,
	NameSubfamily:         true,
	NameTypographicSubfam: true,
	NameFull:              true,
	NamePostScript:        true,
}

// platform/encoding IDs that carry UTF-16BE (or, for platform 0, UCS-2/
// UTF-16BE-compatible) text, i.e. "produce Unicode text" per spec.md.
func isUnicodeRecord(platformID, encodingID uint16) bool {
	switch platformID {
	case 0: // Unicode platform: every encoding is a Unicode encoding form
		return true
	case 3: // Windows platform
		return encodingID == 1 || encodingID == 10 // Unicode BMP / full repertoire
	default:
		return false
	}
}

// Names reads every name-table record whose platform/encoding pair carries
// Unicode text and whose name ID is in the wanted set, decoding each to a
// Go string. Records are returned in table order, not yet trimmed,
// deduplicated, or unioned with the file stem; that normalization is the
// caller's (sfntmeta) responsibility.
func (f *Face) Names() ([]string, error) {
	if !f.HasTable(tagName) {
		return nil, nil
	}
	buf, err := f.TableBytes(tagName)
	if err != nil {
		// a malformed name table degrades to no names, not a fatal error.
		return nil, nil
	}
	r := reader{buf}

	count, err := r.u16(2)
	if err != nil {
		return nil, nil
	}
	storageOffset, err := r.u16(4)
	if err != nil {
		return nil, nil
	}

	decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

	var names []string
	const recordStart = 6
	const recordSize = 12
	for i := uint16(0); i < count; i++ {
		recOff := uint32(recordStart + int(i)*recordSize)
		platformID, err := r.u16(recOff)
		if err != nil {
			// a truncated record table yields whatever names were
			// already decoded rather than failing the whole face.
			break
		}
		encodingID, err := r.u16(recOff + 2)
		if err != nil {
			break
		}
		nameID, err := r.u16(recOff + 6)
		if err != nil {
			break
		}
		length, err := r.u16(recOff + 8)
		if err != nil {
			break
		}
		strOffset, err := r.u16(recOff + 10)
		if err != nil {
			break
		}

		if !isUnicodeRecord(platformID, encodingID) || !wantedNameIDs[NameID(nameID)] {
			continue
		}

		raw, err := r.slice(uint32(storageOffset)+uint32(strOffset), uint32(length))
		if err != nil {
			// a malformed single record should not abort the whole face;
			// the extractor treats missing names as absent, not fatal.
			continue
		}
		decoded, err := decoder.Bytes(raw)
		if err != nil {
			continue
		}
		names = append(names, string(decoded))
	}

	return names, nil
}
