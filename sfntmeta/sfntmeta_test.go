package sfntmeta

import (
	"encoding/binary"
	"testing"
)

// buildFontWithName assembles an sfnt file containing only a "name" table
// with a single Windows/Unicode FULL_NAME record, to exercise Extract end
// to end without a real font corpus.
func buildFontWithName(t *testing.T, full string) []byte {
	t.Helper()

	utf16be := func(s string) []byte {
		var out []byte
		for _, r := range s {
			out = binary.BigEndian.AppendUint16(out, uint16(r))
		}
		return out
	}
	strBytes := utf16be(full)

	var nameTable []byte
	appendU16 := func(v uint16) { nameTable = binary.BigEndian.AppendUint16(nameTable, v) }
	appendU16(0)                     // format
	appendU16(1)                     // count
	appendU16(6 + 12)                // storage offset (after header + 1 record)
	appendU16(3)                     // platformID: Windows
	appendU16(1)                     // encodingID: Unicode BMP
	appendU16(0x0409)                // languageID
	appendU16(4)                     // nameID: FULL_NAME
	appendU16(uint16(len(strBytes))) // length
	appendU16(0)                     // string offset
	nameTable = append(nameTable, strBytes...)

	var buf []byte
	appendU32 := func(v uint32) { buf = binary.BigEndian.AppendUint32(buf, v) }
	appendU16b := func(v uint16) { buf = binary.BigEndian.AppendUint16(buf, v) }

	appendU32(0x00010000)
	appendU16b(1)
	appendU16b(0)
	appendU16b(0)
	appendU16b(0)

	buf = append(buf, []byte{'n', 'a', 'm', 'e'}...)
	appendU32(0)
	appendU32(28)
	appendU32(uint32(len(nameTable)))
	buf = append(buf, nameTable...)

	return buf
}

func TestExtractNamesIncludeStemAndTableName(t *testing.T) {
	data := buildFontWithName(t, "Example Sans")
	matches, err := Extract("/fonts/Example-Regular.ttf", data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 face, got %d", len(matches))
	}
	names := matches[0].Metadata.Names
	wantStem, wantFull := false, false
	for _, n := range names {
		if n == "Example-Regular" {
			wantStem = true
		}
		if n == "Example Sans" {
			wantFull = true
		}
	}
	if !wantStem {
		t.Errorf("expected file stem fallback name in %v", names)
	}
	if !wantFull {
		t.Errorf("expected decoded name-table entry in %v", names)
	}
	if matches[0].Metadata.IsVariable {
		t.Errorf("did not expect fvar-less face to be variable")
	}
}

func TestExtractInvalidFont(t *testing.T) {
	if _, err := Extract("/x/garbage.ttf", []byte("not a font")); err == nil {
		t.Fatalf("expected ParseError for invalid data")
	}
}

func TestFaceSourceString(t *testing.T) {
	idx := uint32(2)
	s := FaceSource{Path: "/fonts/Coll.ttc", TTCIndex: &idx}
	if got, want := s.String(), "/fonts/Coll.ttc#2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	s2 := FaceSource{Path: "/fonts/Solo.ttf"}
	if got, want := s2.String(), "/fonts/Solo.ttf"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
