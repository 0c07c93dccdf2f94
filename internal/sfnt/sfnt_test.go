package sfnt

import (
	"encoding/binary"
	"testing"

	"github.com/fontlaborg/typg/tag"
)

// buildMinimalFont assembles a single-table sfnt file (just "head") purely
// to exercise the offset table and table directory parsing; no table
// content is interpreted here.
func buildMinimalFont(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	appendU32 := func(v uint32) { buf = binary.BigEndian.AppendUint32(buf, v) }
	appendU16 := func(v uint16) { buf = binary.BigEndian.AppendUint16(buf, v) }

	appendU32(0x00010000) // sfnt version
	appendU16(1)          // numTables
	appendU16(0)          // searchRange
	appendU16(0)          // entrySelector
	appendU16(0)          // rangeShift

	headTag := tag.MustParse("head")
	tb := headTag.Bytes()
	buf = append(buf, tb[:]...)
	appendU32(0)  // checksum
	appendU32(28) // offset: right after the single table record
	appendU32(4)  // length

	buf = append(buf, []byte{0xCA, 0xFE, 0xBA, 0xBE}...)
	return buf
}

func TestParseFacesSingle(t *testing.T) {
	data := buildMinimalFont(t)
	faces, err := ParseFaces(data)
	if err != nil {
		t.Fatalf("ParseFaces: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	if faces[0].TTCIdx != nil {
		t.Fatalf("expected non-collection face to have nil TTCIdx")
	}
	if !faces[0].HasTable(tag.MustParse("head")) {
		t.Fatalf("expected head table to be present")
	}
	if faces[0].HasTable(tag.MustParse("fvar")) {
		t.Fatalf("did not expect fvar table")
	}
}

func TestParseFacesRejectsGarbage(t *testing.T) {
	if _, err := ParseFaces([]byte("not a font")); err == nil {
		t.Fatalf("expected error for non-font data")
	}
}

func TestOS2Absent(t *testing.T) {
	data := buildMinimalFont(t)
	faces, err := ParseFaces(data)
	if err != nil {
		t.Fatalf("ParseFaces: %v", err)
	}
	_, ok, err := faces[0].OS2()
	if err != nil {
		t.Fatalf("OS2: %v", err)
	}
	if ok {
		t.Fatalf("expected no OS/2 table")
	}
}
