package query

import (
	"testing"

	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

func TestEmptyQueryMatchesEverything(t *testing.T) {
	q := New()
	if !q.Matches(sfntmeta.FaceMetadata{}) {
		t.Fatalf("empty query should match a bare face")
	}
}

func TestTagClauseRequiresSubset(t *testing.T) {
	q := New().WithFeatures(tag.NewSet(tag.MustParse("smcp")))
	meta := sfntmeta.FaceMetadata{FeatureTags: tag.NewSet(tag.MustParse("liga"))}
	if q.Matches(meta) {
		t.Fatalf("expected no match: smcp absent")
	}
	meta.FeatureTags = tag.NewSet(tag.MustParse("smcp"), tag.MustParse("liga"))
	if !q.Matches(meta) {
		t.Fatalf("expected match: smcp present among feature tags")
	}
}

func TestMonotonicity(t *testing.T) {
	meta := sfntmeta.FaceMetadata{
		FeatureTags: tag.NewSet(tag.MustParse("smcp")),
		IsVariable:  true,
	}
	q1 := New()
	q2 := q1.WithFeatures(tag.NewSet(tag.MustParse("smcp"))).RequireVariable(true)
	if !q1.Matches(meta) {
		t.Fatalf("q1 should match")
	}
	if !q2.Matches(meta) {
		t.Fatalf("q2 (more restrictive) should still match this face")
	}
	// adding a clause that the face fails must shrink the match set
	q3 := q2.WithTables(tag.NewSet(tag.MustParse("CFF ")))
	if q3.Matches(meta) {
		t.Fatalf("q3 should not match: face has no CFF table")
	}
}

func TestWeightRangeRequiresPresence(t *testing.T) {
	r := Range{Lo: 300, Hi: 500}
	q := New().WithWeightRange(&r)
	if q.Matches(sfntmeta.FaceMetadata{}) {
		t.Fatalf("face without weight_class must fail a weight range clause")
	}
	w := uint16(400)
	if !q.Matches(sfntmeta.FaceMetadata{WeightClass: &w}) {
		t.Fatalf("400 should be within [300,500]")
	}
}

func TestParseCodepointList(t *testing.T) {
	got, err := ParseCodepointList("A,U+0042-U+0044")
	if err != nil {
		t.Fatalf("ParseCodepointList: %v", err)
	}
	want := []rune{'A', 'B', 'C', 'D'}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseU16RangeSwappedBounds(t *testing.T) {
	r, err := ParseU16Range("500-300")
	if err != nil {
		t.Fatalf("ParseU16Range: %v", err)
	}
	if r.Lo != 300 || r.Hi != 500 {
		t.Fatalf("expected normalized range 300-500, got %+v", r)
	}
}

func TestParseFamilyClassForms(t *testing.T) {
	cases := map[string]FamilyClassFilter{
		"8":      {Major: 8},
		"8.11":   {Major: 8, Subclass: u8ptr(11)},
		"8:11":   {Major: 8, Subclass: u8ptr(11)},
		"0x0805": {Major: 8, Subclass: u8ptr(5)},
		"sans":   {Major: 8},
	}
	for input, want := range cases {
		got, err := ParseFamilyClass(input)
		if err != nil {
			t.Fatalf("ParseFamilyClass(%q): %v", input, err)
		}
		if got.Major != want.Major {
			t.Errorf("ParseFamilyClass(%q).Major = %d, want %d", input, got.Major, want.Major)
		}
		if (got.Subclass == nil) != (want.Subclass == nil) {
			t.Errorf("ParseFamilyClass(%q).Subclass presence mismatch", input)
			continue
		}
		if got.Subclass != nil && *got.Subclass != *want.Subclass {
			t.Errorf("ParseFamilyClass(%q).Subclass = %d, want %d", input, *got.Subclass, *want.Subclass)
		}
	}
}

func u8ptr(v uint8) *uint8 { return &v }
