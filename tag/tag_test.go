package tag

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"wght", "a", "GSUB", "liga"}
	for _, c := range cases {
		tg, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		want := c
		for len(want) < 4 {
			want += " "
		}
		if got := tg.String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", c, got, want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, c := range []string{"", "toolong5", "\x01bcd"} {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", c)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := MustParse("aaaa")
	b := MustParse("bbbb")
	if !(a < b) {
		t.Fatalf("expected aaaa < bbbb")
	}
}

func TestSetContainsAll(t *testing.T) {
	s := NewSet(MustParse("smcp"), MustParse("liga"), MustParse("smcp"))
	if len(s) != 2 {
		t.Fatalf("expected dedup to 2 tags, got %d", len(s))
	}
	if !s.ContainsAll(NewSet(MustParse("liga"))) {
		t.Fatalf("expected liga to be contained")
	}
	if s.ContainsAll(NewSet(MustParse("kern"))) {
		t.Fatalf("did not expect kern to be contained")
	}
	if !s.ContainsAll(nil) {
		t.Fatalf("empty needle set must be vacuously satisfied")
	}
}

func TestFromBytes(t *testing.T) {
	want := MustParse("fvar")
	got := FromBytes(want.Bytes())
	if got != want {
		t.Fatalf("FromBytes(Bytes()) = %v, want %v", got, want)
	}
}
