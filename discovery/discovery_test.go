package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsFontFile(t *testing.T) {
	cases := map[string]bool{
		"/A/B/font.ttf": true,
		"/A/B/font.OTF": true,
		"/A/B/font.ttc": true,
		"/A/B/font.txt": false,
		"/A/B/font":     false,
	}
	for path, want := range cases {
		if got := isFontFile(path); got != want {
			t.Errorf("isFontFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWalkDiscoversNestedFonts(t *testing.T) {
	tmp := t.TempDir()
	nested := filepath.Join(tmp, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	fontPath := filepath.Join(nested, "sample.ttf")
	if err := os.WriteFile(fontPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	nonFont := filepath.Join(nested, "readme.txt")
	if err := os.WriteFile(nonFont, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := Walk([]string{tmp}, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(found) != 1 || found[0] != fontPath {
		t.Fatalf("Walk() = %v, want [%s]", found, fontPath)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk([]string{"/does/not/exist/at/all"}, Options{})
	if err == nil {
		t.Fatalf("expected RootMissing error")
	}
}

func TestWalkFollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	tmp := t.TempDir()
	realDir := filepath.Join(tmp, "real")
	linkDir := filepath.Join(tmp, "link")
	if err := os.MkdirAll(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	fontPath := filepath.Join(realDir, "linked.otf")
	if err := os.WriteFile(fontPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realDir, linkDir); err != nil {
		t.Fatal(err)
	}

	found, err := Walk([]string{linkDir}, Options{FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	foundLinked := false
	for _, f := range found {
		if filepath.Base(f) == "linked.otf" {
			foundLinked = true
		}
	}
	if !foundLinked {
		t.Fatalf("expected to find linked.otf via symlink, got %v", found)
	}
}
