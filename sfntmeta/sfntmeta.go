// Package sfntmeta parses a font file (single font or TTC/OTC collection)
// into one normalized FaceMetadata record per contained face, per
// spec.md §4.3.
package sfntmeta

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fontlaborg/typg/internal/sfnt"
	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/tag"
)

var tagFvar = tag.MustParse("fvar")

// FamilyClass is the OS/2 "family classification" pair (major class,
// subclass), preserved verbatim so callers can filter on either level.
type FamilyClass struct {
	Major, Subclass uint8
}

// FaceMetadata is the normalized, immutable description of a single face,
// per spec.md §3.
type FaceMetadata struct {
	Names        []string
	AxisTags     tag.Set
	FeatureTags  tag.Set
	ScriptTags   tag.Set
	TableTags    tag.Set
	Codepoints   []rune // sorted, deduplicated
	IsVariable   bool
	WeightClass  *uint16
	WidthClass   *uint16
	FamilyClass  *FamilyClass
}

// FaceSource locates a face: a path, plus an optional index within a
// collection file.
type FaceSource struct {
	Path     string
	TTCIndex *uint32
}

// String renders the source as "path" or "path#<ttc_index>".
func (s FaceSource) String() string {
	if s.TTCIndex == nil {
		return s.Path
	}
	return fmt.Sprintf("%s#%d", s.Path, *s.TTCIndex)
}

// FaceMatch pairs a FaceSource with its metadata; the unit returned by
// both the live search pipeline and the indexed query engine.
type FaceMatch struct {
	Source   FaceSource
	Metadata FaceMetadata
}

// Extract parses data (the full contents of path) and returns one
// FaceMatch per contained face. It fails with a typgerr.ParseError if data
// is not a valid font container, or if any face within it cannot be
// parsed; a best-effort policy is applied per-table (a broken GSUB does not
// fail the whole face), matching spec.md §4.3's per-file failure policy.
func Extract(path string, data []byte) ([]FaceMatch, error) {
	faces, err := sfnt.ParseFaces(data)
	if err != nil {
		return nil, typgerr.Wrap(typgerr.ParseError, err, "parsing font").WithPath(path)
	}

	out := make([]FaceMatch, 0, len(faces))
	for _, face := range faces {
		meta, err := extractOne(face)
		if err != nil {
			return nil, typgerr.Wrap(typgerr.ParseError, err, "parsing face").WithPath(path)
		}
		meta.Names = finalizeNames(meta.Names, path)

		var ttcIndex *uint32
		if face.TTCIdx != nil {
			idx := *face.TTCIdx
			ttcIndex = &idx
		}

		out = append(out, FaceMatch{
			Source:   FaceSource{Path: path, TTCIndex: ttcIndex},
			Metadata: meta,
		})
	}
	return out, nil
}

func extractOne(face *sfnt.Face) (FaceMetadata, error) {
	var meta FaceMetadata

	tableTags := make(tag.Set, 0, len(face.Tags))
	for _, t := range face.Tags {
		tableTags = append(tableTags, t)
	}
	meta.TableTags = tag.NewSet(tableTags...)
	meta.IsVariable = meta.TableTags.Contains(tagFvar)

	axisTags, err := face.AxisTags()
	if err != nil {
		return meta, fmt.Errorf("reading fvar: %w", err)
	}
	meta.AxisTags = tag.NewSet(axisTags...)

	scriptTags, featureTags, err := face.ScriptAndFeatureTags()
	if err != nil {
		return meta, fmt.Errorf("reading GSUB/GPOS: %w", err)
	}
	meta.ScriptTags = tag.NewSet(scriptTags...)
	meta.FeatureTags = tag.NewSet(featureTags...)

	names, err := face.Names()
	if err != nil {
		return meta, fmt.Errorf("reading name table: %w", err)
	}
	meta.Names = names

	codepoints, err := face.Codepoints()
	if err != nil {
		return meta, fmt.Errorf("reading cmap: %w", err)
	}
	meta.Codepoints = normalizeCodepoints(codepoints)

	os2, ok, err := face.OS2()
	if err != nil {
		return meta, fmt.Errorf("reading OS/2: %w", err)
	}
	if ok {
		weight, width := os2.WeightClass, os2.WidthClass
		meta.WeightClass = &weight
		meta.WidthClass = &width
		meta.FamilyClass = &FamilyClass{Major: os2.FamilyMajor, Subclass: os2.FamilySub}
	}

	return meta, nil
}

func normalizeCodepoints(cps []rune) []rune {
	if len(cps) == 0 {
		return nil
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })
	out := cps[:1]
	for _, c := range cps[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

// finalizeNames trims, unions with the file stem, and sorts+dedups names,
// per spec.md §4.3's normalization step.
func finalizeNames(names []string, path string) []string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	names = append(append([]string{}, names...), stem)

	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)

	deduped := out[:0]
	for i, n := range out {
		if i == 0 || n != deduped[len(deduped)-1] {
			deduped = append(deduped, n)
		}
	}
	return deduped
}
