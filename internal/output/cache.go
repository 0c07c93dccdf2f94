package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

// FromJSONMatch converts a wire-format match back into a FaceMatch.
func FromJSONMatch(j JSONMatch) (sfntmeta.FaceMatch, error) {
	axisTags, err := parseTagStrings(j.Metadata.AxisTags)
	if err != nil {
		return sfntmeta.FaceMatch{}, err
	}
	featureTags, err := parseTagStrings(j.Metadata.FeatureTags)
	if err != nil {
		return sfntmeta.FaceMatch{}, err
	}
	scriptTags, err := parseTagStrings(j.Metadata.ScriptTags)
	if err != nil {
		return sfntmeta.FaceMatch{}, err
	}
	tableTags, err := parseTagStrings(j.Metadata.TableTags)
	if err != nil {
		return sfntmeta.FaceMatch{}, err
	}
	codepoints := make([]rune, 0, len(j.Metadata.Codepoints))
	for _, s := range j.Metadata.Codepoints {
		for _, r := range s {
			codepoints = append(codepoints, r)
			break
		}
	}
	var familyClass *sfntmeta.FamilyClass
	if j.Metadata.FamilyClass != nil {
		familyClass = &sfntmeta.FamilyClass{
			Major:    uint8(j.Metadata.FamilyClass[0]),
			Subclass: uint8(j.Metadata.FamilyClass[1]),
		}
	}
	return sfntmeta.FaceMatch{
		Source: sfntmeta.FaceSource{Path: j.Source.Path, TTCIndex: j.Source.TTCIndex},
		Metadata: sfntmeta.FaceMetadata{
			Names:       j.Metadata.Names,
			AxisTags:    axisTags,
			FeatureTags: featureTags,
			ScriptTags:  scriptTags,
			TableTags:   tableTags,
			Codepoints:  codepoints,
			IsVariable:  j.Metadata.IsVariable,
			WeightClass: j.Metadata.WeightClass,
			WidthClass:  j.Metadata.WidthClass,
			FamilyClass: familyClass,
		},
	}, nil
}

func parseTagStrings(raw []string) (tag.Set, error) {
	out := make(tag.Set, 0, len(raw))
	for _, s := range raw {
		t, err := tag.Parse(s)
		if err != nil {
			return nil, typgerr.Wrap(typgerr.InvalidTag, err, "parsing cached tag %q", s)
		}
		out = append(out, t)
	}
	return tag.NewSet(out...), nil
}

// WriteCacheArray writes the JSON-array form of the cache file, the form
// writers always emit per spec.md §6.
func WriteCacheArray(w io.Writer, matches []sfntmeta.FaceMatch) error {
	return WriteJSON(w, matches)
}

// ReadCache reads a JSON cache file, accepting either the canonical JSON
// array form or, as a fallback, newline-delimited JSON objects of the
// same shape, per spec.md §6.
func ReadCache(r io.Reader) ([]sfntmeta.FaceMatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "reading cache file")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []JSONMatch
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, typgerr.Wrap(typgerr.Serialization, err, "decoding cache array")
		}
		return decodeAll(entries)
	}
	return readNDJSONCache(trimmed)
}

func readNDJSONCache(data []byte) ([]sfntmeta.FaceMatch, error) {
	var entries []JSONMatch
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry JSONMatch
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, typgerr.Wrap(typgerr.Serialization, err, "decoding ndjson cache line")
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, typgerr.Wrap(typgerr.IndexIO, err, "scanning ndjson cache")
	}
	return decodeAll(entries)
}

func decodeAll(entries []JSONMatch) ([]sfntmeta.FaceMatch, error) {
	out := make([]sfntmeta.FaceMatch, 0, len(entries))
	for _, e := range entries {
		m, err := FromJSONMatch(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
