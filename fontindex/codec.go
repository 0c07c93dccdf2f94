package fontindex

import (
	"bytes"

	"github.com/RoaringBitmap/roaring"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

// metadataRow is the msgpack-serialized shape of a metadata-table value.
// Per the FaceMetadata fields Open Questions resolution (SPEC_FULL.md
// §4.6), every tag set is stored verbatim alongside the Roaring-encoded
// codepoint set, so hydration never returns a partial projection.
type metadataRow struct {
	Path             string   `msgpack:"path"`
	TTCIndex         *uint32  `msgpack:"ttc_index"`
	Names            []string `msgpack:"names"`
	AxisTags         []uint32 `msgpack:"axis_tags"`
	FeatureTags      []uint32 `msgpack:"feature_tags"`
	ScriptTags       []uint32 `msgpack:"script_tags"`
	TableTags        []uint32 `msgpack:"table_tags"`
	Codepoints       []byte   `msgpack:"codepoints"`
	IsVariable       bool     `msgpack:"is_variable"`
	WeightClass      *uint16  `msgpack:"weight_class"`
	WidthClass       *uint16  `msgpack:"width_class"`
	FamilyClassMajor *uint8   `msgpack:"family_class_major"`
	FamilyClassSub   *uint8   `msgpack:"family_class_sub"`
}

func tagSetToInts(s tag.Set) []uint32 {
	out := make([]uint32, len(s))
	for i, t := range s {
		out[i] = uint32(t)
	}
	return out
}

func intsToTagSet(ints []uint32) tag.Set {
	out := make(tag.Set, len(ints))
	for i, v := range ints {
		out[i] = tag.Tag(v)
	}
	return out
}

func encodeCodepoints(cps []rune) ([]byte, error) {
	bm := roaring.NewBitmap()
	for _, c := range cps {
		bm.Add(uint32(c))
	}
	return bm.ToBytes()
}

func decodeCodepoints(data []byte) ([]rune, error) {
	if len(data) == 0 {
		return nil, nil
	}
	bm := roaring.NewBitmap()
	if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	arr := bm.ToArray()
	out := make([]rune, len(arr))
	for i, v := range arr {
		out[i] = rune(v)
	}
	return out, nil
}

func toMetadataRow(path string, ttcIndex *uint32, m sfntmeta.FaceMetadata) (metadataRow, error) {
	cps, err := encodeCodepoints(m.Codepoints)
	if err != nil {
		return metadataRow{}, err
	}
	row := metadataRow{
		Path:        path,
		TTCIndex:    ttcIndex,
		Names:       m.Names,
		AxisTags:    tagSetToInts(m.AxisTags),
		FeatureTags: tagSetToInts(m.FeatureTags),
		ScriptTags:  tagSetToInts(m.ScriptTags),
		TableTags:   tagSetToInts(m.TableTags),
		Codepoints:  cps,
		IsVariable:  m.IsVariable,
		WeightClass: m.WeightClass,
		WidthClass:  m.WidthClass,
	}
	if m.FamilyClass != nil {
		major, sub := m.FamilyClass.Major, m.FamilyClass.Subclass
		row.FamilyClassMajor = &major
		row.FamilyClassSub = &sub
	}
	return row, nil
}

func (row metadataRow) toFaceMatch() (sfntmeta.FaceMatch, error) {
	cps, err := decodeCodepoints(row.Codepoints)
	if err != nil {
		return sfntmeta.FaceMatch{}, err
	}
	meta := sfntmeta.FaceMetadata{
		Names:       row.Names,
		AxisTags:    intsToTagSet(row.AxisTags),
		FeatureTags: intsToTagSet(row.FeatureTags),
		ScriptTags:  intsToTagSet(row.ScriptTags),
		TableTags:   intsToTagSet(row.TableTags),
		Codepoints:  cps,
		IsVariable:  row.IsVariable,
		WeightClass: row.WeightClass,
		WidthClass:  row.WidthClass,
	}
	if row.FamilyClassMajor != nil {
		meta.FamilyClass = &sfntmeta.FamilyClass{
			Major:    *row.FamilyClassMajor,
			Subclass: derefU8(row.FamilyClassSub),
		}
	}
	return sfntmeta.FaceMatch{
		Source:   sfntmeta.FaceSource{Path: row.Path, TTCIndex: row.TTCIndex},
		Metadata: meta,
	}, nil
}

func derefU8(p *uint8) uint8 {
	if p == nil {
		return 0
	}
	return *p
}

func marshalRow(row metadataRow) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(row); err != nil {
		return nil, typgerr.Wrap(typgerr.Serialization, err, "encoding metadata row")
	}
	return buf.Bytes(), nil
}

func unmarshalRow(data []byte) (metadataRow, error) {
	var row metadataRow
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&row); err != nil {
		return metadataRow{}, typgerr.Wrap(typgerr.Serialization, err, "decoding metadata row")
	}
	return row, nil
}

// tagsAndMarkers returns every inverted-index key touched by a face's
// metadata: one per axis/feature/script/table tag, plus the variable
// marker if applicable.
func tagsAndMarkers(m sfntmeta.FaceMetadata) [][]byte {
	var keys [][]byte
	for _, set := range []tag.Set{m.AxisTags, m.FeatureTags, m.ScriptTags, m.TableTags} {
		for _, t := range set {
			keys = append(keys, invertedKey(t))
		}
	}
	if m.IsVariable {
		keys = append(keys, varMarkerKey)
	}
	return keys
}
