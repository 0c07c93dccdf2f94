package sfnt

import "github.com/fontlaborg/typg/tag"

var (
	tagGSUB = tag.MustParse("GSUB")
	tagGPOS = tag.MustParse("GPOS")
)

// ScriptAndFeatureTags unions the script and feature tags declared by the
// face's GSUB and GPOS tables, per spec.md §4.3. Either or both tables may
// be absent, in which case the corresponding contribution is empty.
func (f *Face) ScriptAndFeatureTags() (scripts, features []tag.Tag, err error) {
	for _, t := range [...]tag.Tag{tagGSUB, tagGPOS} {
		if !f.HasTable(t) {
			continue
		}
		buf, err := f.TableBytes(t)
		if err != nil {
			// a table record pointing past the end of the file is treated
			// like any other malformed GSUB/GPOS: it contributes nothing.
			continue
		}
		s, ft, err := parseScriptAndFeatureLists(buf)
		if err != nil {
			// a malformed GSUB/GPOS should not fail the whole face; the
			// table is simply treated as contributing nothing.
			continue
		}
		scripts = append(scripts, s...)
		features = append(features, ft...)
	}
	return scripts, features, nil
}

func parseScriptAndFeatureLists(buf []byte) (scripts, features []tag.Tag, err error) {
	r := reader{buf}

	scriptListOffset, err := r.u16(4)
	if err != nil {
		return nil, nil, err
	}
	featureListOffset, err := r.u16(6)
	if err != nil {
		return nil, nil, err
	}

	if scriptListOffset != 0 {
		scripts, err = parseTagRecordList(r, uint32(scriptListOffset))
		if err != nil {
			return nil, nil, err
		}
	}
	if featureListOffset != 0 {
		features, err = parseTagRecordList(r, uint32(featureListOffset))
		if err != nil {
			return nil, nil, err
		}
	}
	return scripts, features, nil
}

// parseTagRecordList reads a ScriptList or FeatureList: a uint16 count
// followed by count (Tag, Offset16) records. Only the tag is needed.
func parseTagRecordList(r reader, base uint32) ([]tag.Tag, error) {
	count, err := r.u16(base)
	if err != nil {
		return nil, err
	}
	tags := make([]tag.Tag, 0, count)
	for i := uint16(0); i < count; i++ {
		recOff := base + 2 + uint32(i)*6
		t, err := r.tag(recOff)
		if err != nil {
			return tags, nil
		}
		tags = append(tags, t)
	}
	return tags, nil
}
