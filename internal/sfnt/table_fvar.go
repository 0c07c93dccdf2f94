package sfnt

import "github.com/fontlaborg/typg/tag"

var tagFvar = tag.MustParse("fvar")

// AxisTags returns the axis tags declared in the fvar table, or nil if the
// face has none (static face).
func (f *Face) AxisTags() ([]tag.Tag, error) {
	if !f.HasTable(tagFvar) {
		return nil, nil
	}
	buf, err := f.TableBytes(tagFvar)
	if err != nil {
		// a malformed fvar should not abort the whole face; treat it as
		// a static face rather than failing the extraction.
		return nil, nil
	}
	r := reader{buf}

	axesArrayOffset, err := r.u16(4)
	if err != nil {
		return nil, nil
	}
	axisCount, err := r.u16(8)
	if err != nil {
		return nil, nil
	}
	axisSize, err := r.u16(10)
	if err != nil {
		return nil, nil
	}

	tags := make([]tag.Tag, 0, axisCount)
	for i := uint16(0); i < axisCount; i++ {
		off := uint32(axesArrayOffset) + uint32(i)*uint32(axisSize)
		t, err := r.tag(off)
		if err != nil {
			return tags, nil
		}
		tags = append(tags, t)
	}
	return tags, nil
}
