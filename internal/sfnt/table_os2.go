package sfnt

import "github.com/fontlaborg/typg/tag"

var tagOS2 = tag.MustParse("OS/2")

// OS2Classification holds the three OS/2-derived numeric fields consumed
// by FaceMetadata: weight class, width class, and the family class
// (major, subclass) pair. A face with no OS/2 table yields all-absent
// (ok=false).
type OS2Classification struct {
	WeightClass, WidthClass uint16
	FamilyMajor, FamilySub  uint8
}

// OS2 reads the subset of the OS/2 table needed for classification. Only
// the fixed-offset fields present since OS/2 version 0 are read, so the
// table version is not consulted.
func (f *Face) OS2() (OS2Classification, bool, error) {
	if !f.HasTable(tagOS2) {
		return OS2Classification{}, false, nil
	}
	buf, err := f.TableBytes(tagOS2)
	if err != nil {
		// a malformed OS/2 table degrades to absent, not a fatal error.
		return OS2Classification{}, false, nil
	}
	r := reader{buf}

	weight, err := r.u16(4)
	if err != nil {
		return OS2Classification{}, false, nil
	}
	width, err := r.u16(6)
	if err != nil {
		return OS2Classification{}, false, nil
	}
	familyClass, err := r.i16(30)
	if err != nil {
		return OS2Classification{}, false, nil
	}
	raw := uint16(familyClass)

	return OS2Classification{
		WeightClass: weight,
		WidthClass:  width,
		FamilyMajor: uint8(raw >> 8),
		FamilySub:   uint8(raw & 0xFF),
	}, true, nil
}
