package query

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/tag"
)

// ParseTagList parses a comma-separated list of 1-4 character tag
// strings.
func ParseTagList(raw string) (tag.Set, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var tags tag.Set
	for _, part := range strings.Split(raw, ",") {
		t, err := tag.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, typgerr.Wrap(typgerr.InvalidTag, err, "parsing tag list %q", raw)
		}
		tags = append(tags, t)
	}
	return tag.NewSet(tags...), nil
}

// ParseCodepointList parses a comma-separated list of single characters,
// "U+HHHH" literals, or inclusive ranges ("A-B") of either form, per
// spec.md §4.4. Swapped range bounds are normalized; surrogate scalar
// values are silently skipped.
func ParseCodepointList(input string) ([]rune, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var out []rune
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := rangeDashIndex(part); idx >= 0 {
			loStr, hiStr := part[:idx], part[idx+1:]
			lo, err := parseCodepoint(loStr)
			if err != nil {
				return nil, err
			}
			hi, err := parseCodepoint(hiStr)
			if err != nil {
				return nil, err
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for c := lo; c <= hi; c++ {
				if isSurrogate(c) {
					continue
				}
				out = append(out, rune(c))
			}
			continue
		}
		cp, err := parseCodepoint(part)
		if err != nil {
			return nil, err
		}
		if !isSurrogate(cp) {
			out = append(out, rune(cp))
		}
	}
	return out, nil
}

// rangeDashIndex finds the '-' separating a range's bounds, tolerating a
// single literal character token (itself potentially "-").
func rangeDashIndex(part string) int {
	if !strings.Contains(part, "-") {
		return -1
	}
	// a single-character token that happens to be "-" is a literal dash,
	// not a range.
	if part == "-" {
		return -1
	}
	return strings.LastIndex(part, "-")
}

func parseCodepoint(token string) (uint32, error) {
	runes := []rune(token)
	if len(runes) == 1 {
		return uint32(runes[0]), nil
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(token, "U+"), "u+")
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid codepoint %q", token)
	}
	return uint32(v), nil
}

func isSurrogate(cp uint32) bool {
	return cp >= uint32(utf16.SurrogateMin) && cp <= uint32(utf16.SurrogateMax)
}

// ParseU16Range parses a single value or an inclusive "lo-hi" range of
// uint16 numbers, normalizing swapped bounds.
func ParseU16Range(input string) (Range, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Range{}, typgerr.New(typgerr.InvalidQuery, "range cannot be empty")
	}
	if lo, hi, ok := strings.Cut(input, "-"); ok {
		loV, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 16)
		if err != nil {
			return Range{}, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid range bound %q", lo)
		}
		hiV, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 16)
		if err != nil {
			return Range{}, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid range bound %q", hi)
		}
		if loV > hiV {
			loV, hiV = hiV, loV
		}
		return Range{Lo: uint16(loV), Hi: uint16(hiV)}, nil
	}
	v, err := strconv.ParseUint(input, 10, 16)
	if err != nil {
		return Range{}, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid numeric value %q", input)
	}
	return Range{Lo: uint16(v), Hi: uint16(v)}, nil
}

// familyClassAliases maps friendly OS/2 family-class names to their major
// class ID, carried verbatim from the original implementation's alias
// table (see DESIGN.md).
var familyClassAliases = map[string]uint8{
	"none":           0,
	"no-class":       0,
	"uncategorized":  0,
	"oldstyle":       1,
	"old-style":      1,
	"oldstyle-serif": 1,
	"transitional":   2,
	"modern":         3,
	"clarendon":      4,
	"slab":           5,
	"slab-serif":     5,
	"egyptian":       5,
	"freeform":       7,
	"freeform-serif": 7,
	"sans":           8,
	"sans-serif":     8,
	"gothic":         8,
	"ornamental":     9,
	"decorative":     9,
	"script":         10,
	"symbolic":       12,
}

// ParseFamilyClass parses the decimal "M", dotted "M.S", colon "M:S",
// hexadecimal "0xHHHH", or friendly-name forms of an OS/2 family class
// filter, per spec.md §4.4.
func ParseFamilyClass(input string) (FamilyClassFilter, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return FamilyClassFilter{}, typgerr.New(typgerr.InvalidQuery, "family class cannot be empty")
	}
	lower := strings.ToLower(trimmed)

	if major, ok := familyClassAliases[lower]; ok {
		return FamilyClassFilter{Major: major}, nil
	}

	if major, sub, ok := splitMajorSub(lower); ok {
		return FamilyClassFilter{Major: major, Subclass: &sub}, nil
	}

	var value uint64
	var err error
	if hex, ok := strings.CutPrefix(lower, "0x"); ok {
		value, err = strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return FamilyClassFilter{}, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid hex family class %q", trimmed)
		}
	} else {
		value, err = strconv.ParseUint(lower, 10, 16)
		if err != nil {
			return FamilyClassFilter{}, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid family class %q", trimmed)
		}
	}

	if value <= 0xFF {
		return FamilyClassFilter{Major: uint8(value)}, nil
	}
	major := uint8(value >> 8)
	sub := uint8(value & 0xFF)
	return FamilyClassFilter{Major: major, Subclass: &sub}, nil
}

func splitMajorSub(raw string) (major, sub uint8, ok bool) {
	for _, sep := range []string{".", ":"} {
		if lo, hi, found := strings.Cut(raw, sep); found {
			majorV, err := strconv.ParseUint(lo, 10, 8)
			if err != nil {
				return 0, 0, false
			}
			subV, err := strconv.ParseUint(hi, 10, 8)
			if err != nil {
				return 0, 0, false
			}
			return uint8(majorV), uint8(subV), true
		}
	}
	return 0, 0, false
}
