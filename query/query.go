// Package query implements the typed predicate over FaceMetadata, and the
// parsers consumed by external collaborators (CLI, HTTP), per spec.md
// §4.4.
package query

import (
	"regexp"
	"sort"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
	"github.com/fontlaborg/typg/tag"
)

// Range is an inclusive [Lo, Hi] numeric range.
type Range struct {
	Lo, Hi uint16
}

// Contains reports whether v falls within the range.
func (r Range) Contains(v uint16) bool { return v >= r.Lo && v <= r.Hi }

// FamilyClassFilter matches an OS/2 family classification: Major always
// required, Subclass optional (nil means "any subclass").
type FamilyClassFilter struct {
	Major    uint8
	Subclass *uint8
}

// Query is the conjunction of independent filters described in spec.md §3.
// The zero Query matches every face. Query is built with With* methods
// returning a modified copy, mirroring the teacher's fluent option-setter
// style (see fontscan.FontMap.SetQuery).
type Query struct {
	axes, features, scripts, tables tag.Set
	namePatterns                    []*regexp.Regexp
	codepoints                      map[rune]bool
	requireVariable                 bool
	weightRange, widthRange         *Range
	familyClass                     *FamilyClassFilter
}

// New returns the empty Query, matching every face.
func New() Query { return Query{} }

func (q Query) WithAxes(tags tag.Set) Query       { q.axes = tags; return q }
func (q Query) WithFeatures(tags tag.Set) Query   { q.features = tags; return q }
func (q Query) WithScripts(tags tag.Set) Query    { q.scripts = tags; return q }
func (q Query) WithTables(tags tag.Set) Query     { q.tables = tags; return q }
func (q Query) RequireVariable(yes bool) Query    { q.requireVariable = yes; return q }
func (q Query) WithWeightRange(r *Range) Query    { q.weightRange = r; return q }
func (q Query) WithWidthRange(r *Range) Query     { q.widthRange = r; return q }
func (q Query) WithFamilyClass(f *FamilyClassFilter) Query {
	q.familyClass = f
	return q
}

// WithCodepoints sets the required codepoint coverage.
func (q Query) WithCodepoints(cps []rune) Query {
	if len(cps) == 0 {
		q.codepoints = nil
		return q
	}
	m := make(map[rune]bool, len(cps))
	for _, c := range cps {
		m[c] = true
	}
	q.codepoints = m
	return q
}

// WithNamePatterns compiles each pattern and attaches it to the query. It
// fails with typgerr.InvalidQuery if any pattern does not compile.
func (q Query) WithNamePatterns(patterns []string) (Query, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return q, typgerr.Wrap(typgerr.InvalidQuery, err, "invalid name pattern %q", p)
		}
		compiled = append(compiled, re)
	}
	q.namePatterns = compiled
	return q, nil
}

// Axes, Features, Scripts, Tables, NamePatterns, Codepoints, and
// FamilyClassFilter expose the query's clauses for the indexed query engine,
// which needs to consult them independently of Matches.
func (q Query) Axes() tag.Set                         { return q.axes }
func (q Query) Features() tag.Set                     { return q.features }
func (q Query) Scripts() tag.Set                      { return q.scripts }
func (q Query) Tables() tag.Set                       { return q.tables }
func (q Query) RequiresVariable() bool                { return q.requireVariable }
func (q Query) WeightRange() *Range                   { return q.weightRange }
func (q Query) WidthRange() *Range                    { return q.widthRange }
func (q Query) FamilyClassFilter() *FamilyClassFilter { return q.familyClass }
func (q Query) NamePatterns() []*regexp.Regexp        { return q.namePatterns }

// Codepoints returns the required codepoint set as a sorted slice.
func (q Query) Codepoints() []rune {
	out := make([]rune, 0, len(q.codepoints))
	for c := range q.codepoints {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Matches reports whether m satisfies every clause of q. Clauses are
// independent: an empty/absent clause is satisfied vacuously. Adding a
// clause to q can only shrink the set of faces it matches (monotonicity,
// spec.md §8).
func (q Query) Matches(m sfntmeta.FaceMetadata) bool {
	if q.requireVariable && !m.IsVariable {
		return false
	}
	if !m.AxisTags.ContainsAll(q.axes) {
		return false
	}
	if !m.FeatureTags.ContainsAll(q.features) {
		return false
	}
	if !m.ScriptTags.ContainsAll(q.scripts) {
		return false
	}
	if !m.TableTags.ContainsAll(q.tables) {
		return false
	}
	if q.weightRange != nil {
		if m.WeightClass == nil || !q.weightRange.Contains(*m.WeightClass) {
			return false
		}
	}
	if q.widthRange != nil {
		if m.WidthClass == nil || !q.widthRange.Contains(*m.WidthClass) {
			return false
		}
	}
	if q.familyClass != nil {
		if m.FamilyClass == nil || m.FamilyClass.Major != q.familyClass.Major {
			return false
		}
		if q.familyClass.Subclass != nil && m.FamilyClass.Subclass != *q.familyClass.Subclass {
			return false
		}
	}
	if len(q.codepoints) > 0 {
		have := make(map[rune]bool, len(m.Codepoints))
		for _, c := range m.Codepoints {
			have[c] = true
		}
		for c := range q.codepoints {
			if !have[c] {
				return false
			}
		}
	}
	if len(q.namePatterns) > 0 {
		matched := false
		for _, name := range m.Names {
			for _, re := range q.namePatterns {
				if re.MatchString(name) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
