// Package output renders FaceMatch results in the formats the CLI and
// HTTP façades expose: pretty JSON, newline-delimited JSON, a columnar
// table, and bare paths, per spec.md §6. It also reads back the JSON
// cache file format the same façades write.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/sfntmeta"
)

// jsonSource and jsonMetadata mirror the exchangeable textual encoding in
// spec.md §6 exactly: tags as 4-char strings, codepoints as one-char
// strings, family_class as a [major, subclass] pair or null.
type jsonSource struct {
	Path     string  `json:"path"`
	TTCIndex *uint32 `json:"ttc_index"`
}

type jsonMetadata struct {
	Names       []string `json:"names"`
	AxisTags    []string `json:"axis_tags"`
	FeatureTags []string `json:"feature_tags"`
	ScriptTags  []string `json:"script_tags"`
	TableTags   []string `json:"table_tags"`
	Codepoints  []string `json:"codepoints"`
	IsVariable  bool     `json:"is_variable"`
	WeightClass *uint16  `json:"weight_class"`
	WidthClass  *uint16  `json:"width_class"`
	FamilyClass *[2]uint `json:"family_class"`
}

// JSONMatch is the wire shape of one FaceMatch.
type JSONMatch struct {
	Source   jsonSource   `json:"source"`
	Metadata jsonMetadata `json:"metadata"`
}

// ToJSONMatch converts a FaceMatch into its wire representation.
func ToJSONMatch(m sfntmeta.FaceMatch) JSONMatch {
	meta := m.Metadata
	var familyClass *[2]uint
	if meta.FamilyClass != nil {
		familyClass = &[2]uint{uint(meta.FamilyClass.Major), uint(meta.FamilyClass.Subclass)}
	}
	codepoints := make([]string, len(meta.Codepoints))
	for i, c := range meta.Codepoints {
		codepoints[i] = string(c)
	}
	return JSONMatch{
		Source: jsonSource{Path: m.Source.Path, TTCIndex: m.Source.TTCIndex},
		Metadata: jsonMetadata{
			Names:       meta.Names,
			AxisTags:    tagStrings(meta.AxisTags),
			FeatureTags: tagStrings(meta.FeatureTags),
			ScriptTags:  tagStrings(meta.ScriptTags),
			TableTags:   tagStrings(meta.TableTags),
			Codepoints:  codepoints,
			IsVariable:  meta.IsVariable,
			WeightClass: meta.WeightClass,
			WidthClass:  meta.WidthClass,
			FamilyClass: familyClass,
		},
	}
}

type stringerTag interface{ String() string }

func tagStrings[T stringerTag](set []T) []string {
	out := make([]string, len(set))
	for i, t := range set {
		out[i] = strings.TrimRight(t.String(), " ")
	}
	return out
}

// WriteJSON writes matches as a pretty-printed JSON array.
func WriteJSON(w io.Writer, matches []sfntmeta.FaceMatch) error {
	out := make([]JSONMatch, len(matches))
	for i, m := range matches {
		out[i] = ToJSONMatch(m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return typgerr.Wrap(typgerr.Serialization, err, "writing json output")
	}
	return nil
}

// WriteNDJSON writes one compact JSON object per match, newline-delimited.
func WriteNDJSON(w io.Writer, matches []sfntmeta.FaceMatch) error {
	enc := json.NewEncoder(w)
	for _, m := range matches {
		if err := enc.Encode(ToJSONMatch(m)); err != nil {
			return typgerr.Wrap(typgerr.Serialization, err, "writing ndjson output")
		}
	}
	return nil
}

// WriteColumns writes a human-readable column table: path, ttc index,
// primary name, weight, width.
func WriteColumns(w io.Writer, matches []sfntmeta.FaceMatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tTTC\tNAME\tWEIGHT\tWIDTH")
	for _, m := range matches {
		ttc := "-"
		if m.Source.TTCIndex != nil {
			ttc = fmt.Sprintf("%d", *m.Source.TTCIndex)
		}
		name := "-"
		if len(m.Metadata.Names) > 0 {
			name = m.Metadata.Names[0]
		}
		weight, width := "-", "-"
		if m.Metadata.WeightClass != nil {
			weight = fmt.Sprintf("%d", *m.Metadata.WeightClass)
		}
		if m.Metadata.WidthClass != nil {
			width = fmt.Sprintf("%d", *m.Metadata.WidthClass)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Source.String(), ttc, name, weight, width)
	}
	return tw.Flush()
}

// WritePaths writes one rendered FaceSource per line.
func WritePaths(w io.Writer, matches []sfntmeta.FaceMatch) error {
	bw := bufio.NewWriter(w)
	for _, m := range matches {
		if _, err := fmt.Fprintln(bw, m.Source.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCount writes the number of matches, nothing else.
func WriteCount(w io.Writer, n int) error {
	_, err := fmt.Fprintln(w, n)
	return err
}
