package cli

import (
	"github.com/spf13/cobra"

	"github.com/fontlaborg/typg/query"
)

// queryFlags holds the shared predicate flags used by both "find" and
// "cache find", per spec.md §6's CLI surface.
type queryFlags struct {
	axes        string
	features    string
	scripts     string
	tables      string
	names       []string
	codepoints  string
	variable    bool
	weight      string
	width       string
	familyClass string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.axes, "axes", "", "comma-separated variation axis tags")
	cmd.Flags().StringVar(&f.features, "features", "", "comma-separated GSUB/GPOS feature tags")
	cmd.Flags().StringVar(&f.scripts, "scripts", "", "comma-separated script tags")
	cmd.Flags().StringVar(&f.tables, "tables", "", "comma-separated table tags")
	cmd.Flags().StringArrayVar(&f.names, "name", nil, "name regex (repeatable)")
	cmd.Flags().StringVar(&f.codepoints, "codepoints", "", "comma-separated codepoints, U+HHHH literals, or ranges")
	cmd.Flags().BoolVar(&f.variable, "variable", false, "require a variable font (fvar table present)")
	cmd.Flags().StringVar(&f.weight, "weight", "", "usWeightClass value or lo-hi range")
	cmd.Flags().StringVar(&f.width, "width", "", "usWidthClass value or lo-hi range")
	cmd.Flags().StringVar(&f.familyClass, "family-class", "", "OS/2 family class: name, M, M.S, or 0xHHHH")
}

func (f *queryFlags) build() (query.Query, error) {
	q := query.New()

	axes, err := query.ParseTagList(f.axes)
	if err != nil {
		return q, err
	}
	features, err := query.ParseTagList(f.features)
	if err != nil {
		return q, err
	}
	scripts, err := query.ParseTagList(f.scripts)
	if err != nil {
		return q, err
	}
	tables, err := query.ParseTagList(f.tables)
	if err != nil {
		return q, err
	}
	q = q.WithAxes(axes).WithFeatures(features).WithScripts(scripts).WithTables(tables).RequireVariable(f.variable)

	if len(f.names) > 0 {
		q, err = q.WithNamePatterns(f.names)
		if err != nil {
			return q, err
		}
	}
	if f.codepoints != "" {
		cps, err := query.ParseCodepointList(f.codepoints)
		if err != nil {
			return q, err
		}
		q = q.WithCodepoints(cps)
	}
	if f.weight != "" {
		r, err := query.ParseU16Range(f.weight)
		if err != nil {
			return q, err
		}
		q = q.WithWeightRange(&r)
	}
	if f.width != "" {
		r, err := query.ParseU16Range(f.width)
		if err != nil {
			return q, err
		}
		q = q.WithWidthRange(&r)
	}
	if f.familyClass != "" {
		fc, err := query.ParseFamilyClass(f.familyClass)
		if err != nil {
			return q, err
		}
		q = q.WithFamilyClass(&fc)
	}
	return q, nil
}

// outputFlags holds the shared format-selector flags.
type outputFlags struct {
	asJSON   bool
	asNDJSON bool
	asPaths  bool
	asCount  bool
	color    string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "emit a pretty JSON array")
	cmd.Flags().BoolVar(&f.asNDJSON, "ndjson", false, "emit newline-delimited JSON")
	cmd.Flags().BoolVar(&f.asPaths, "paths", false, "emit bare face source paths")
	cmd.Flags().BoolVar(&f.asCount, "count", false, "emit only the match count")
	cmd.Flags().StringVar(&f.color, "color", "auto", "auto|always|never")
}
