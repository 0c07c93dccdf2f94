// Package httpapi exposes the font catalog over HTTP: GET /health and
// POST /search, per spec.md §6's HTTP surface. It is a thin façade: all
// domain logic lives in search, fontindex, and query.
package httpapi

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fontlaborg/typg/fontindex"
	"github.com/fontlaborg/typg/internal/output"
	"github.com/fontlaborg/typg/internal/typgerr"
	"github.com/fontlaborg/typg/query"
	"github.com/fontlaborg/typg/search"
	"github.com/fontlaborg/typg/sfntmeta"
)

// searchRequest mirrors the JSON body shape from spec.md §6 verbatim.
type searchRequest struct {
	Paths          []string `json:"paths"`
	Axes           string   `json:"axes"`
	Features       string   `json:"features"`
	Scripts        string   `json:"scripts"`
	Tables         string   `json:"tables"`
	Names          []string `json:"names"`
	Codepoints     string   `json:"codepoints"`
	Text           string   `json:"text"`
	Variable       bool     `json:"variable"`
	FollowSymlinks bool     `json:"follow_symlinks"`
	Jobs           *int     `json:"jobs"`
	PathsOnly      bool     `json:"paths_only"`
	Weight         string   `json:"weight"`
	Width          string   `json:"width"`
	FamilyClass    string   `json:"family_class"`
	UseIndex       bool     `json:"use_index"`
	IndexPath      string   `json:"index_path"`
}

type searchResponse struct {
	Matches []output.JSONMatch `json:"matches"`
	Paths   []string           `json:"paths"`
}

// Server wraps the echo router and holds the zerolog logger it was built
// with; the /health and /search handlers write no log entries.
type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
}

// New builds a Server with /health and /search wired.
func New(logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	s := &Server{echo: e, logger: logger}
	e.GET("/health", s.handleHealth)
	e.POST("/search", s.handleSearch)
	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	if len(req.Paths) == 0 && !req.UseIndex {
		return c.JSON(http.StatusBadRequest, errorBody(
			typgerr.New(typgerr.InvalidArgument, "paths must be non-empty when use_index is false")))
	}
	if req.Jobs != nil && *req.Jobs == 0 {
		return c.JSON(http.StatusBadRequest, errorBody(
			typgerr.New(typgerr.InvalidArgument, "jobs must be a positive integer, got 0")))
	}

	q, err := buildQuery(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	var matches []sfntmeta.FaceMatch
	if req.UseIndex {
		matches, err = findViaIndex(req.IndexPath, q)
	} else {
		matches, err = search.Search(req.Paths, q, search.Options{
			FollowSymlinks: req.FollowSymlinks,
			Jobs:           req.Jobs,
		})
	}
	if err != nil {
		return c.JSON(statusForError(err), errorBody(err))
	}

	resp := searchResponse{}
	if req.PathsOnly {
		seen := make(map[string]bool, len(matches))
		for _, m := range matches {
			if !seen[m.Source.Path] {
				seen[m.Source.Path] = true
				resp.Paths = append(resp.Paths, m.Source.Path)
			}
		}
	} else {
		resp.Matches = make([]output.JSONMatch, len(matches))
		for i, m := range matches {
			resp.Matches[i] = output.ToJSONMatch(m)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func findViaIndex(indexPath string, q query.Query) ([]sfntmeta.FaceMatch, error) {
	idx, err := fontindex.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer idx.Close()
	r, err := idx.BeginRead()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Find(q)
}

func buildQuery(req searchRequest) (query.Query, error) {
	q := query.New()

	axes, err := query.ParseTagList(req.Axes)
	if err != nil {
		return q, err
	}
	features, err := query.ParseTagList(req.Features)
	if err != nil {
		return q, err
	}
	scripts, err := query.ParseTagList(req.Scripts)
	if err != nil {
		return q, err
	}
	tables, err := query.ParseTagList(req.Tables)
	if err != nil {
		return q, err
	}
	q = q.WithAxes(axes).WithFeatures(features).WithScripts(scripts).WithTables(tables).RequireVariable(req.Variable)

	if req.Codepoints != "" {
		cps, err := query.ParseCodepointList(req.Codepoints)
		if err != nil {
			return q, err
		}
		q = q.WithCodepoints(cps)
	}

	names := append([]string{}, req.Names...)
	if req.Text != "" {
		names = append(names, regexp.QuoteMeta(req.Text))
	}
	if len(names) > 0 {
		q, err = q.WithNamePatterns(names)
		if err != nil {
			return q, err
		}
	}

	if req.Weight != "" {
		r, err := query.ParseU16Range(req.Weight)
		if err != nil {
			return q, err
		}
		q = q.WithWeightRange(&r)
	}
	if req.Width != "" {
		r, err := query.ParseU16Range(req.Width)
		if err != nil {
			return q, err
		}
		q = q.WithWidthRange(&r)
	}
	if req.FamilyClass != "" {
		fc, err := query.ParseFamilyClass(req.FamilyClass)
		if err != nil {
			return q, err
		}
		q = q.WithFamilyClass(&fc)
	}
	return q, nil
}

func statusForError(err error) int {
	var te *typgerr.Error
	if errors.As(err, &te) {
		switch te.Kind {
		case typgerr.InvalidTag, typgerr.InvalidQuery, typgerr.InvalidArgument, typgerr.RootMissing:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
