package catalog

import (
	"log"
	"strconv"
	"strings"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/utils/sanitize"
)

// PageSize is the fixed number of movies per search result page.
const PageSize = 15

// SearchParams carries the raw, string-typed query parameters of the movie
// list view. Every field is optional; invalid values are ignored rather than
// rejected.
type SearchParams struct {
	Query     string
	Genre     string
	YearFrom  string
	YearTo    string
	RatingMin string
	SortBy    string
	HasRating string
	HasPoster string
	Page      string
}

// SearchResult is one page of matching movies. Warning is set when the
// search degraded to an empty result instead of failing the request.
type SearchResult struct {
	Movies     []models.Movie `json:"movies"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	Warning    string         `json:"warning,omitempty"`
}

// Search validates the raw parameters, builds the filtered query and returns
// one page of movies. Store errors degrade to an empty result with a warning.
func (s *Service) Search(params SearchParams) SearchResult {
	page := parsePage(params.Page)
	opts := buildOptions(params)
	opts.Limit = PageSize
	opts.Offset = (page - 1) * PageSize

	movies, total, err := s.db.Movies.Search(opts)
	if err != nil {
		log.Printf("[catalog] search failed: %v", err)
		return SearchResult{
			Movies:   []models.Movie{},
			Page:     page,
			PageSize: PageSize,
			Warning:  "Error filtering movies",
		}
	}

	totalPages := (total + PageSize - 1) / PageSize
	if movies == nil {
		movies = []models.Movie{}
	}
	return SearchResult{
		Movies:     movies,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
	}
}

// buildOptions translates raw string parameters into the validated filter
// set. Out-of-range years and unparseable numbers drop the filter silently.
func buildOptions(params SearchParams) database.SearchOptions {
	opts := database.SearchOptions{
		Query: sanitize.Clean(params.Query),
		Sort:  normalizeSort(params.SortBy),
	}

	if id, err := strconv.ParseInt(strings.TrimSpace(params.Genre), 10, 64); err == nil && id > 0 {
		opts.GenreID = id
	}

	if year, ok := parseYear(params.YearFrom); ok {
		opts.YearFrom = year
	}
	if year, ok := parseYear(params.YearTo); ok {
		opts.YearTo = year
	}

	if raw := strings.TrimSpace(params.RatingMin); raw != "" {
		if rating, err := strconv.ParseFloat(raw, 64); err == nil && rating >= 0 && rating <= 10 {
			opts.RatingMin = &rating
		}
	}

	opts.HasRating = parseTriState(params.HasRating)
	opts.HasPoster = parseTriState(params.HasPoster)

	return opts
}

// parseYear accepts only integers within the valid release year range.
func parseYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !models.ValidReleaseYear(year) {
		return 0, false
	}
	return year, true
}

// parseTriState maps "yes"/"no" to a filter and anything else to unset.
func parseTriState(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		v := true
		return &v
	case "no":
		v := false
		return &v
	}
	return nil
}

// normalizeSort restricts the sort key to the known set. The original
// implementation passed the parameter straight into the ordering expression;
// unknown keys now fall back to the default ordering instead.
func normalizeSort(raw string) string {
	switch strings.TrimSpace(raw) {
	case "rating", "rating_asc":
		return database.SortRatingAsc
	case "-rating", "rating_desc":
		return database.SortRatingDesc
	case "title":
		return database.SortTitleAsc
	case "-title":
		return database.SortTitleDesc
	case "release_year", "year":
		return database.SortYearAsc
	case "-release_year", "-year":
		return database.SortYearDesc
	default:
		return database.SortDefault
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
