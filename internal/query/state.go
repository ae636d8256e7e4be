package query

import (
	"net/url"
	"strconv"
	"strings"
)

// State is the full search page state.
type State struct {
	FreeText string
	Page     int
	Filters  Filters
}

func DefaultState() State {
	return State{Page: 1, Filters: DefaultFilters()}
}

// Recognized URL parameters. These names are the shareable-link
// contract and must not change.
const (
	paramQuery      = "q"
	paramPage       = "page"
	paramSort       = "sortBy"
	paramGenres     = "genres"
	paramGenre      = "genreId"
	paramYearFrom   = "gte"
	paramYearTo     = "lte"
	paramRatingFrom = "vagte"
	paramRatingTo   = "valte"
	paramMediaType  = "type"
)

// Hydrate parses the recognized parameters into a State. Malformed or
// unknown values are silently coerced to their defaults so a mangled
// link still renders.
func Hydrate(values url.Values) State {
	state := DefaultState()
	state.FreeText = values.Get(paramQuery)

	if page, err := strconv.Atoi(values.Get(paramPage)); err == nil && page >= 1 {
		state.Page = page
	}

	state.Filters.Sort = ParseSortKey(values.Get(paramSort))
	if values.Has(paramGenres) {
		state.Filters.GenreIDs = parseGenreIDs(values.Get(paramGenres))
	} else {
		// Singular alias, honored only when the list param is absent.
		state.Filters.GenreIDs = parseGenreIDs(values.Get(paramGenre))
	}
	state.Filters.YearFrom = parseYear(values.Get(paramYearFrom))
	state.Filters.YearTo = parseYear(values.Get(paramYearTo))
	state.Filters.RatingFrom = parseRating(values.Get(paramRatingFrom))
	state.Filters.RatingTo = parseRating(values.Get(paramRatingTo))

	switch mt := MediaType(values.Get(paramMediaType)); mt {
	case MediaMovie, MediaTV:
		state.Filters.MediaType = mt
	}

	return state
}

// Values serializes the state back to URL parameters. Fields equal to
// their default are omitted so links stay minimal; the page number is
// always included. Hydrate(s.Values()) is equivalent to s for any
// state built from recognized values.
func (s State) Values() url.Values {
	values := url.Values{}
	if text := strings.TrimSpace(s.FreeText); text != "" {
		values.Set(paramQuery, text)
	}

	f := s.Filters
	if f.Sort != DefaultSort() {
		values.Set(paramSort, f.Sort.String())
	}
	if len(f.GenreIDs) > 0 {
		values.Set(paramGenres, joinGenreIDs(f.GenreIDs))
	}
	if f.YearFrom != "" {
		values.Set(paramYearFrom, f.YearFrom)
	}
	if f.YearTo != "" {
		values.Set(paramYearTo, f.YearTo)
	}
	if f.RatingFrom != nil {
		values.Set(paramRatingFrom, formatRating(*f.RatingFrom))
	}
	if f.RatingTo != nil {
		values.Set(paramRatingTo, formatRating(*f.RatingTo))
	}
	if f.MediaType != MediaAll && f.MediaType != "" {
		values.Set(paramMediaType, string(f.MediaType))
	}

	page := s.Page
	if page < 1 {
		page = 1
	}
	values.Set(paramPage, strconv.Itoa(page))

	return values
}

func parseGenreIDs(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []int
	seen := make(map[int]struct{})
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func joinGenreIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// parseYear accepts only a 4-digit year string.
func parseYear(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != 4 {
		return ""
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return raw
}

// parseRating accepts a number in [1,10].
func parseRating(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 1 || val > 10 {
		return nil
	}
	return &val
}

func formatRating(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
