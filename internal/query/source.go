package query

import "strings"

// Mode selects which remote endpoint serves a state.
type Mode string

const (
	ModeSearch   Mode = "search"
	ModeDiscover Mode = "discover"
)

// Source is the resolved target for a remote call.
type Source struct {
	Mode      Mode
	MediaType MediaType
}

// ResolveDataSource picks the search endpoint when free text is
// present and the discover endpoint otherwise.
func ResolveDataSource(freeText string, filters Filters) Source {
	mode := ModeDiscover
	if strings.TrimSpace(freeText) != "" {
		mode = ModeSearch
	}
	return Source{Mode: mode, MediaType: filters.MediaType}
}

// RemoteQuery is the parameter set actually forwarded to the metadata
// API for a given state.
type RemoteQuery struct {
	Mode      Mode
	MediaType MediaType // movie or tv, never all
	Page      int

	// Search mode only.
	Text string
	Year *int // pinned single year

	// Discover mode only.
	Sort       string
	GenreIDs   []int
	YearFrom   string
	YearTo     string
	RatingFrom *float64
	RatingTo   *float64
}

// BuildRemoteQuery maps a state to the outgoing call. Under free-text
// search every structured filter except a pinned single year is
// suppressed; the search endpoint does not support them. Media type
// "all" falls back to movie.
func BuildRemoteQuery(s State) RemoteQuery {
	source := ResolveDataSource(s.FreeText, s.Filters)
	mediaType := source.MediaType
	if mediaType != MediaTV {
		mediaType = MediaMovie
	}
	page := s.Page
	if page < 1 {
		page = 1
	}

	if source.Mode == ModeSearch {
		return RemoteQuery{
			Mode:      ModeSearch,
			MediaType: mediaType,
			Page:      page,
			Text:      strings.TrimSpace(s.FreeText),
			Year:      s.Filters.PinnedYear(),
		}
	}

	return RemoteQuery{
		Mode:       ModeDiscover,
		MediaType:  mediaType,
		Page:       page,
		Sort:       s.Filters.Sort.String(),
		GenreIDs:   s.Filters.GenreIDs,
		YearFrom:   s.Filters.YearFrom,
		YearTo:     s.Filters.YearTo,
		RatingFrom: s.Filters.RatingFrom,
		RatingTo:   s.Filters.RatingTo,
	}
}

// FilterSuppressionNotice tells the user that structured filters are
// disabled while free-text search is active.
const FilterSuppressionNotice = "When searching by title, only a year range set to a single year is applied. " +
	"All other filters (sort, genres, rating range) are disabled. Clear the search box to use them."

// SuppressionNotice returns the user-facing notice when free-text
// search is active, and an empty string otherwise.
func SuppressionNotice(freeText string) string {
	if strings.TrimSpace(freeText) == "" {
		return ""
	}
	return FilterSuppressionNotice
}
