// Package query keeps the three representations of the search state
// (free text input, structured filters, URL query string) consistent,
// and decides which remote metadata call a given state maps to. The
// URL is the durable source of truth: state is hydrated from it on
// navigation and pushed back after every mutation so reloads, history
// navigation and shared links reproduce identical results.
//
// Superseded in-flight remote calls are not cancelled or sequenced;
// the last response to arrive wins. Known gap, kept on purpose to
// match the behavior this package was extracted from.
package query

import (
	"strconv"
	"strings"
)

type SortProperty string

const (
	SortPopularity  SortProperty = "popularity"
	SortReleaseDate SortProperty = "primary_release_date"
	SortRevenue     SortProperty = "revenue"
	SortVoteAverage SortProperty = "vote_average"
	SortVoteCount   SortProperty = "vote_count"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortKey is a sort property plus direction, serialized on the wire as
// "<property>.<direction>".
type SortKey struct {
	Property  SortProperty
	Direction SortDirection
}

func DefaultSort() SortKey {
	return SortKey{Property: SortPopularity, Direction: Descending}
}

func (k SortKey) String() string {
	return string(k.Property) + "." + string(k.Direction)
}

// ParseSortKey parses "<property>.<direction>", falling back to the
// default on anything unrecognized.
func ParseSortKey(raw string) SortKey {
	prop, dir, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok {
		return DefaultSort()
	}
	key := SortKey{Property: SortProperty(prop), Direction: SortDirection(dir)}
	if !key.valid() {
		return DefaultSort()
	}
	return key
}

func (k SortKey) valid() bool {
	switch k.Property {
	case SortPopularity, SortReleaseDate, SortRevenue, SortVoteAverage, SortVoteCount:
	default:
		return false
	}
	switch k.Direction {
	case Ascending, Descending:
	default:
		return false
	}
	return true
}

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
	MediaAll   MediaType = "all"
)

// Filters is the structured filter set. The zero value is not the
// default state; use DefaultFilters.
type Filters struct {
	Sort       SortKey
	GenreIDs   []int
	YearFrom   string // 4-digit year, inclusive
	YearTo     string
	RatingFrom *float64 // vote average in [1,10], inclusive
	RatingTo   *float64
	MediaType  MediaType
}

func DefaultFilters() Filters {
	return Filters{Sort: DefaultSort(), MediaType: MediaAll}
}

// Active reports whether any field differs from its default. An
// inactive filter set with no free text means there is nothing to
// show beyond the default listing, and nothing to paginate.
func (f Filters) Active() bool {
	return f.Sort != DefaultSort() ||
		len(f.GenreIDs) > 0 ||
		f.YearFrom != "" ||
		f.YearTo != "" ||
		f.RatingFrom != nil ||
		f.RatingTo != nil ||
		f.MediaType != MediaAll
}

// PinnedYear returns the single year the release range collapses to,
// or nil when the bounds differ or are unset. A pinned year is the
// only structured filter that survives free-text search.
func (f Filters) PinnedYear() *int {
	if f.YearFrom == "" || f.YearFrom != f.YearTo {
		return nil
	}
	year, err := strconv.Atoi(f.YearFrom)
	if err != nil {
		return nil
	}
	return &year
}
