package tmdb

// Page is the paged result envelope every list endpoint returns.
type Page[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

type TVShow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

type Person struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        *string `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
	KnownForDepartment string  `json:"known_for_department"`
}

// Result is the tagged media variant used wherever movies, series and
// people travel through one list. Consumers switch on MediaType
// instead of probing which fields happen to be set.
type Result struct {
	MediaType    string  `json:"media_type"` // movie | tv | person
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	VoteCount    int     `json:"vote_count,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`

	// person only
	KnownForDepartment string `json:"known_for_department,omitempty"`
}

func MovieResults(items []Movie) []Result {
	out := make([]Result, 0, len(items))
	for _, m := range items {
		out = append(out, Result{
			MediaType:    "movie",
			ID:           m.ID,
			Title:        m.Title,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			ReleaseDate:  m.ReleaseDate,
			Overview:     m.Overview,
			VoteAverage:  m.VoteAverage,
			VoteCount:    m.VoteCount,
			GenreIDs:     m.GenreIDs,
			Popularity:   m.Popularity,
		})
	}
	return out
}

func TVResults(items []TVShow) []Result {
	out := make([]Result, 0, len(items))
	for _, t := range items {
		out = append(out, Result{
			MediaType:    "tv",
			ID:           t.ID,
			Title:        t.Name,
			PosterPath:   t.PosterPath,
			BackdropPath: t.BackdropPath,
			ReleaseDate:  t.FirstAirDate,
			Overview:     t.Overview,
			VoteAverage:  t.VoteAverage,
			VoteCount:    t.VoteCount,
			GenreIDs:     t.GenreIDs,
			Popularity:   t.Popularity,
		})
	}
	return out
}

func PeopleResults(items []Person) []Result {
	out := make([]Result, 0, len(items))
	for _, p := range items {
		out = append(out, Result{
			MediaType:          "person",
			ID:                 p.ID,
			Title:              p.Name,
			PosterPath:         p.ProfilePath,
			Popularity:         p.Popularity,
			KnownForDepartment: p.KnownForDepartment,
		})
	}
	return out
}

func MoviePage(p Page[Movie]) Page[Result] {
	return Page[Result]{
		Page:         p.Page,
		Results:      MovieResults(p.Results),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

func TVPage(p Page[TVShow]) Page[Result] {
	return Page[Result]{
		Page:         p.Page,
		Results:      TVResults(p.Results),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

func PeoplePage(p Page[Person]) Page[Result] {
	return Page[Result]{
		Page:         p.Page,
		Results:      PeopleResults(p.Results),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

type CrewMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type VideoList struct {
	Results []Video `json:"results"`
}

type ReviewAuthor struct {
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	AvatarPath *string  `json:"avatar_path"`
	Rating     *float64 `json:"rating"`
}

type Review struct {
	ID            string       `json:"id"`
	Author        string       `json:"author"`
	AuthorDetails ReviewAuthor `json:"author_details"`
	Content       string       `json:"content"`
	CreatedAt     string       `json:"created_at"`
	URL           string       `json:"url"`
}

type ReleaseDate struct {
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
	Type          int    `json:"type"`
}

type CountryReleaseDates struct {
	CountryCode  string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

type ReleaseDatesList struct {
	Results []CountryReleaseDates `json:"results"`
}

// MovieDetails is the movie detail payload including the appended
// sub-resources requested alongside it.
type MovieDetails struct {
	Movie
	Genres          []Genre           `json:"genres"`
	Runtime         *int              `json:"runtime"`
	Tagline         *string           `json:"tagline"`
	Status          string            `json:"status"`
	Homepage        *string           `json:"homepage"`
	IMDbID          *string           `json:"imdb_id"`
	Videos          *VideoList        `json:"videos,omitempty"`
	Credits         *Credits          `json:"credits,omitempty"`
	Reviews         *Page[Review]     `json:"reviews,omitempty"`
	Recommendations *Page[Movie]      `json:"recommendations,omitempty"`
	ReleaseDates    *ReleaseDatesList `json:"release_dates,omitempty"`
}

type TVDetails struct {
	TVShow
	Genres           []Genre       `json:"genres"`
	EpisodeRunTime   []int         `json:"episode_run_time"`
	NumberOfEpisodes int           `json:"number_of_episodes"`
	NumberOfSeasons  int           `json:"number_of_seasons"`
	Tagline          *string       `json:"tagline"`
	Status           string        `json:"status"`
	Homepage         *string       `json:"homepage"`
	Videos           *VideoList    `json:"videos,omitempty"`
	Credits          *Credits      `json:"credits,omitempty"`
	Reviews          *Page[Review] `json:"reviews,omitempty"`
	Recommendations  *Page[TVShow] `json:"recommendations,omitempty"`
}

// CreditEntry is one role in a person's combined credits. TMDB tags
// each entry with its media type.
type CreditEntry struct {
	MediaType    string  `json:"media_type"`
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Character    string  `json:"character"`
	PosterPath   *string `json:"poster_path"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

type CombinedCredits struct {
	Cast []CreditEntry `json:"cast"`
}

type PersonDetails struct {
	Person
	Biography       string           `json:"biography"`
	Birthday        *string          `json:"birthday"`
	Deathday        *string          `json:"deathday"`
	PlaceOfBirth    *string          `json:"place_of_birth"`
	CombinedCredits *CombinedCredits `json:"combined_credits,omitempty"`
}
