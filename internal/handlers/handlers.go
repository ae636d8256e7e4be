// Package handlers wires HTTP routing and API handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sourcegraph/conc/pool"

	"cinescope/internal/query"
	"cinescope/internal/tmdb"
	"cinescope/internal/wishlist"
)

const fetchFailedMessage = "Failed to fetch results. Please try again."

type Handler struct {
	tmdb     *tmdb.Client
	wishlist *wishlist.Store
	genres   genreCache
}

type Config struct {
	TMDB     *tmdb.Client
	Wishlist *wishlist.Store
}

type genreCache struct {
	mu        sync.RWMutex
	movie     []tmdb.Genre
	tv        []tmdb.Genre
	fetchedAt time.Time
}

const genreCacheTTL = 24 * time.Hour

func New(cfg *Config) (*Handler, error) {
	if cfg.TMDB == nil {
		return nil, errors.New("tmdb client is required")
	}
	if cfg.Wishlist == nil {
		return nil, errors.New("wishlist store is required")
	}
	return &Handler{
		tmdb:     cfg.TMDB,
		wishlist: cfg.Wishlist,
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method(http.MethodGet, "/search", Adapt(h.getSearch))
	r.Method(http.MethodGet, "/home", Adapt(h.getHome))
	r.Method(http.MethodGet, "/genres", Adapt(h.getGenres))

	r.Method(http.MethodGet, "/movies", Adapt(h.getMovies))
	r.Method(http.MethodGet, "/series", Adapt(h.getSeries))
	r.Method(http.MethodGet, "/people", Adapt(h.getPeople))

	r.Method(http.MethodGet, "/movies/{id:[0-9]+}", Adapt(h.getMovie))
	r.Method(http.MethodGet, "/series/{id:[0-9]+}", Adapt(h.getSeriesByID))
	r.Method(http.MethodGet, "/person/{id:[0-9]+}", Adapt(h.getPerson))

	r.Route("/wishlist", func(r chi.Router) {
		r.Method(http.MethodGet, "/", Adapt(h.getWishlist))
		r.Method(http.MethodPost, "/", Adapt(h.postWishlist))
		r.Method(http.MethodGet, "/count", Adapt(h.getWishlistCount))
		r.Method(http.MethodDelete, "/{id:[0-9]+}", Adapt(h.deleteWishlistEntry))
	})
}

type searchResponse struct {
	Page         int           `json:"page"`
	Results      []tmdb.Result `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Mode         string        `json:"mode"`
	Canonical    string        `json:"canonical"`
	Notice       string        `json:"notice,omitempty"`
	Error        string        `json:"error,omitempty"`
}

func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request) error {
	state := query.Hydrate(r.URL.Query())
	rq := query.BuildRemoteQuery(state)

	resp := searchResponse{
		Page:      state.Page,
		Results:   []tmdb.Result{},
		Mode:      string(rq.Mode),
		Canonical: state.Values().Encode(),
		Notice:    query.SuppressionNotice(state.FreeText),
	}

	// Nothing to paginate through without a query or an active filter.
	if strings.TrimSpace(state.FreeText) == "" && !state.Filters.Active() && state.Page > 1 {
		resp.TotalPages = 1
		writeJSON(w, http.StatusOK, resp)
		return nil
	}

	page, err := h.fetchPage(r.Context(), rq)
	if err != nil {
		// Upstream failures render as an empty page with a retry
		// message rather than an error status.
		resp.Error = fetchFailedMessage
		resp.TotalPages = 1
		writeJSON(w, http.StatusOK, resp)
		return nil
	}

	resp.Page = page.Page
	resp.Results = page.Results
	resp.TotalPages = min(page.TotalPages, query.MaxPages)
	resp.TotalResults = page.TotalResults
	if resp.TotalPages < 1 {
		resp.TotalPages = 1
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) fetchPage(ctx context.Context, rq query.RemoteQuery) (tmdb.Page[tmdb.Result], error) {
	if rq.Mode == query.ModeSearch {
		if rq.MediaType == query.MediaTV {
			page, err := h.tmdb.SearchTV(ctx, rq.Text, rq.Page, rq.Year)
			return tmdb.TVPage(page), err
		}
		page, err := h.tmdb.SearchMovies(ctx, rq.Text, rq.Page, rq.Year)
		return tmdb.MoviePage(page), err
	}

	filters := tmdb.DiscoverFilters{
		Sort:       rq.Sort,
		GenreIDs:   rq.GenreIDs,
		YearFrom:   rq.YearFrom,
		YearTo:     rq.YearTo,
		RatingFrom: rq.RatingFrom,
		RatingTo:   rq.RatingTo,
	}
	if rq.MediaType == query.MediaTV {
		page, err := h.tmdb.DiscoverTV(ctx, filters, rq.Page)
		return tmdb.TVPage(page), err
	}
	page, err := h.tmdb.DiscoverMovies(ctx, filters, rq.Page)
	return tmdb.MoviePage(page), err
}

type homeResponse struct {
	PopularMovies   []tmdb.Result `json:"popular_movies"`
	TopRatedMovies  []tmdb.Result `json:"top_rated_movies"`
	NowPlaying      []tmdb.Result `json:"now_playing_movies"`
	PopularSeries   []tmdb.Result `json:"popular_series"`
	TopRatedSeries  []tmdb.Result `json:"top_rated_series"`
	PopularPeople   []tmdb.Result `json:"popular_people"`
	ImageBaseURL    string        `json:"image_base_url"`
}

func (h *Handler) getHome(w http.ResponseWriter, r *http.Request) error {
	var resp homeResponse
	resp.ImageBaseURL = h.tmdb.ImageBaseURL()

	p := pool.New().WithErrors().WithContext(r.Context())
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.PopularMovies(ctx, 1)
		resp.PopularMovies = tmdb.MovieResults(page.Results)
		return err
	})
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.TopRatedMovies(ctx, 1)
		resp.TopRatedMovies = tmdb.MovieResults(page.Results)
		return err
	})
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.NowPlayingMovies(ctx, 1)
		resp.NowPlaying = tmdb.MovieResults(page.Results)
		return err
	})
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.PopularTV(ctx, 1)
		resp.PopularSeries = tmdb.TVResults(page.Results)
		return err
	})
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.TopRatedTV(ctx, 1)
		resp.TopRatedSeries = tmdb.TVResults(page.Results)
		return err
	})
	p.Go(func(ctx context.Context) error {
		page, err := h.tmdb.PopularPeople(ctx, 1)
		resp.PopularPeople = tmdb.PeopleResults(page.Results)
		return err
	})
	if err := p.Wait(); err != nil {
		return badGateway("failed to load home sections")
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) getMovies(w http.ResponseWriter, r *http.Request) error {
	page, err := h.tmdb.PopularMovies(r.Context(), pageParam(r))
	if err != nil {
		return badGateway("failed to load movies")
	}
	writeJSON(w, http.StatusOK, tmdb.MoviePage(page))
	return nil
}

func (h *Handler) getSeries(w http.ResponseWriter, r *http.Request) error {
	page, err := h.tmdb.PopularTV(r.Context(), pageParam(r))
	if err != nil {
		return badGateway("failed to load series")
	}
	writeJSON(w, http.StatusOK, tmdb.TVPage(page))
	return nil
}

func (h *Handler) getPeople(w http.ResponseWriter, r *http.Request) error {
	page, err := h.tmdb.PopularPeople(r.Context(), pageParam(r))
	if err != nil {
		return badGateway("failed to load people")
	}
	writeJSON(w, http.StatusOK, tmdb.PeoplePage(page))
	return nil
}

func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest("bad id")
	}
	details, err := h.tmdb.MovieDetails(r.Context(), id)
	if err != nil {
		if tmdb.IsNotFound(err) {
			return notFound("movie not found")
		}
		return badGateway("failed to load movie")
	}
	writeJSON(w, http.StatusOK, details)
	return nil
}

func (h *Handler) getSeriesByID(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest("bad id")
	}
	details, err := h.tmdb.TVDetails(r.Context(), id)
	if err != nil {
		if tmdb.IsNotFound(err) {
			return notFound("series not found")
		}
		return badGateway("failed to load series")
	}
	writeJSON(w, http.StatusOK, details)
	return nil
}

func (h *Handler) getPerson(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest("bad id")
	}
	details, err := h.tmdb.PersonDetails(r.Context(), id)
	if err != nil {
		if tmdb.IsNotFound(err) {
			return notFound("person not found")
		}
		return badGateway("failed to load person")
	}
	writeJSON(w, http.StatusOK, details)
	return nil
}

type genresResponse struct {
	MovieGenres []tmdb.Genre `json:"movie_genres"`
	TVGenres    []tmdb.Genre `json:"tv_genres"`
}

func (h *Handler) getGenres(w http.ResponseWriter, r *http.Request) error {
	movie, tv, err := h.loadGenres(r.Context())
	if err != nil {
		return badGateway("failed to load genres")
	}
	writeJSON(w, http.StatusOK, genresResponse{MovieGenres: movie, TVGenres: tv})
	return nil
}

func (h *Handler) loadGenres(ctx context.Context) ([]tmdb.Genre, []tmdb.Genre, error) {
	h.genres.mu.RLock()
	if time.Since(h.genres.fetchedAt) < genreCacheTTL && h.genres.movie != nil {
		movie, tv := h.genres.movie, h.genres.tv
		h.genres.mu.RUnlock()
		return movie, tv, nil
	}
	h.genres.mu.RUnlock()

	p := pool.New().WithErrors().WithContext(ctx)
	var movie, tv []tmdb.Genre
	p.Go(func(ctx context.Context) error {
		var err error
		movie, err = h.tmdb.MovieGenres(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		tv, err = h.tmdb.TVGenres(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}

	h.genres.mu.Lock()
	h.genres.movie = movie
	h.genres.tv = tv
	h.genres.fetchedAt = time.Now()
	h.genres.mu.Unlock()
	return movie, tv, nil
}

type wishlistResponse struct {
	Entries []wishlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

type wishlistMutationResponse struct {
	Changed bool `json:"changed"`
	Count   int  `json:"count"`
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) error {
	entries := h.wishlist.List(r.Context())
	writeJSON(w, http.StatusOK, wishlistResponse{Entries: entries, Count: len(entries)})
	return nil
}

func (h *Handler) getWishlistCount(w http.ResponseWriter, r *http.Request) error {
	entries := h.wishlist.List(r.Context())
	writeJSON(w, http.StatusOK, struct {
		Count int `json:"count"`
	}{Count: len(entries)})
	return nil
}

func (h *Handler) postWishlist(w http.ResponseWriter, r *http.Request) error {
	var entry wishlist.Entry
	if err := decodeJSON(r, &entry); err != nil {
		return badRequest("bad request")
	}
	if entry.ID <= 0 || strings.TrimSpace(entry.Title) == "" {
		return badRequest("id and title are required")
	}

	added := h.wishlist.Add(r.Context(), entry)
	count := len(h.wishlist.List(r.Context()))
	writeJSON(w, http.StatusOK, wishlistMutationResponse{Changed: added, Count: count})
	return nil
}

func (h *Handler) deleteWishlistEntry(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest("bad id")
	}

	removed := h.wishlist.Remove(r.Context(), id)
	count := len(h.wishlist.List(r.Context()))
	writeJSON(w, http.StatusOK, wishlistMutationResponse{Changed: removed, Count: count})
	return nil
}
