package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinescope/internal/kv"
	"cinescope/internal/tmdb"
	"cinescope/internal/wishlist"
)

// fakeTMDB serves canned JSON and records which paths were requested.
type fakeTMDB struct {
	mu        sync.Mutex
	requests  map[string]url.Values
	responses map[string]string
	failAll   bool
}

func newFakeTMDB() *fakeTMDB {
	return &fakeTMDB{
		requests:  make(map[string]url.Values),
		responses: make(map[string]string),
	}
}

func (f *fakeTMDB) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests[r.URL.Path] = r.URL.Query()
		body, ok := f.responses[r.URL.Path]
		failAll := f.failAll
		f.mu.Unlock()

		if failAll {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if !ok {
			body = `{"page":1,"results":[],"total_pages":1,"total_results":0}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeTMDB) params(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeTMDB) requested(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.requests[path]
	return ok
}

func newTestApp(t *testing.T) (*fakeTMDB, http.Handler) {
	t.Helper()

	fake := newFakeTMDB()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	app, err := New(&Config{
		TMDB:     tmdb.New(tmdb.Config{APIKey: "test-key", BaseURL: srv.URL}),
		Wishlist: wishlist.NewStore(kv.NewMemory()),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", app.RegisterRoutes)
	return fake, r
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, dst any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if dst != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
	}
	return rec
}

func TestSearchFreeTextUsesSearchEndpoint(t *testing.T) {
	fake, app := newTestApp(t)
	fake.responses["/search/movie"] = `{"page":1,"results":[{"id":27205,"title":"Inception","poster_path":"/p.jpg","release_date":"2010-07-15","vote_average":8.4,"vote_count":36000}],"total_pages":3,"total_results":50}`

	var resp searchResponse
	rec := doJSON(t, app, http.MethodGet, "/api/search?q=batman", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "search", resp.Mode)
	assert.Equal(t, "page=1&q=batman", resp.Canonical)
	assert.NotEmpty(t, resp.Notice)
	assert.Equal(t, 3, resp.TotalPages)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "movie", resp.Results[0].MediaType)

	params := fake.params("/search/movie")
	require.NotNil(t, params)
	assert.Equal(t, "batman", params.Get("query"))
	assert.False(t, fake.requested("/discover/movie"))
}

func TestSearchFiltersUseDiscoverEndpoint(t *testing.T) {
	fake, app := newTestApp(t)

	var resp searchResponse
	doJSON(t, app, http.MethodGet, "/api/search?sortBy=vote_average.desc&genres=28&vagte=7", "", &resp)

	assert.Equal(t, "discover", resp.Mode)
	assert.Empty(t, resp.Notice)

	params := fake.params("/discover/movie")
	require.NotNil(t, params)
	assert.Equal(t, "vote_average.desc", params.Get("sort_by"))
	assert.Equal(t, "28", params.Get("with_genres"))
	assert.Equal(t, "7.0", params.Get("vote_average.gte"))
}

func TestSearchTVMediaType(t *testing.T) {
	fake, app := newTestApp(t)

	var resp searchResponse
	doJSON(t, app, http.MethodGet, "/api/search?q=lost&type=tv", "", &resp)

	assert.Equal(t, "search", resp.Mode)
	assert.True(t, fake.requested("/search/tv"))
	assert.False(t, fake.requested("/search/movie"))
}

func TestSearchPinnedYearSurvivesFreeText(t *testing.T) {
	fake, app := newTestApp(t)

	doJSON(t, app, http.MethodGet, "/api/search?q=inception&gte=2010&lte=2010&genres=28", "", nil)

	params := fake.params("/search/movie")
	require.NotNil(t, params)
	assert.Equal(t, "2010", params.Get("primary_release_year"))
	// Everything else is suppressed under free-text search.
	assert.False(t, params.Has("with_genres"))
}

func TestSearchUpstreamFailureYieldsRetryMessage(t *testing.T) {
	fake, app := newTestApp(t)
	fake.failAll = true

	var resp searchResponse
	rec := doJSON(t, app, http.MethodGet, "/api/search?q=batman", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Failed to fetch results. Please try again.", resp.Error)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestSearchDeepPageWithoutQueryIsEmptyWithoutUpstreamCall(t *testing.T) {
	fake, app := newTestApp(t)

	var resp searchResponse
	rec := doJSON(t, app, http.MethodGet, "/api/search?page=4", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, fake.requested("/discover/movie"))
	assert.False(t, fake.requested("/search/movie"))
}

func TestSearchCapsTotalPages(t *testing.T) {
	fake, app := newTestApp(t)
	fake.responses["/search/movie"] = `{"page":1,"results":[],"total_pages":900,"total_results":18000}`

	var resp searchResponse
	doJSON(t, app, http.MethodGet, "/api/search?q=war", "", &resp)

	assert.Equal(t, 500, resp.TotalPages)
}

func TestHome(t *testing.T) {
	fake, app := newTestApp(t)
	fake.responses["/movie/popular"] = `{"page":1,"results":[{"id":1,"title":"A","poster_path":null,"release_date":"2024-01-01","vote_average":7,"vote_count":10}],"total_pages":1,"total_results":1}`

	var resp homeResponse
	rec := doJSON(t, app, http.MethodGet, "/api/home", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.PopularMovies, 1)
	assert.Equal(t, "movie", resp.PopularMovies[0].MediaType)
	assert.NotEmpty(t, resp.ImageBaseURL)

	for _, path := range []string{
		"/movie/popular", "/movie/top_rated", "/movie/now_playing",
		"/tv/popular", "/tv/top_rated", "/person/popular",
	} {
		assert.True(t, fake.requested(path), "expected request to %s", path)
	}
}

func TestGenresCached(t *testing.T) {
	fake, app := newTestApp(t)
	fake.responses["/genre/movie/list"] = `{"genres":[{"id":28,"name":"Action"}]}`
	fake.responses["/genre/tv/list"] = `{"genres":[{"id":10765,"name":"Sci-Fi & Fantasy"}]}`

	var resp genresResponse
	doJSON(t, app, http.MethodGet, "/api/genres", "", &resp)

	require.Len(t, resp.MovieGenres, 1)
	require.Len(t, resp.TVGenres, 1)
	assert.Equal(t, "Action", resp.MovieGenres[0].Name)

	// Second call is served from cache.
	fake.mu.Lock()
	delete(fake.requests, "/genre/movie/list")
	fake.mu.Unlock()

	doJSON(t, app, http.MethodGet, "/api/genres", "", &resp)
	assert.False(t, fake.requested("/genre/movie/list"))
	require.Len(t, resp.MovieGenres, 1)
}

func TestMovieDetailBadIDIsNotRouted(t *testing.T) {
	_, app := newTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/movies/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMovieDetail(t *testing.T) {
	fake, app := newTestApp(t)
	fake.responses["/movie/27205"] = `{"id":27205,"title":"Inception","poster_path":"/p.jpg","release_date":"2010-07-15","vote_average":8.4,"vote_count":36000,"runtime":148,"status":"Released"}`

	var resp map[string]any
	rec := doJSON(t, app, http.MethodGet, "/api/movies/27205", "", &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inception", resp["title"])

	params := fake.params("/movie/27205")
	assert.Contains(t, params.Get("append_to_response"), "videos")
}

func TestWishlistCRUD(t *testing.T) {
	_, app := newTestApp(t)

	var list wishlistResponse
	doJSON(t, app, http.MethodGet, "/api/wishlist", "", &list)
	assert.Zero(t, list.Count)

	body := `{"id":27205,"title":"Inception","poster_path":"/p.jpg","release_date":"2010-07-15","vote_average":8.4,"media_type":"movie"}`
	var mutation wishlistMutationResponse
	rec := doJSON(t, app, http.MethodPost, "/api/wishlist", body, &mutation)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mutation.Changed)
	assert.Equal(t, 1, mutation.Count)

	// Duplicate add is a no-op.
	doJSON(t, app, http.MethodPost, "/api/wishlist", body, &mutation)
	assert.False(t, mutation.Changed)
	assert.Equal(t, 1, mutation.Count)

	doJSON(t, app, http.MethodGet, "/api/wishlist", "", &list)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, int64(27205), list.Entries[0].ID)

	var count struct {
		Count int `json:"count"`
	}
	doJSON(t, app, http.MethodGet, "/api/wishlist/count", "", &count)
	assert.Equal(t, 1, count.Count)

	doJSON(t, app, http.MethodDelete, "/api/wishlist/27205", "", &mutation)
	assert.True(t, mutation.Changed)
	assert.Zero(t, mutation.Count)

	doJSON(t, app, http.MethodDelete, "/api/wishlist/27205", "", &mutation)
	assert.False(t, mutation.Changed)
}

func TestWishlistPostValidation(t *testing.T) {
	_, app := newTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/api/wishlist", `{"id":0,"title":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/api/wishlist", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
