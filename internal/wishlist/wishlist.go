// Package wishlist stores the user's saved movies as one JSON array
// under a single storage key, matching the browser localStorage format
// so exported data stays interchangeable with it.
package wishlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"cinescope/internal/kv"
	"cinescope/internal/logger"
)

// Key is the fixed storage key holding the serialized list.
const Key = "movieWishlist"

// Entry is a saved movie. JSON field names follow the browser payload.
type Entry struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	BackdropPath *string `json:"backdrop_path,omitempty"`
	VoteCount    *int    `json:"vote_count,omitempty"`
	MediaType    string  `json:"media_type"`
}

// wireEntry mirrors Entry with pointers and raw messages so that
// missing fields are distinguishable from zero values when validating
// stored data.
type wireEntry struct {
	ID           *int64          `json:"id"`
	Title        *string         `json:"title"`
	PosterPath   json.RawMessage `json:"poster_path"`
	ReleaseDate  *string         `json:"release_date"`
	VoteAverage  *float64        `json:"vote_average"`
	BackdropPath json.RawMessage `json:"backdrop_path"`
	VoteCount    *int            `json:"vote_count"`
	MediaType    *string         `json:"media_type"`
}

func (w wireEntry) toEntry() (Entry, bool) {
	if w.ID == nil || w.Title == nil || w.ReleaseDate == nil || w.VoteAverage == nil {
		return Entry{}, false
	}
	if w.MediaType == nil || *w.MediaType != "movie" {
		return Entry{}, false
	}
	poster, ok := nullableString(w.PosterPath, false)
	if !ok {
		return Entry{}, false
	}
	backdrop, ok := nullableString(w.BackdropPath, true)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		ID:           *w.ID,
		Title:        *w.Title,
		PosterPath:   poster,
		ReleaseDate:  *w.ReleaseDate,
		VoteAverage:  *w.VoteAverage,
		BackdropPath: backdrop,
		VoteCount:    w.VoteCount,
		MediaType:    *w.MediaType,
	}, true
}

// nullableString accepts a JSON string or null; when optional it also
// accepts an absent field.
func nullableString(raw json.RawMessage, optional bool) (*string, bool) {
	if raw == nil {
		return nil, optional
	}
	if string(raw) == "null" {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// Store is a deduplicated, insertion-ordered wishlist over a kv.Store.
// Storage failures are absorbed here: readers get an empty list,
// writers log and skip notification.
type Store struct {
	storage kv.Store

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

func NewStore(storage kv.Store) *Store {
	return &Store{
		storage:   storage,
		listeners: make(map[int]func()),
	}
}

// List returns entries in storage order. Absent, unreadable or
// malformed data yields an empty list, never an error.
func (s *Store) List(ctx context.Context) []Entry {
	raw, ok, err := s.storage.Get(ctx, Key)
	if err != nil {
		slog.Warn("wishlist: read failed", logger.Error(err))
		return []Entry{}
	}
	if !ok || raw == "" {
		return []Entry{}
	}
	return decodeList(raw)
}

func decodeList(raw string) []Entry {
	var wire []wireEntry
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		slog.Warn("wishlist: ignoring malformed data", logger.Error(err))
		return []Entry{}
	}
	out := make([]Entry, 0, len(wire))
	for _, w := range wire {
		entry, ok := w.toEntry()
		if !ok {
			// Any entry failing the shape check invalidates the whole list.
			slog.Warn("wishlist: ignoring data with bad entry shape")
			return []Entry{}
		}
		out = append(out, entry)
	}
	return out
}

func (s *Store) Contains(ctx context.Context, id int64) bool {
	for _, entry := range s.List(ctx) {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// Add appends the entry unless its id is already present. It reports
// whether the list changed; listeners fire only on change.
func (s *Store) Add(ctx context.Context, entry Entry) bool {
	entry.MediaType = "movie"
	list := s.List(ctx)
	for _, existing := range list {
		if existing.ID == entry.ID {
			return false
		}
	}
	if !s.persist(ctx, append(list, entry)) {
		return false
	}
	s.notify()
	return true
}

// Remove drops the entry with the given id if present.
func (s *Store) Remove(ctx context.Context, id int64) bool {
	list := s.List(ctx)
	kept := make([]Entry, 0, len(list))
	for _, entry := range list {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	if !s.persist(ctx, kept) {
		return false
	}
	s.notify()
	return true
}

// persist rewrites the entire list under Key.
func (s *Store) persist(ctx context.Context, list []Entry) bool {
	raw, err := json.Marshal(list)
	if err != nil {
		slog.Warn("wishlist: encode failed", logger.Error(err))
		return false
	}
	if err := s.storage.Set(ctx, Key, string(raw)); err != nil {
		slog.Warn("wishlist: write failed", logger.Error(err))
		return false
	}
	return true
}

// Subscribe registers a listener invoked synchronously after every
// successful mutation. The returned function unregisters it.
func (s *Store) Subscribe(listener func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
