package query

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// MaxPages caps pagination; the remote API rejects pages beyond this.
const MaxPages = 500

// DebounceWindow is the quiet interval before a free-text change is
// pushed to the URL.
const DebounceWindow = 500 * time.Millisecond

// Pusher receives serialized state whenever it should become the
// current URL.
type Pusher interface {
	Push(values url.Values)
}

// PusherFunc adapts a function to the Pusher interface.
type PusherFunc func(url.Values)

func (f PusherFunc) Push(values url.Values) { f(values) }

// Synchronizer applies user input to the search state and pushes the
// serialized result through a Pusher. Free-text edits are debounced so
// only the last value in a quiet window triggers a push; discrete
// filter changes push immediately.
type Synchronizer struct {
	pusher   Pusher
	debounce *Debouncer

	mu         sync.Mutex
	state      State
	totalPages int
}

func NewSynchronizer(pusher Pusher, window time.Duration) *Synchronizer {
	if window <= 0 {
		window = DebounceWindow
	}
	s := &Synchronizer{
		pusher:     pusher,
		state:      DefaultState(),
		totalPages: 1,
	}
	s.debounce = NewDebouncer(window, func(text string) {
		s.mu.Lock()
		s.state.FreeText = text
		s.state.Page = 1
		state := s.state
		s.mu.Unlock()
		s.pusher.Push(state.Values())
	})
	return s
}

// HydrateFrom replaces the state from URL parameters, as on
// navigation, and returns the result.
func (s *Synchronizer) HydrateFrom(values url.Values) State {
	state := Hydrate(values)
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return state
}

// State returns a copy of the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFreeText records the text immediately, so the input stays
// responsive, and schedules the URL push for after the quiet window.
// Each call restarts the window.
func (s *Synchronizer) SetFreeText(text string) {
	s.mu.Lock()
	s.state.FreeText = text
	s.mu.Unlock()
	s.debounce.Schedule(text)
}

// Submit pushes the latest text and filters without waiting for the
// debounce window, dropping any pending scheduled push.
func (s *Synchronizer) Submit() {
	s.debounce.Stop()
	s.mu.Lock()
	s.state.Page = 1
	state := s.state
	s.mu.Unlock()
	s.pusher.Push(state.Values())
}

// ApplyFilters replaces the structured filters, resets to page 1 and
// pushes immediately. Sort and media type always resolve to concrete
// values so the state never carries an ambiguous default.
func (s *Synchronizer) ApplyFilters(filters Filters) {
	if !filters.Sort.valid() {
		filters.Sort = DefaultSort()
	}
	switch filters.MediaType {
	case MediaMovie, MediaTV, MediaAll:
	default:
		filters.MediaType = MediaAll
	}

	s.mu.Lock()
	s.state.Filters = filters
	s.state.Page = 1
	state := s.state
	s.mu.Unlock()
	s.pusher.Push(state.Values())
}

// SetTotalPages records the page count from the last response, capped
// defensively at MaxPages.
func (s *Synchronizer) SetTotalPages(n int) {
	n = min(n, MaxPages)
	n = max(n, 1)
	s.mu.Lock()
	s.totalPages = n
	s.mu.Unlock()
}

// SetPage pushes the new page if it is within the known page range and
// there is an active query or filter to paginate. It reports whether
// the change was accepted.
func (s *Synchronizer) SetPage(page int) bool {
	s.mu.Lock()
	if page < 1 || page > s.totalPages {
		s.mu.Unlock()
		return false
	}
	if strings.TrimSpace(s.state.FreeText) == "" && !s.state.Filters.Active() {
		s.mu.Unlock()
		return false
	}
	s.state.Page = page
	state := s.state
	s.mu.Unlock()
	s.pusher.Push(state.Values())
	return true
}

// Close drops any pending debounced push.
func (s *Synchronizer) Close() {
	s.debounce.Stop()
}
