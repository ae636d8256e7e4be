package query

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every push so tests can assert on ordering and
// payloads without racing the debounce goroutine.
type recorder struct {
	mu     sync.Mutex
	pushes []url.Values
}

func (r *recorder) Push(values url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, values)
}

func (r *recorder) all() []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]url.Values, len(r.pushes))
	copy(out, r.pushes)
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) []url.Values {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pushes := r.all(); len(pushes) >= n {
			return pushes
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d pushes, got %d", n, len(r.all()))
	return nil
}

func TestSetFreeTextDebouncesToLastValue(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, 80*time.Millisecond)
	defer s.Close()

	for _, text := range []string{"b", "ba", "bat"} {
		s.SetFreeText(text)
		time.Sleep(20 * time.Millisecond)
	}

	pushes := rec.waitFor(t, 1)
	require.Len(t, pushes, 1)
	assert.Equal(t, "bat", pushes[0].Get("q"))
	assert.Equal(t, "1", pushes[0].Get("page"))
}

func TestSetFreeTextUpdatesStateImmediately(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.SetFreeText("bat")

	assert.Equal(t, "bat", s.State().FreeText)
	assert.Empty(t, rec.all())
}

func TestSubmitPushesImmediatelyAndDropsPending(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, 50*time.Millisecond)
	defer s.Close()

	s.SetFreeText("batman")
	s.Submit()

	pushes := rec.all()
	require.Len(t, pushes, 1)
	assert.Equal(t, "batman", pushes[0].Get("q"))

	// The scheduled debounce push must not fire afterwards.
	time.Sleep(120 * time.Millisecond)
	assert.Len(t, rec.all(), 1)
}

func TestApplyFiltersPushesImmediatelyAndResetsPage(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.HydrateFrom(url.Values{"page": {"7"}, "type": {"movie"}})

	filters := DefaultFilters()
	filters.Sort = SortKey{Property: SortReleaseDate, Direction: Descending}
	s.ApplyFilters(filters)

	pushes := rec.all()
	require.Len(t, pushes, 1)
	assert.Equal(t, "primary_release_date.desc", pushes[0].Get("sortBy"))
	assert.Equal(t, "1", pushes[0].Get("page"))
	assert.Equal(t, 1, s.State().Page)
}

func TestApplyFiltersCoercesInvalidValues(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.ApplyFilters(Filters{
		Sort:      SortKey{Property: "budget", Direction: "sideways"},
		MediaType: "podcast",
	})

	state := s.State()
	assert.Equal(t, DefaultSort(), state.Filters.Sort)
	assert.Equal(t, MediaAll, state.Filters.MediaType)
}

func TestSetPageBounds(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.HydrateFrom(url.Values{"q": {"batman"}})
	s.SetTotalPages(5)

	assert.False(t, s.SetPage(0))
	assert.False(t, s.SetPage(6))
	assert.True(t, s.SetPage(5))

	pushes := rec.all()
	require.Len(t, pushes, 1)
	assert.Equal(t, "5", pushes[0].Get("page"))
}

func TestSetPageRequiresQueryOrFilter(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.SetTotalPages(5)
	assert.False(t, s.SetPage(2))
	assert.Empty(t, rec.all())

	filters := DefaultFilters()
	filters.MediaType = MediaTV
	s.ApplyFilters(filters)
	assert.True(t, s.SetPage(2))
}

func TestSetTotalPagesClampsToMaxPages(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.HydrateFrom(url.Values{"q": {"batman"}})
	s.SetTotalPages(100000)

	assert.True(t, s.SetPage(MaxPages))
	assert.False(t, s.SetPage(MaxPages+1))
}

func TestHydrateFromReplacesState(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec, time.Hour)
	defer s.Close()

	s.SetFreeText("old")
	state := s.HydrateFrom(url.Values{"q": {"new"}, "page": {"3"}})

	assert.Equal(t, "new", state.FreeText)
	assert.Equal(t, 3, state.Page)
	assert.Equal(t, state, s.State())
	// Hydration restores state from the URL; it never pushes back.
	assert.Empty(t, rec.all())
}
