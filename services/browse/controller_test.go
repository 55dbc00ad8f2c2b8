package browse

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSource struct {
	feeds    atomic.Int32
	searches atomic.Int32
	mux      sync.Mutex
	queries  []string
	records  []models.MediaRecord
	// block, when set, holds a search for the given query until released
	block map[string]chan struct{}
}

func (s *fakeSource) Feed(_ context.Context, r *catalog.FeedRequest) *catalog.Result {
	s.feeds.Add(1)
	return &catalog.Result{Records: s.records, TotalPages: 1, Token: r.Token}
}

func (s *fakeSource) Search(_ context.Context, r *catalog.SearchRequest) *catalog.Result {
	s.searches.Add(1)
	s.mux.Lock()
	s.queries = append(s.queries, r.Query)
	ch := s.block[r.Query]
	s.mux.Unlock()
	if ch != nil {
		<-ch
	}
	return &catalog.Result{
		Records: []models.MediaRecord{{ID: r.Query, Title: r.Query}},
		Token:   r.Token,
	}
}

func testConfig() *Config {
	return &Config{Debounce: 30 * time.Millisecond, Pages: 2, SessionExpire: time.Minute}
}

func pool() []models.MediaRecord {
	return []models.MediaRecord{
		{ID: "a", Title: "A", Year: 2015, Rating: 6, Genres: []string{"Drama"}, Language: "English",
			Platforms: []models.Platform{{Name: "Netflix"}}},
		{ID: "b", Title: "B", Year: 1994, Rating: 9, Genres: []string{"Crime", "Drama"}, Language: "English"},
		{ID: "c", Title: "C", Year: 1972, Rating: 8, Genres: []string{"Crime"}, Language: "Italian"},
		{ID: "d", Title: "D", Year: 2021, Rating: 7, Genres: []string{"Comedy"}, Language: "Korean", Status: "Ended",
			Platforms: []models.Platform{{Name: "Hulu"}}},
	}
}

func ids(v *View) []string {
	res := make([]string, 0, len(v.Records))
	for _, r := range v.Records {
		res = append(res, r.ID)
	}
	return res
}

func TestController_StateMachine(t *testing.T) {
	src := &fakeSource{records: pool()}
	ctrl := NewController(src, testConfig())
	ctx := context.Background()

	v := ctrl.View(ctx)
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Records)

	v = ctrl.Navigate(ctx, Query{Type: models.MediaTypeMovie, Feed: catalog.FeedTopRated})
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(v))
	assert.Equal(t, 1, v.Query.Page)
	assert.Equal(t, int32(1), src.feeds.Load())
}

func TestController_FiltersDoNotFetch(t *testing.T) {
	src := &fakeSource{records: pool()}
	ctrl := NewController(src, testConfig())
	ctx := context.Background()
	ctrl.Navigate(ctx, Query{})

	ctrl.SetFilters(Filters{Genre: "crime"})
	assert.Equal(t, []string{"b", "c"}, ids(ctrl.View(ctx)))

	ctrl.SetSort(models.SortTypeOldest)
	assert.Equal(t, []string{"c", "b"}, ids(ctrl.View(ctx)))

	ctrl.SetFilters(Filters{Year: YearOlder})
	assert.Equal(t, []string{"c"}, ids(ctrl.View(ctx)))

	ctrl.SetViewMode(ViewModeList)
	ctrl.SetFilters(Filters{Platform: "Hulu"})
	v := ctrl.View(ctx)
	assert.Equal(t, []string{"d"}, ids(v))
	assert.Equal(t, ViewModeList, v.ViewMode)
	assert.Equal(t, StateReady, v.State)

	assert.Equal(t, int32(1), src.feeds.Load())
}

func TestController_EmptyFilterResultHasMessage(t *testing.T) {
	src := &fakeSource{records: pool()}
	ctrl := NewController(src, testConfig())
	ctx := context.Background()
	ctrl.Navigate(ctx, Query{})

	ctrl.SetFilters(Filters{Genre: "Western"})
	v := ctrl.View(ctx)
	assert.Empty(t, v.Records)
	assert.Equal(t, msgNoResults, v.Message)
	assert.Equal(t, 4, v.Total)

	ctrl.ResetFilters()
	v = ctrl.View(ctx)
	assert.Len(t, v.Records, 4)
	assert.Empty(t, v.Message)
}

func TestController_PassesPageAndWindow(t *testing.T) {
	var got *catalog.FeedRequest
	src := &recordingSource{fn: func(r *catalog.FeedRequest) { got = r }}
	ctrl := NewController(src, testConfig())
	ctrl.Navigate(context.Background(), Query{Feed: catalog.FeedGenre, GenreID: 18, Page: 3})

	require.NotNil(t, got)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 2, got.Pages)
	assert.Equal(t, 18, got.GenreID)
}

type recordingSource struct {
	fakeSource
	fn func(r *catalog.FeedRequest)
}

func (s *recordingSource) Feed(ctx context.Context, r *catalog.FeedRequest) *catalog.Result {
	s.fn(r)
	return s.fakeSource.Feed(ctx, r)
}

func TestController_StaleResultDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)
	release := make(chan struct{})
	src := &fakeSource{block: map[string]chan struct{}{"old": release}}
	ctrl := NewController(src, testConfig())
	ctx := context.Background()

	stale := ctrl.NavigateAsync(Query{Search: "old"})
	require.Eventually(t, func() bool { return src.searches.Load() == 1 }, time.Second, 5*time.Millisecond)

	v := ctrl.Navigate(ctx, Query{Search: "new"})
	assert.Equal(t, []string{"new"}, ids(v))
	assert.Greater(t, v.Token, stale)

	close(release)
	ctrl.Wait()

	v = ctrl.View(ctx)
	assert.Equal(t, []string{"new"}, ids(v))
	assert.Equal(t, StateReady, v.State)
}

func TestController_DebouncedSearch(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := &fakeSource{}
	ctrl := NewController(src, testConfig())

	for _, term := range []string{"m", "ma", "mat", "matrix"} {
		ctrl.TypeSearch(term)
		time.Sleep(5 * time.Millisecond)
	}
	ctrl.Wait()

	assert.Equal(t, int32(1), src.searches.Load())
	assert.Equal(t, []string{"matrix"}, src.queries)
	v := ctrl.View(context.Background())
	assert.Equal(t, "matrix", v.Query.Search)
	assert.Equal(t, []string{"matrix"}, ids(v))
}

func TestController_NavigateCancelsPendingSearch(t *testing.T) {
	defer goleak.VerifyNone(t)
	src := &fakeSource{records: pool()}
	cfg := testConfig()
	cfg.Debounce = time.Hour
	ctrl := NewController(src, cfg)

	ctrl.TypeSearch("matrix")
	ctrl.Navigate(context.Background(), Query{Feed: catalog.FeedTrending})
	ctrl.Wait()

	assert.Equal(t, int32(0), src.searches.Load())
	assert.Equal(t, int32(1), src.feeds.Load())
}

func TestRegistry_PerVisitor(t *testing.T) {
	r := NewRegistry(&fakeSource{}, testConfig())
	a := r.Get("visitor-a")
	assert.Same(t, a, r.Get("visitor-a"))
	assert.NotSame(t, a, r.Get("visitor-b"))
}
