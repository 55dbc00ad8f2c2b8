package browse

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

const (
	msgNoResults = "No titles match the selected filters. Try resetting the filters."
	msgNoData    = "Nothing could be loaded right now. Please try again."
	msgNoMatch   = "No titles found for your search."
)

// Source is the aggregation backend of a controller.
type Source interface {
	Feed(ctx context.Context, r *catalog.FeedRequest) *catalog.Result
	Search(ctx context.Context, r *catalog.SearchRequest) *catalog.Result
}

var _ Source = (*catalog.Aggregator)(nil)

// Query selects what is fetched. Changing it always triggers a fetch.
type Query struct {
	Type    models.MediaType `json:"type"`
	Feed    catalog.Feed     `json:"feed"`
	GenreID int              `json:"genreId,omitempty"`
	Search  string           `json:"search,omitempty"`
	Page    int              `json:"page"`
}

func (q Query) normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Feed == "" {
		q.Feed = catalog.FeedTrending
	}
	if q.Type == "" {
		q.Type = models.MediaTypeMovie
	}
	return q
}

type View struct {
	State    State                `json:"state"`
	Query    Query                `json:"query"`
	Filters  Filters              `json:"filters"`
	Sort     string               `json:"sort"`
	ViewMode ViewMode             `json:"viewMode"`
	Records  []models.MediaRecord `json:"records"`
	Total    int                  `json:"total"`
	Pages    int                  `json:"totalPages"`
	Partial  bool                 `json:"partial"`
	Token    uint64               `json:"token"`
	Options  *Options             `json:"options"`
	Message  string               `json:"message,omitempty"`
}

// Controller owns the browsing state of one visitor. Filter, sort and view
// mode changes are applied to the last fetched pool, query changes start a
// fetch. Every fetch gets a generation token and only the newest one may
// commit its result.
type Controller struct {
	src      Source
	rc       catalog.ReviewCounter
	debounce time.Duration
	pages    int

	mux     sync.Mutex
	state   State
	gen     uint64
	query   Query
	filters Filters
	sort    models.SortType
	view    ViewMode
	pool    *catalog.Result
	timer   *time.Timer
	wg      sync.WaitGroup
}

func NewController(src Source, cfg *Config) *Controller {
	return &Controller{
		src:      src,
		debounce: cfg.Debounce,
		pages:    cfg.Pages,
		state:    StateIdle,
		view:     ViewModeGrid,
		query:    Query{}.normalize(),
	}
}

func (s *Controller) WithReviewCounter(rc catalog.ReviewCounter) *Controller {
	s.rc = rc
	return s
}

func (s *Controller) SetFilters(f Filters) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.filters = f
}

func (s *Controller) ResetFilters() {
	s.SetFilters(Filters{})
}

func (s *Controller) SetSort(st models.SortType) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.sort = st
}

func (s *Controller) SetViewMode(v ViewMode) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.view = v
}

// Query returns the current query.
func (s *Controller) Query() Query {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.query
}

// stopTimer cancels a pending debounced search. The caller holds mux.
func (s *Controller) stopTimer() {
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	s.timer = nil
}

// begin supersedes any fetch in flight and any pending debounced search.
func (s *Controller) begin(q Query) (Query, uint64) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.stopTimer()
	s.gen++
	s.query = q.normalize()
	s.state = StateLoading
	return s.query, s.gen
}

func (s *Controller) fetch(ctx context.Context, q Query, token uint64) *catalog.Result {
	if q.Search != "" {
		return s.src.Search(ctx, &catalog.SearchRequest{
			Type:  q.Type,
			Query: q.Search,
			Page:  q.Page,
			Token: token,
		})
	}
	pages := max(s.pages, 1)
	return s.src.Feed(ctx, &catalog.FeedRequest{
		Type:    q.Type,
		Feed:    q.Feed,
		GenreID: q.GenreID,
		Page:    q.Page,
		Pages:   pages,
		Token:   token,
	})
}

// commit stores res unless a newer fetch has started since it was issued.
func (s *Controller) commit(res *catalog.Result) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if res.Token != s.gen {
		log.WithField("token", res.Token).
			WithField("current", s.gen).
			Debug("discarding superseded browse result")
		return false
	}
	s.pool = res
	s.state = StateReady
	return true
}

// Navigate fetches q and waits for the result.
func (s *Controller) Navigate(ctx context.Context, q Query) *View {
	q, token := s.begin(q)
	s.commit(s.fetch(ctx, q, token))
	return s.View(ctx)
}

// NavigateAsync starts fetching q in the background and returns its token.
func (s *Controller) NavigateAsync(q Query) uint64 {
	q, token := s.begin(q)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.commit(s.fetch(context.Background(), q, token))
	}()
	return token
}

// TypeSearch schedules a search for term once input has been quiet for the
// debounce period. Each call restarts the period.
func (s *Controller) TypeSearch(term string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.stopTimer()
	q := s.query
	q.Search = term
	q.Page = 1
	s.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.mux.Lock()
		fire := s.timer == t
		s.mux.Unlock()
		if fire {
			s.NavigateAsync(q)
		}
	})
	s.timer = t
}

// Wait blocks until pending debounced searches and background fetches are done.
func (s *Controller) Wait() {
	s.wg.Wait()
}

// View derives the displayed sequence from the current pool.
func (s *Controller) View(ctx context.Context) *View {
	s.mux.Lock()
	v := &View{
		State:    s.state,
		Query:    s.query,
		Filters:  s.filters,
		Sort:     s.sort.String(),
		ViewMode: s.view,
		Token:    s.gen,
		Records:  []models.MediaRecord{},
		Options:  NewOptions(nil),
	}
	pool := s.pool
	st := s.sort
	s.mux.Unlock()

	if pool == nil {
		return v
	}
	var counts map[string]int
	if st == models.SortTypeMostReviewed && s.rc != nil {
		c, err := s.rc.Counts(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to load review counts")
		}
		counts = c
	}
	v.Records = catalog.Sort(v.Filters.Apply(pool.Records), st, counts)
	v.Total = len(pool.Records)
	v.Pages = pool.TotalPages
	v.Partial = pool.Partial
	v.Options = NewOptions(pool.Records)
	if v.State == StateReady && len(v.Records) == 0 {
		switch {
		case len(pool.Records) > 0:
			v.Message = msgNoResults
		case v.Query.Search != "" && !pool.Partial:
			v.Message = msgNoMatch
		default:
			v.Message = msgNoData
		}
	}
	return v
}
