package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

const (
	poolSizeFlag        = "catalog-pool-size"
	feedPagesFlag       = "catalog-feed-pages"
	providerTimeoutFlag = "catalog-provider-timeout"
	concurrencyFlag     = "catalog-concurrency"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = RegisterCacheFlags(f)
	return append(f,
		cli.IntFlag{
			Name:   poolSizeFlag,
			Usage:  "maximum number of records in an aggregated pool",
			Value:  40,
			EnvVar: "CATALOG_POOL_SIZE",
		},
		cli.IntFlag{
			Name:   feedPagesFlag,
			Usage:  "number of upstream pages combined into one feed",
			Value:  2,
			EnvVar: "CATALOG_FEED_PAGES",
		},
		cli.DurationFlag{
			Name:   providerTimeoutFlag,
			Usage:  "timeout of a single provider call",
			Value:  10 * time.Second,
			EnvVar: "CATALOG_PROVIDER_TIMEOUT",
		},
		cli.IntFlag{
			Name:   concurrencyFlag,
			Usage:  "maximum number of concurrent provider calls per request",
			Value:  8,
			EnvVar: "CATALOG_CONCURRENCY",
		},
	)
}

type Feed string

const (
	FeedTrending    Feed = "trending"
	FeedTopRated    Feed = "top_rated"
	FeedNewReleases Feed = "new_releases"
	FeedGenre       Feed = "genre"
)

func ParseFeed(s string) (Feed, bool) {
	switch Feed(strings.ReplaceAll(strings.ToLower(s), "-", "_")) {
	case FeedTrending, "popular":
		return FeedTrending, true
	case FeedTopRated:
		return FeedTopRated, true
	case FeedNewReleases, "now_playing", "airing_today":
		return FeedNewReleases, true
	case FeedGenre:
		return FeedGenre, true
	}
	return "", false
}

func (f Feed) category(t models.MediaType) Category {
	switch f {
	case FeedTopRated:
		return CategoryTopRated
	case FeedNewReleases:
		if t == models.MediaTypeTV {
			return CategoryAiringToday
		}
		return CategoryNowPlaying
	case FeedGenre:
		return CategoryGenre
	}
	return CategoryPopular
}

func (f Feed) defaultSort() models.SortType {
	switch f {
	case FeedTrending:
		return models.SortTypeTrending
	case FeedTopRated:
		return models.SortTypeTopRated
	case FeedNewReleases:
		return models.SortTypeNewest
	}
	return models.SortTypeDefault
}

type FeedRequest struct {
	Type    models.MediaType
	Feed    Feed
	GenreID int
	// Page is the 1-based feed page. It covers upstream pages
	// (Page-1)*Pages+1 through Page*Pages.
	Page        int
	Pages       int
	Sort        models.SortType
	QualityOnly bool
	Token       uint64
}

type SearchRequest struct {
	Type  models.MediaType
	Query string
	Page  int
	Token uint64
}

// Result is an aggregated pool. Token echoes the request token so callers can
// discard superseded results. Partial is set when at least one provider call
// failed and contributed nothing.
type Result struct {
	Records      []models.MediaRecord `json:"records"`
	TotalResults int                  `json:"totalResults"`
	TotalPages   int                  `json:"totalPages"`
	Token        uint64               `json:"token"`
	Partial      bool                 `json:"partial"`
}

type Config struct {
	PoolSize    int
	Pages       int
	Timeout     time.Duration
	Concurrency int
}

func NewConfig(c *cli.Context) *Config {
	return &Config{
		PoolSize:    c.Int(poolSizeFlag),
		Pages:       c.Int(feedPagesFlag),
		Timeout:     c.Duration(providerTimeoutFlag),
		Concurrency: c.Int(concurrencyFlag),
	}
}

// Aggregator merges the output of several providers. Providers of the same
// media type are kept in registration order, which is the merge precedence.
type Aggregator struct {
	cfg       *Config
	providers map[models.MediaType][]Provider
	rc        ReviewCounter
}

func NewAggregator(cfg *Config, providers ...Provider) *Aggregator {
	a := &Aggregator{
		cfg:       cfg,
		providers: map[models.MediaType][]Provider{},
	}
	for _, p := range providers {
		a.providers[p.Type()] = append(a.providers[p.Type()], p)
	}
	return a
}

func (s *Aggregator) WithReviewCounter(rc ReviewCounter) *Aggregator {
	s.rc = rc
	return s
}

func (s *Aggregator) Providers(t models.MediaType) []Provider {
	return s.providers[t]
}

type call struct {
	provider Provider
	op       string
	do       func(ctx context.Context) *Page
}

// fanOut runs all calls concurrently and returns their pages in call order,
// regardless of completion order. Failed calls yield failed pages.
func (s *Aggregator) fanOut(ctx context.Context, calls []call) []*Page {
	pages := make([]*Page, len(calls))
	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i, cl := range calls {
		g.Go(func() error {
			callCtx, cancel := s.callContext(ctx)
			defer cancel()
			p := cl.do(callCtx)
			if p == nil {
				p = FailedPage(StatusUnavailable)
			}
			if p.Status.Failed() {
				l := log.WithField("provider", cl.provider.GetName()).
					WithField("op", cl.op).
					WithField("status", p.Status.String())
				if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
					l.Warn("provider request timed out, dropping results")
				} else {
					l.Warn("provider request failed, dropping results")
				}
			}
			pages[i] = p
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

func merge(pages []*Page) (records []models.MediaRecord, partial bool) {
	for _, p := range pages {
		if p.Status.Failed() {
			partial = true
			continue
		}
		records = append(records, p.Records...)
	}
	return
}

func (s *Aggregator) counts(ctx context.Context) map[string]int {
	if s.rc == nil {
		return nil
	}
	c, err := s.rc.Counts(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load review counts, falling back to rating")
		return nil
	}
	return c
}

// Feed builds a ranked pool for one of the curated feeds.
func (s *Aggregator) Feed(ctx context.Context, r *FeedRequest) *Result {
	pages := r.Pages
	if pages <= 0 {
		pages = s.cfg.Pages
	}
	if pages <= 0 {
		pages = 1
	}
	page := max(r.Page, 1)
	first := (page-1)*pages + 1
	cat := r.Feed.category(r.Type)
	var calls []call
	for _, p := range s.providers[r.Type] {
		for pg := first; pg < first+pages; pg++ {
			q := ListQuery{Category: cat, GenreID: r.GenreID, Page: pg}
			calls = append(calls, call{
				provider: p,
				op:       "list",
				do: func(ctx context.Context) *Page {
					return p.List(ctx, q)
				},
			})
		}
	}
	res := s.fanOut(ctx, calls)
	records, partial := merge(res)
	records = Dedup(records)
	if r.QualityOnly {
		records = FilterQuality(records)
	}
	st := r.Sort
	if st == models.SortTypeDefault {
		st = r.Feed.defaultSort()
	}
	records = Sort(records, st, s.counts(ctx))
	records = Truncate(records, s.cfg.PoolSize)
	return &Result{
		Records:      records,
		TotalResults: len(records),
		TotalPages:   1,
		Token:        r.Token,
		Partial:      partial,
	}
}

// Search runs a free-text query against every provider of the media type.
func (s *Aggregator) Search(ctx context.Context, r *SearchRequest) *Result {
	query := strings.TrimSpace(r.Query)
	if query == "" {
		return &Result{Records: []models.MediaRecord{}, Token: r.Token}
	}
	page := r.Page
	if page <= 0 {
		page = 1
	}
	var calls []call
	for _, p := range s.providers[r.Type] {
		calls = append(calls, call{
			provider: p,
			op:       "search",
			do: func(ctx context.Context) *Page {
				return p.Search(ctx, query, page)
			},
		})
	}
	res := s.fanOut(ctx, calls)
	records, partial := merge(res)
	total, totalPages := 0, 0
	for _, p := range res {
		total += p.TotalResults
		totalPages = max(totalPages, p.TotalPages)
	}
	records = Truncate(Dedup(records), s.cfg.PoolSize)
	if records == nil {
		records = []models.MediaRecord{}
	}
	return &Result{
		Records:      records,
		TotalResults: total,
		TotalPages:   totalPages,
		Token:        r.Token,
		Partial:      partial,
	}
}

// Get routes a lookup to the provider owning the id.
func (s *Aggregator) Get(ctx context.Context, id string) *Item {
	for _, ps := range s.providers {
		for _, p := range ps {
			if !p.Owns(id) {
				continue
			}
			callCtx, cancel := s.callContext(ctx)
			it := p.Get(callCtx, id)
			cancel()
			if it.Status.Failed() {
				log.WithField("provider", p.GetName()).
					WithField("id", id).
					WithField("status", it.Status.String()).
					Warn("provider lookup failed")
			}
			return it
		}
	}
	return &Item{Status: StatusEmpty}
}

// Genres merges genre lists of all providers of the media type, first name wins.
func (s *Aggregator) Genres(ctx context.Context, t models.MediaType) []models.Genre {
	ps := s.providers[t]
	lists := make([][]models.Genre, len(ps))
	var g errgroup.Group
	for i, p := range ps {
		g.Go(func() error {
			callCtx, cancel := s.callContext(ctx)
			defer cancel()
			lists[i] = p.Genres(callCtx).Genres
			return nil
		})
	}
	_ = g.Wait()
	return dedupGenres(lists...)
}

func (s *Aggregator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
