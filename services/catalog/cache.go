package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
)

const (
	cacheExpireFlag      = "catalog-cache-expire"
	cacheErrorExpireFlag = "catalog-cache-error-expire"
)

func RegisterCacheFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   cacheExpireFlag,
			Usage:  "catalog response freshness window",
			Value:  10 * time.Minute,
			EnvVar: "CATALOG_CACHE_EXPIRE",
		},
		cli.DurationFlag{
			Name:   cacheErrorExpireFlag,
			Usage:  "how long failed upstream responses are remembered",
			Value:  10 * time.Second,
			EnvVar: "CATALOG_CACHE_ERROR_EXPIRE",
		},
	)
}

type CacheConfig struct {
	Expire      time.Duration
	ErrorExpire time.Duration
}

func NewCacheConfig(c *cli.Context) *CacheConfig {
	return &CacheConfig{
		Expire:      c.Duration(cacheExpireFlag),
		ErrorExpire: c.Duration(cacheErrorExpireFlag),
	}
}

// failure carries a non-cacheable status through lazymap so that it is only
// remembered for the error window.
type failure struct {
	status Status
}

func (f *failure) Error() string {
	return fmt.Sprintf("upstream %v", f.status)
}

func statusOf(err error) Status {
	var f *failure
	if errors.As(err, &f) {
		return f.status
	}
	return StatusUnavailable
}

// CachedProvider memoizes every operation of the wrapped provider. Entries are
// fresh for Expire from the moment they were written.
type CachedProvider struct {
	inner  Provider
	prefix string
	pages  *lazymap.LazyMap[*Page]
	items  *lazymap.LazyMap[*Item]
	genres *lazymap.LazyMap[*GenreList]
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(inner Provider, cfg *CacheConfig) *CachedProvider {
	lc := &lazymap.Config{
		Expire:      cfg.Expire,
		ErrorExpire: cfg.ErrorExpire,
		StoreErrors: true,
	}
	prefix := inner.GetName()
	if l, ok := inner.(Localized); ok {
		prefix += "@" + l.Language()
	}
	return &CachedProvider{
		inner:  inner,
		prefix: prefix,
		pages:  lazymap.New[*Page](lc),
		items:  lazymap.New[*Item](lc),
		genres: lazymap.New[*GenreList](lc),
	}
}

func (s *CachedProvider) GetName() string {
	return s.inner.GetName()
}

func (s *CachedProvider) Type() models.MediaType {
	return s.inner.Type()
}

func (s *CachedProvider) Owns(id string) bool {
	return s.inner.Owns(id)
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func (s *CachedProvider) observe(op string, miss bool) {
	res := "hit"
	if miss {
		res = "miss"
	}
	cacheLookups.WithLabelValues(s.inner.GetName(), op, res).Inc()
}

func (s *CachedProvider) Search(ctx context.Context, query string, page int) *Page {
	query = normalizeQuery(query)
	key := fmt.Sprintf("%v|search|%v|%v", s.prefix, query, page)
	miss := false
	p, err := s.pages.Get(key, func() (*Page, error) {
		miss = true
		p := s.inner.Search(ctx, query, page)
		if p.Status.Failed() {
			return nil, &failure{status: p.Status}
		}
		return p, nil
	})
	s.observe("search", miss)
	if err != nil {
		return FailedPage(statusOf(err))
	}
	return p
}

func (s *CachedProvider) List(ctx context.Context, q ListQuery) *Page {
	key := fmt.Sprintf("%v|list|%v|%v|%v", s.prefix, q.Category, q.GenreID, q.Page)
	miss := false
	p, err := s.pages.Get(key, func() (*Page, error) {
		miss = true
		p := s.inner.List(ctx, q)
		if p.Status.Failed() {
			return nil, &failure{status: p.Status}
		}
		return p, nil
	})
	s.observe("list", miss)
	if err != nil {
		return FailedPage(statusOf(err))
	}
	return p
}

func (s *CachedProvider) Get(ctx context.Context, id string) *Item {
	key := fmt.Sprintf("%v|get|%v", s.prefix, id)
	miss := false
	it, err := s.items.Get(key, func() (*Item, error) {
		miss = true
		it := s.inner.Get(ctx, id)
		if it.Status.Failed() {
			return nil, &failure{status: it.Status}
		}
		return it, nil
	})
	s.observe("get", miss)
	if err != nil {
		return FailedItem(statusOf(err))
	}
	return it
}

func (s *CachedProvider) Genres(ctx context.Context) *GenreList {
	key := fmt.Sprintf("%v|genres", s.prefix)
	miss := false
	gl, err := s.genres.Get(key, func() (*GenreList, error) {
		miss = true
		gl := s.inner.Genres(ctx)
		if gl.Status.Failed() {
			return nil, &failure{status: gl.Status}
		}
		return gl, nil
	})
	s.observe("genres", miss)
	if err != nil {
		return FailedGenreList(statusOf(err))
	}
	return gl
}
