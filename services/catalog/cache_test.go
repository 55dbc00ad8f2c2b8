package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/stretchr/testify/assert"
)

func newTestCache(inner Provider, expire time.Duration) *CachedProvider {
	return NewCachedProvider(inner, &CacheConfig{
		Expire:      expire,
		ErrorExpire: 10 * time.Millisecond,
	})
}

func TestCachedProvider_SearchWithinWindow(t *testing.T) {
	inner := &mockProvider{name: "fake", records: []models.MediaRecord{rec("1", "Die Hard", 1988, 8)}}
	c := newTestCache(inner, time.Minute)

	first := c.Search(context.Background(), "action", 1)
	second := c.Search(context.Background(), "action", 1)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, StatusOK, first.Status)
	assert.Equal(t, ids(first.Records), ids(second.Records))
}

func TestCachedProvider_NormalizesQuery(t *testing.T) {
	inner := &mockProvider{name: "fake"}
	c := newTestCache(inner, time.Minute)

	c.Search(context.Background(), "Action", 1)
	c.Search(context.Background(), " action ", 1)

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedProvider_KeyIncludesParameters(t *testing.T) {
	inner := &mockProvider{name: "fake"}
	c := newTestCache(inner, time.Minute)
	ctx := context.Background()

	c.Search(ctx, "action", 1)
	c.Search(ctx, "action", 2)
	c.Search(ctx, "drama", 1)
	c.List(ctx, ListQuery{Category: CategoryPopular, Page: 1})
	c.List(ctx, ListQuery{Category: CategoryTopRated, Page: 1})
	c.List(ctx, ListQuery{Category: CategoryGenre, GenreID: 28, Page: 1})
	c.List(ctx, ListQuery{Category: CategoryGenre, GenreID: 35, Page: 1})

	assert.Equal(t, int32(7), inner.calls.Load())
}

func TestCachedProvider_Expires(t *testing.T) {
	inner := &mockProvider{name: "fake"}
	c := newTestCache(inner, 50*time.Millisecond)

	c.Search(context.Background(), "action", 1)
	time.Sleep(150 * time.Millisecond)
	c.Search(context.Background(), "action", 1)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedProvider_FailuresAreShortLived(t *testing.T) {
	inner := &mockProvider{name: "fake", status: StatusUnavailable}
	c := newTestCache(inner, time.Minute)

	p := c.List(context.Background(), ListQuery{Category: CategoryPopular, Page: 1})
	assert.Equal(t, StatusUnavailable, p.Status)
	assert.NotNil(t, p.Records)

	time.Sleep(50 * time.Millisecond)
	inner.status = StatusOK
	p = c.List(context.Background(), ListQuery{Category: CategoryPopular, Page: 1})

	assert.Equal(t, StatusEmpty, p.Status)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedProvider_FailuresAreRememberedWithinErrorWindow(t *testing.T) {
	inner := &mockProvider{name: "fake", status: StatusUnavailable}
	c := NewCachedProvider(inner, &CacheConfig{
		Expire:      time.Minute,
		ErrorExpire: time.Minute,
	})
	ctx := context.Background()
	q := ListQuery{Category: CategoryPopular, Page: 1}

	first := c.List(ctx, q)
	second := c.List(ctx, q)

	assert.Equal(t, StatusUnavailable, first.Status)
	assert.Equal(t, StatusUnavailable, second.Status)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedProvider_Get(t *testing.T) {
	inner := &mockProvider{name: "fake", records: []models.MediaRecord{rec("x1", "X", 2000, 5)}}
	c := newTestCache(inner, time.Minute)

	it := c.Get(context.Background(), "x1")
	_ = c.Get(context.Background(), "x1")
	missing := c.Get(context.Background(), "x2")

	assert.Equal(t, StatusOK, it.Status)
	assert.Equal(t, "X", it.Record.Title)
	assert.Equal(t, StatusEmpty, missing.Status)
	assert.Equal(t, int32(2), inner.calls.Load())
}

type localizedProvider struct {
	*mockProvider
	lang string
}

func (l *localizedProvider) Language() string {
	return l.lang
}

func TestCachedProvider_LanguageIsPartOfKey(t *testing.T) {
	en := newTestCache(&localizedProvider{mockProvider: &mockProvider{name: "fake"}, lang: "en-US"}, time.Minute)
	de := newTestCache(&localizedProvider{mockProvider: &mockProvider{name: "fake"}, lang: "de-DE"}, time.Minute)

	assert.NotEqual(t, en.prefix, de.prefix)
}
