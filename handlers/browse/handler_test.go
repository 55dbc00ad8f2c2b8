package browse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/browse"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	feeds    atomic.Int32
	searches atomic.Int32
	last     atomic.Pointer[catalog.FeedRequest]
}

func (s *stubSource) Feed(_ context.Context, r *catalog.FeedRequest) *catalog.Result {
	s.feeds.Add(1)
	s.last.Store(r)
	return &catalog.Result{
		Records: []models.MediaRecord{
			{ID: "a", Title: "Alpha", Year: 2010, Rating: 7, Genres: []string{"Drama"}},
			{ID: "b", Title: "Beta", Year: 1985, Rating: 8, Genres: []string{"Horror"}},
		},
		TotalPages: 4,
		Token:      r.Token,
	}
}

func (s *stubSource) Search(_ context.Context, r *catalog.SearchRequest) *catalog.Result {
	s.searches.Add(1)
	return &catalog.Result{
		Records: []models.MediaRecord{{ID: "s", Title: r.Query}},
		Token:   r.Token,
	}
}

type client struct {
	r       *gin.Engine
	cookies []*http.Cookie
}

func (s *client) get(t *testing.T, path string) *browse.View {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	s.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	if cs := w.Result().Cookies(); len(cs) > 0 {
		s.cookies = cs
	}
	var v browse.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return &v
}

func newClient(src *stubSource) *client {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := browse.NewRegistry(src, &browse.Config{
		Debounce:      10 * time.Millisecond,
		Pages:         2,
		SessionExpire: time.Minute,
	})
	RegisterHandler(r, reg, "test-secret")
	return &client{r: r}
}

func TestBrowse_FirstVisitFetches(t *testing.T) {
	src := &stubSource{}
	cl := newClient(src)

	v := cl.get(t, "/api/browse/movies")
	assert.Equal(t, browse.StateReady, v.State)
	assert.Len(t, v.Records, 2)
	assert.Equal(t, int32(1), src.feeds.Load())
	require.NotEmpty(t, cl.cookies)

	v = cl.get(t, "/api/browse/movies")
	assert.Len(t, v.Records, 2)
	assert.Equal(t, int32(1), src.feeds.Load())
}

func TestBrowse_FiltersDoNotFetch(t *testing.T) {
	src := &stubSource{}
	cl := newClient(src)
	cl.get(t, "/api/browse/movies")

	v := cl.get(t, "/api/browse/movies?genre=Horror")
	require.Len(t, v.Records, 1)
	assert.Equal(t, "b", v.Records[0].ID)

	v = cl.get(t, "/api/browse/movies?genre=All&sort=oldest&view=list")
	require.Len(t, v.Records, 2)
	assert.Equal(t, "b", v.Records[0].ID)
	assert.Equal(t, browse.ViewModeList, v.ViewMode)

	assert.Equal(t, int32(1), src.feeds.Load())
}

func TestBrowse_QueryChangesFetch(t *testing.T) {
	src := &stubSource{}
	cl := newClient(src)
	cl.get(t, "/api/browse/movies")

	v := cl.get(t, "/api/browse/movies?page=2")
	assert.Equal(t, 2, v.Query.Page)
	assert.Equal(t, int32(2), src.feeds.Load())
	assert.Equal(t, 2, src.last.Load().Page)
	assert.Equal(t, 2, src.last.Load().Pages)

	v = cl.get(t, "/api/browse/movies?feed=top_rated")
	assert.Equal(t, catalog.FeedTopRated, v.Query.Feed)
	assert.Equal(t, 1, v.Query.Page)
	assert.Equal(t, int32(3), src.feeds.Load())

	v = cl.get(t, "/api/browse/movies?q=alien")
	require.Len(t, v.Records, 1)
	assert.Equal(t, "alien", v.Records[0].Title)
	assert.Equal(t, int32(1), src.searches.Load())
}

func TestBrowse_VisitorsAreIsolated(t *testing.T) {
	src := &stubSource{}
	a := newClient(src)
	a.get(t, "/api/browse/movies?genre=Horror")

	b := &client{r: a.r}
	v := b.get(t, "/api/browse/movies")
	assert.Len(t, v.Records, 2)
	assert.Empty(t, v.Filters.Genre)
}

func TestBrowse_UnknownType(t *testing.T) {
	cl := newClient(&stubSource{})
	w := httptest.NewRecorder()
	cl.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/browse/books", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
