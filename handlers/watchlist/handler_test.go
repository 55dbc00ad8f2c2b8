package watchlist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/cinebuzz/discovery/services/watchlist"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(signedIn bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if signedIn {
		r.Use(func(c *gin.Context) {
			auth.SetSession(c, &auth.Session{Token: "t", User: models.User{ID: "u1", Name: "Alice"}})
		})
	}
	RegisterHandler(r, watchlist.New(store.NewMemoryBackend()))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestWatchlist_RequiresAuth(t *testing.T) {
	r := newRouter(false)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/watchlist", "").Code)
}

func TestWatchlist_AddTwice(t *testing.T) {
	r := newRouter(true)
	body := `{"id":"m1","title":"Heat","type":"movie"}`

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/watchlist", body).Code)
	w := do(r, http.MethodPost, "/api/watchlist", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":false`)

	w = do(r, http.MethodGet, "/api/watchlist", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.WatchlistItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestWatchlist_MissingID(t *testing.T) {
	r := newRouter(true)
	w := do(r, http.MethodPost, "/api/watchlist", `{"title":"Heat"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"id"`)
}

func TestWatchlist_ToggleRemoveAndFilter(t *testing.T) {
	r := newRouter(true)

	w := do(r, http.MethodPost, "/api/watchlist/s1/toggle", `{"title":"Dark","type":"tv"}`)
	assert.JSONEq(t, `{"inWatchlist":true}`, w.Body.String())
	do(r, http.MethodPost, "/api/watchlist", `{"id":"m1","type":"movie"}`)

	w = do(r, http.MethodGet, "/api/watchlist?type=tv", "")
	var items []models.WatchlistItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)

	w = do(r, http.MethodGet, "/api/watchlist/s1", "")
	assert.JSONEq(t, `{"inWatchlist":true}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/watchlist/s1", "")
	assert.JSONEq(t, `{"removed":true}`, w.Body.String())
	w = do(r, http.MethodDelete, "/api/watchlist/s1", "")
	assert.JSONEq(t, `{"removed":false}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/watchlist", "").Code)
	w = do(r, http.MethodGet, "/api/watchlist", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestWatchlist_ToggleWithoutBody(t *testing.T) {
	r := newRouter(true)

	w := do(r, http.MethodPost, "/api/watchlist/m1/toggle", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"type"`)
	assert.JSONEq(t, `[]`, do(r, http.MethodGet, "/api/watchlist", "").Body.String())

	do(r, http.MethodPost, "/api/watchlist", `{"id":"m1","title":"Heat","type":"movie"}`)
	w = do(r, http.MethodPost, "/api/watchlist/m1/toggle", "")
	assert.JSONEq(t, `{"inWatchlist":false}`, w.Body.String())
}
