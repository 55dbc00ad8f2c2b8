package browse

import (
	"net/http"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/browse"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionName = "cinebuzz-browse"
	visitorKey  = "visitor"
)

type Handler struct {
	reg *browse.Registry
}

func RegisterHandler(r *gin.Engine, reg *browse.Registry, secret string) {
	h := &Handler{
		reg: reg,
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/api/browse",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	gr := r.Group("/api/browse")
	gr.Use(sessions.Sessions(sessionName, store))
	gr.GET("/:type", h.browse)
}

func (s *Handler) visitor(c *gin.Context) string {
	sess := sessions.Default(c)
	if id, ok := sess.Get(visitorKey).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Set(visitorKey, id)
	_ = sess.Save()
	return id
}

// filters replaces the filters of ctrl when any filter parameter is present.
func filters(c *gin.Context, ctrl *browse.Controller) {
	if c.Query("reset") == "1" {
		ctrl.ResetFilters()
	}
	f := browse.Filters{}
	set := false
	for name, dst := range map[string]*string{
		"genre":    &f.Genre,
		"year":     &f.Year,
		"platform": &f.Platform,
		"language": &f.Language,
		"status":   &f.Status,
	} {
		if v, ok := c.GetQuery(name); ok {
			*dst = v
			set = true
		}
	}
	if set {
		ctrl.SetFilters(f)
	}
	if v, ok := c.GetQuery("sort"); ok {
		ctrl.SetSort(models.ParseSortType(v))
	}
	if v, ok := c.GetQuery("view"); ok {
		ctrl.SetViewMode(browse.ParseViewMode(v))
	}
}

func (s *Handler) browse(c *gin.Context) {
	t, ok := models.ParseMediaType(c.Param("type"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "unknown media type"})
		return
	}
	ctrl := s.reg.Get(s.visitor(c))
	filters(c, ctrl)

	cur := ctrl.Query()
	q := cur
	if q.Type != t {
		q = browse.Query{Type: t, Feed: q.Feed}
	}
	if v, ok := c.GetQuery("feed"); ok {
		f, ok := catalog.ParseFeed(v)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: "unknown feed", Field: "feed"})
			return
		}
		q.Feed = f
		q.GenreID = 0
		q.Page = 1
	}
	if _, ok := c.GetQuery("genre_id"); ok {
		q.GenreID = common.IntQuery(c, "genre_id", 0)
		q.Page = 1
	}
	if _, ok := c.GetQuery("page"); ok {
		q.Page = common.IntQuery(c, "page", 1)
	}
	typing := c.Query("typing") == "1"
	if v, ok := c.GetQuery("q"); ok && v != q.Search {
		if typing {
			ctrl.TypeSearch(v)
			c.JSON(http.StatusOK, ctrl.View(c.Request.Context()))
			return
		}
		q.Search = v
		q.Page = 1
	}

	view := ctrl.View(c.Request.Context())
	if q != cur || view.State == browse.StateIdle {
		view = ctrl.Navigate(c.Request.Context(), q)
	}
	c.JSON(http.StatusOK, view)
}
