package watchlist

import (
	"net/http"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/watchlist"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	wl *watchlist.Watchlist
}

func RegisterHandler(r *gin.Engine, wl *watchlist.Watchlist) {
	h := &Handler{
		wl: wl,
	}
	gr := r.Group("/api/watchlist")
	gr.Use(auth.HasAuth)
	gr.GET("", h.list)
	gr.POST("", h.add)
	gr.DELETE("", h.reset)
	gr.GET("/:id", h.exists)
	gr.DELETE("/:id", h.remove)
	gr.POST("/:id/toggle", h.toggle)
}

func (s *Handler) list(c *gin.Context) {
	u := auth.GetUserFromContext(c)
	var (
		items []models.WatchlistItem
		err   error
	)
	if t, ok := models.ParseMediaType(c.Query("type")); ok {
		items, err = s.wl.ListByType(c.Request.Context(), u.ID, t)
	} else {
		items, err = s.wl.List(c.Request.Context(), u.ID)
	}
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Handler) add(c *gin.Context) {
	var item models.WatchlistItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	res, added, err := s.wl.Add(c.Request.Context(), auth.GetUserFromContext(c).ID, item)
	if err != nil {
		common.Abort(c, err)
		return
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	c.JSON(code, gin.H{"item": res, "added": added})
}

func (s *Handler) exists(c *gin.Context) {
	ok, err := s.wl.Exists(c.Request.Context(), auth.GetUserFromContext(c).ID, c.Param("id"))
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWatchlist": ok})
}

func (s *Handler) remove(c *gin.Context) {
	removed, err := s.wl.Remove(c.Request.Context(), auth.GetUserFromContext(c).ID, c.Param("id"))
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Handler) toggle(c *gin.Context) {
	var item models.WatchlistItem
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&item); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
			return
		}
	}
	item.ID = c.Param("id")
	in, err := s.wl.Toggle(c.Request.Context(), auth.GetUserFromContext(c).ID, item)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWatchlist": in})
}

func (s *Handler) reset(c *gin.Context) {
	if err := s.wl.Reset(c.Request.Context(), auth.GetUserFromContext(c).ID); err != nil {
		common.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
