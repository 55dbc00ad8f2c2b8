package catalog

import (
	"net/http"
	"strconv"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	agg *catalog.Aggregator
}

func RegisterHandler(r *gin.Engine, agg *catalog.Aggregator) {
	h := &Handler{
		agg: agg,
	}
	gr := r.Group("/api")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
	}))
	gr.GET("/catalog/:type/feed/:feed", h.feed)
	gr.GET("/catalog/:type/search", h.search)
	gr.GET("/catalog/:type/genres", h.genres)
	gr.GET("/title/:id", h.title)
}

func mediaType(c *gin.Context) (models.MediaType, bool) {
	t, ok := models.ParseMediaType(c.Param("type"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "unknown media type"})
	}
	return t, ok
}

func token(c *gin.Context) uint64 {
	t, _ := strconv.ParseUint(c.Query("token"), 10, 64)
	return t
}

func (s *Handler) feed(c *gin.Context) {
	t, ok := mediaType(c)
	if !ok {
		return
	}
	f, ok := catalog.ParseFeed(c.Param("feed"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "unknown feed"})
		return
	}
	req := &catalog.FeedRequest{
		Type:        t,
		Feed:        f,
		GenreID:     common.IntQuery(c, "genre_id", 0),
		Page:        common.IntQuery(c, "page", 1),
		Sort:        models.ParseSortType(c.Query("sort")),
		QualityOnly: c.Query("quality") == "1" || c.Query("quality") == "true",
		Token:       token(c),
	}
	if f == catalog.FeedGenre && req.GenreID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: "genre_id is required", Field: "genre_id"})
		return
	}
	c.JSON(http.StatusOK, s.agg.Feed(c.Request.Context(), req))
}

func (s *Handler) search(c *gin.Context) {
	t, ok := mediaType(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.agg.Search(c.Request.Context(), &catalog.SearchRequest{
		Type:  t,
		Query: c.Query("q"),
		Page:  common.IntQuery(c, "page", 1),
		Token: token(c),
	}))
}

func (s *Handler) genres(c *gin.Context) {
	t, ok := mediaType(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.agg.Genres(c.Request.Context(), t))
}

func (s *Handler) title(c *gin.Context) {
	it := s.agg.Get(c.Request.Context(), c.Param("id"))
	switch it.Status {
	case catalog.StatusOK:
		c.JSON(http.StatusOK, it.Record)
	case catalog.StatusEmpty:
		c.AbortWithStatusJSON(http.StatusNotFound, common.ErrorResponse{Error: "title not found"})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, common.ErrorResponse{Error: "title is unavailable right now"})
	}
}
