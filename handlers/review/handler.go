package review

import (
	"net/http"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/cinebuzz/discovery/services/review"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type Handler struct {
	rs *review.Reviews
}

func RegisterHandler(r *gin.Engine, rs *review.Reviews) {
	h := &Handler{
		rs: rs,
	}
	gr := r.Group("/api")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
	}))
	gr.GET("/reviews", h.list)
	gr.GET("/reviews/average", h.average)
	gr.GET("/users/:id/reviews", h.byUser)
	gra := gr.Group("")
	gra.Use(auth.HasAuth)
	gra.POST("/reviews", h.submit)
	gra.DELETE("/reviews/:id", h.delete)
}

func (s *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Query("movie_id")
	var (
		res any
		err error
	)
	if movieID == "" {
		res, err = s.rs.List(ctx)
	} else {
		res, err = s.rs.ListByMovie(ctx, movieID)
	}
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Handler) average(c *gin.Context) {
	movieID := c.Query("movie_id")
	if movieID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: "movie_id is required", Field: "movie_id"})
		return
	}
	avg, err := s.rs.AverageRating(c.Request.Context(), movieID)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movieId": movieID, "average": avg})
}

func (s *Handler) byUser(c *gin.Context) {
	res, err := s.rs.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Handler) submit(c *gin.Context) {
	var in review.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	r, err := s.rs.Submit(c.Request.Context(), auth.GetUserFromContext(c), in)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Handler) delete(c *gin.Context) {
	removed, err := s.rs.Delete(c.Request.Context(), auth.GetUserFromContext(c), c.Param("id"))
	if errors.Is(err, review.ErrNotAuthor) {
		c.AbortWithStatusJSON(http.StatusForbidden, common.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
